package dummydb

import (
	"context"
	"sort"

	"github.com/belajarku/backend/core/chat"
)

type chatRepository struct {
	db *chatTable
}

var _ chat.Repository = (*chatRepository)(nil) // interface compliance check

func NewChatRepository(db *DB) chat.Repository {
	return &chatRepository{db: db.chat}
}

func (repo *chatRepository) CreateRoom(ctx context.Context, r chat.Room) (chat.Room, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.rooms[r.ID] = &r
	return r, nil
}

func (repo *chatRepository) GetRoom(ctx context.Context, id string) (chat.Room, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if r, ok := repo.db.rooms[id]; ok {
		return *r, nil
	}
	return chat.Room{}, chat.ErrRoomNotFound
}

func (repo *chatRepository) QueryRoomsByTopic(ctx context.Context, topicID string) ([]chat.Room, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var rooms []chat.Room
	for _, r := range repo.db.rooms {
		if r.TopicID == topicID {
			rooms = append(rooms, *r)
		}
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].CreatedAt.After(rooms[j].CreatedAt) })
	return rooms, nil
}

func (repo *chatRepository) DeleteRoomsByID(ctx context.Context, ids ...string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.rooms[id]; ok {
			delete(repo.db.rooms, id)
			delete(repo.db.messages, id)
			n++
		}
	}
	return n, nil
}

func (repo *chatRepository) CreateMessage(ctx context.Context, m chat.Message) (chat.Message, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.messages[m.RoomID] = append(repo.db.messages[m.RoomID], &m)
	return m, nil
}

func (repo *chatRepository) QueryMessagesByRoom(ctx context.Context, roomID string, limit int) ([]chat.Message, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	stored := repo.db.messages[roomID]
	msgs := make([]chat.Message, 0, len(stored))
	for _, m := range stored {
		msgs = append(msgs, *m)
	}
	// stable: insertion order wins on equal timestamps
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}
