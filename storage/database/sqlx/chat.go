package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/belajarku/backend/core/chat"
)

type chatRepository struct {
	db *sqlx.DB
}

var _ chat.Repository = (*chatRepository)(nil) // interface compliance check

func NewChatRepository(db *sqlx.DB) chat.Repository {
	return &chatRepository{db: db}
}

const (
	roomColumns    = "room_id, topic_id, nama, created_by, created_at"
	messageColumns = "message_id, room_id, user_id, username, body, created_at"
)

func (repo *chatRepository) CreateRoom(ctx context.Context, r chat.Room) (chat.Room, error) {
	const q = `
	INSERT INTO chat_rooms (` + roomColumns + `)
	VALUES (:room_id, :topic_id, :nama, :created_by, :created_at)`

	if _, err := repo.db.NamedExecContext(ctx, q, r); err != nil {
		return chat.Room{}, errors.Wrap(err, "inserting room")
	}
	return r, nil
}

func (repo *chatRepository) GetRoom(ctx context.Context, id string) (chat.Room, error) {
	var r chat.Room
	err := repo.db.GetContext(ctx, &r, "SELECT "+roomColumns+" FROM chat_rooms WHERE room_id = $1", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return chat.Room{}, chat.ErrRoomNotFound
		}
		return chat.Room{}, errors.Wrap(err, "getting room")
	}
	return r, nil
}

func (repo *chatRepository) QueryRoomsByTopic(ctx context.Context, topicID string) ([]chat.Room, error) {
	rooms := make([]chat.Room, 0)
	err := repo.db.SelectContext(ctx, &rooms,
		"SELECT "+roomColumns+" FROM chat_rooms WHERE topic_id = $1 ORDER BY created_at DESC", topicID)
	if err != nil {
		return nil, errors.Wrap(err, "querying rooms")
	}
	return rooms, nil
}

func (repo *chatRepository) DeleteRoomsByID(ctx context.Context, ids ...string) (int, error) {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM chat_rooms WHERE room_id = ANY($1)", pq.Array(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting rooms")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting rooms")
	}
	return int(n), nil
}

func (repo *chatRepository) CreateMessage(ctx context.Context, m chat.Message) (chat.Message, error) {
	const q = `
	INSERT INTO chat_messages (` + messageColumns + `)
	VALUES (:message_id, :room_id, :user_id, :username, :body, :created_at)`

	if _, err := repo.db.NamedExecContext(ctx, q, m); err != nil {
		return chat.Message{}, errors.Wrap(err, "inserting message")
	}
	return m, nil
}

func (repo *chatRepository) QueryMessagesByRoom(ctx context.Context, roomID string, limit int) ([]chat.Message, error) {
	q := "SELECT " + messageColumns + " FROM chat_messages WHERE room_id = $1 ORDER BY created_at ASC"
	args := []interface{}{roomID}
	if limit > 0 {
		// keep the latest entries, returned in chronological order
		q = `
		SELECT ` + messageColumns + ` FROM (
			SELECT ` + messageColumns + ` FROM chat_messages WHERE room_id = $1 ORDER BY created_at DESC LIMIT $2
		) latest ORDER BY created_at ASC`
		args = append(args, limit)
	}

	msgs := make([]chat.Message, 0)
	if err := repo.db.SelectContext(ctx, &msgs, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying messages")
	}
	return msgs, nil
}
