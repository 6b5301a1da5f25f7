package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrRoomNotFound = errors.New("chat room not found")
)

type (
	Repository interface {
		CreateRoom(ctx context.Context, r Room) (Room, error)
		GetRoom(ctx context.Context, id string) (Room, error)
		// QueryRoomsByTopic returns rooms ordered by creation time, newest first.
		QueryRoomsByTopic(ctx context.Context, topicID string) ([]Room, error)
		DeleteRoomsByID(ctx context.Context, ids ...string) (int, error)

		CreateMessage(ctx context.Context, m Message) (Message, error)
		// QueryMessagesByRoom returns messages in chronological order,
		// at most limit entries counted from the end when limit > 0.
		QueryMessagesByRoom(ctx context.Context, roomID string, limit int) ([]Message, error)
	}

	Service interface {
		CreateRoom(ctx context.Context, userID string, nr NewRoom) (Room, error)
		GetRoom(ctx context.Context, id string) (Room, error)
		QueryRoomsByTopic(ctx context.Context, topicID string) ([]Room, error)
		DeleteRooms(ctx context.Context, ids ...string) error
		PostMessage(ctx context.Context, roomID, userID, username string, nm NewMessage) (Message, error)
		QueryMessages(ctx context.Context, roomID string, limit int) ([]Message, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CreateRoom(ctx context.Context, userID string, nr NewRoom) (Room, error) {
	r := Room{
		ID:        uuid.New().String(),
		TopicID:   nr.TopicID,
		Name:      nr.Name,
		CreatedBy: userID,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateRoom(ctx, r)
}

func (svc *service) GetRoom(ctx context.Context, id string) (Room, error) {
	return svc.repo.GetRoom(ctx, id)
}

func (svc *service) QueryRoomsByTopic(ctx context.Context, topicID string) ([]Room, error) {
	return svc.repo.QueryRoomsByTopic(ctx, topicID)
}

func (svc *service) DeleteRooms(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteRoomsByID(ctx, ids...)
	return err
}

func (svc *service) PostMessage(ctx context.Context, roomID, userID, username string, nm NewMessage) (Message, error) {
	if _, err := svc.repo.GetRoom(ctx, roomID); err != nil {
		return Message{}, err
	}
	m := Message{
		ID:        uuid.New().String(),
		RoomID:    roomID,
		UserID:    userID,
		Username:  username,
		Body:      nm.Body,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateMessage(ctx, m)
}

func (svc *service) QueryMessages(ctx context.Context, roomID string, limit int) ([]Message, error) {
	return svc.repo.QueryMessagesByRoom(ctx, roomID, limit)
}
