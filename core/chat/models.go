package chat

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/belajarku/backend/core"
)

// Room is a discussion space attached to a topic.
type Room struct {
	ID        string    `db:"room_id" json:"id"`
	TopicID   string    `db:"topic_id" json:"topic_id"`
	Name      string    `db:"nama" json:"name"`
	CreatedBy string    `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"` // UTC
}

// Message is one chat entry in a Room.
type Message struct {
	ID        string    `db:"message_id" json:"id"`
	RoomID    string    `db:"room_id" json:"room_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Username  string    `db:"username" json:"username"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"` // UTC
}

// NewRoom contains information needed to create a new Room.
type NewRoom struct {
	TopicID string `json:"topic_id" validate:"required"`
	Name    string `json:"name" validate:"required"`
}

func (nr *NewRoom) Validate(validate *validator.Validate) error {
	nr.Name = core.CleanString(nr.Name)
	return validate.Struct(nr)
}

// NewMessage contains information needed to post a Message.
type NewMessage struct {
	Body string `json:"body" validate:"required,max=2000"`
}

func (nm *NewMessage) Validate(validate *validator.Validate) error {
	nm.Body = core.CleanString(nm.Body)
	return validate.Struct(nm)
}
