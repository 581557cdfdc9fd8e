package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is a single chat message inside a two-party channel. Messages are
// append-only: no update path exists anywhere in the codebase.
type Message struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	ChannelID string    `gorm:"not null;index:idx_messages_channel_created,priority:1" json:"channel_id"`
	SenderID  string    `gorm:"type:uuid;not null" json:"sender_id"`
	Text      string    `gorm:"not null" json:"text"`
	CreatedAt time.Time `gorm:"index:idx_messages_channel_created,priority:2" json:"created_at"`

	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

func (Message) TableName() string {
	return "messages"
}
