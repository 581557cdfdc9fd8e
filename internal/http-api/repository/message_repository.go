package repository

import (
	"context"

	"github.com/rajhackss/organ-donor-portal/internal/http-api/models"

	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByChannelID(ctx context.Context, channelID string) ([]models.Message, error)
	LastInChannel(ctx context.Context, channelID string) (*models.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// GetByChannelID returns the full channel history. Ordering by (created_at,
// id) gives every subscriber the same total order even when two messages
// share a timestamp.
func (r *messageRepository) GetByChannelID(ctx context.Context, channelID string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

func (r *messageRepository) LastInChannel(ctx context.Context, channelID string) (*models.Message, error) {
	var message models.Message
	err := r.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("created_at DESC, id DESC").
		First(&message).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}
