package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rajhackss/organ-donor-portal/internal/http-api/models"
	"github.com/rajhackss/organ-donor-portal/internal/http-api/repository"
	ws "github.com/rajhackss/organ-donor-portal/internal/websocket"

	"gorm.io/gorm"
)

// NotificationService appends and manages per-user notification records.
// Call sites treat Notify as best-effort: a failed notification is logged
// and swallowed, never rolled into the triggering action.
type NotificationService interface {
	Notify(ctx context.Context, userID, title, message, category string) (*models.Notification, error)
	List(ctx context.Context, userID string) ([]models.Notification, error)
	ListUnread(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID string, notificationID int64) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string, notificationID int64) error
}

type notificationService struct {
	repo      repository.NotificationRepository
	publisher ws.Publisher
}

func NewNotificationService(repo repository.NotificationRepository, publisher ws.Publisher) NotificationService {
	return &notificationService{repo: repo, publisher: publisher}
}

// Notify appends one unread notification for userID. Unrecognized categories
// are coerced to info at this write boundary.
func (s *notificationService) Notify(ctx context.Context, userID, title, message, category string) (*models.Notification, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: notification needs a recipient", ErrValidation)
	}

	notification := &models.Notification{
		UserID:   userID,
		Title:    title,
		Message:  message,
		Category: models.NormalizeCategory(category),
		Read:     false,
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.Publish(ctx, ws.NotificationTopic(userID), notification)
	}

	return notification, nil
}

func (s *notificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.repo.GetByUser(ctx, userID)
}

func (s *notificationService) ListUnread(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.repo.GetUnreadByUser(ctx, userID)
}

// MarkRead flips the read flag. Idempotent: re-marking a read notification
// leaves it read. Only the recipient may mark their own notifications.
func (s *notificationService) MarkRead(ctx context.Context, userID string, notificationID int64) error {
	if err := s.ownedBy(ctx, userID, notificationID); err != nil {
		return err
	}
	return s.repo.MarkAsRead(ctx, notificationID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// Delete removes one notification. Only the recipient may delete it.
func (s *notificationService) Delete(ctx context.Context, userID string, notificationID int64) error {
	if err := s.ownedBy(ctx, userID, notificationID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, notificationID)
}

func (s *notificationService) ownedBy(ctx context.Context, userID string, notificationID int64) error {
	notification, err := s.repo.FindByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if notification.UserID != userID {
		return ErrForbidden
	}
	return nil
}
