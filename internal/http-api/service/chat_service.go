package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rajhackss/organ-donor-portal/internal/http-api/models"
	"github.com/rajhackss/organ-donor-portal/internal/http-api/repository"
	ws "github.com/rajhackss/organ-donor-portal/internal/websocket"
)

// notificationPreviewLimit bounds how much of a message leaks into its
// notification body.
const notificationPreviewLimit = 50

// ResolveChannelID derives the conversation identifier for two participants.
// Both sides must compute the identical string to observe the same channel,
// so the smaller id under plain string comparison always goes first:
// resolve(a, b) == resolve(b, a).
func ResolveChannelID(a, b string) string {
	if a < b {
		return a + "_" + b
	}
	return b + "_" + a
}

// ChannelParticipants splits a channel id back into its two participant ids.
func ChannelParticipants(channelID string) (string, string, bool) {
	parts := strings.SplitN(channelID, "_", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// ChatService is the append-only message log for two-party channels.
type ChatService interface {
	Send(ctx context.Context, senderID, recipientID, text string) (*models.Message, error)
	History(ctx context.Context, userID, otherID string) ([]models.Message, error)
	HistoryByChannel(ctx context.Context, channelID string) ([]models.Message, error)
}

type chatService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	notifier    NotificationService
	publisher   ws.Publisher

	// per-channel clamp so server-assigned timestamps never run backwards
	// within a channel, even if the wall clock does
	mu        sync.Mutex
	lastStamp map[string]time.Time
}

func NewChatService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	notifier NotificationService,
	publisher ws.Publisher,
) ChatService {
	return &chatService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		publisher:   publisher,
		lastStamp:   make(map[string]time.Time),
	}
}

// Send appends one message to the channel shared by sender and recipient,
// then best-effort notifies the recipient. The notification is never allowed
// to fail the send: a message, once written, is not retracted.
func (s *chatService) Send(ctx context.Context, senderID, recipientID, text string) (*models.Message, error) {
	if senderID == recipientID {
		return nil, fmt.Errorf("%w: cannot open a channel with yourself", ErrValidation)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: message text is empty", ErrValidation)
	}

	if _, err := s.userRepo.FindByID(recipientID); err != nil {
		return nil, fmt.Errorf("%w: unknown recipient", ErrNotFound)
	}

	channelID := ResolveChannelID(senderID, recipientID)

	message := &models.Message{
		ChannelID: channelID,
		SenderID:  senderID,
		Text:      text,
		CreatedAt: s.stamp(ctx, channelID),
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	s.notifyRecipient(ctx, senderID, recipientID, text)

	if s.publisher != nil {
		s.publisher.Publish(ctx, ws.ChatTopic(channelID), message)
	}

	return message, nil
}

// History returns the full channel between userID and otherID, ascending.
func (s *chatService) History(ctx context.Context, userID, otherID string) ([]models.Message, error) {
	if userID == otherID {
		return nil, fmt.Errorf("%w: cannot open a channel with yourself", ErrValidation)
	}
	return s.messageRepo.GetByChannelID(ctx, ResolveChannelID(userID, otherID))
}

func (s *chatService) HistoryByChannel(ctx context.Context, channelID string) ([]models.Message, error) {
	if _, _, ok := ChannelParticipants(channelID); !ok {
		return nil, fmt.Errorf("%w: malformed channel id", ErrValidation)
	}
	return s.messageRepo.GetByChannelID(ctx, channelID)
}

// stamp assigns the server timestamp for the next message in channelID,
// clamped so it is never earlier than the previous one. Seeded from the
// stored log the first time a channel is touched after startup.
func (s *chatService) stamp(ctx context.Context, channelID string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, seen := s.lastStamp[channelID]
	if !seen {
		if tail, err := s.messageRepo.LastInChannel(ctx, channelID); err == nil && tail != nil {
			last = tail.CreatedAt
		}
	}

	now := time.Now().UTC()
	if now.Before(last) {
		now = last
	}
	s.lastStamp[channelID] = now
	return now
}

func (s *chatService) notifyRecipient(ctx context.Context, senderID, recipientID, text string) {
	sender, err := s.userRepo.FindByID(senderID)
	senderName := senderID
	if err == nil {
		if sender.DisplayName != "" {
			senderName = sender.DisplayName
		} else {
			senderName = sender.Email
		}
	}

	title := fmt.Sprintf("New message from %s", senderName)
	preview := text
	if runes := []rune(preview); len(runes) > notificationPreviewLimit {
		preview = string(runes[:notificationPreviewLimit-3]) + "..."
	}

	if _, err := s.notifier.Notify(ctx, recipientID, title, preview, models.CategoryInfo); err != nil {
		slog.Warn("message notification failed", "recipient_id", recipientID, "error", err)
	}
}
