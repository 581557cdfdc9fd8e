package service

import (
	"context"
	"strings"

	"github.com/rajhackss/organ-donor-portal/internal/http-api/models"
	"github.com/rajhackss/organ-donor-portal/internal/http-api/repository"
	ws "github.com/rajhackss/organ-donor-portal/internal/websocket"
)

// topicDirectory wires the realtime layer's topic contract onto the service
// layer: who may attach to a topic, and what snapshot a fresh subscription
// replays before live deltas.
type topicDirectory struct {
	userRepo      repository.UserRepository
	chat          ChatService
	notifications NotificationService
}

func NewTopicDirectory(
	userRepo repository.UserRepository,
	chat ChatService,
	notifications NotificationService,
) ws.TopicDirectory {
	return &topicDirectory{
		userRepo:      userRepo,
		chat:          chat,
		notifications: notifications,
	}
}

// Authorize gates topic attachment:
//   - users: admin only (drives the admin dashboard)
//   - notifications:<id>: the recipient only
//   - chat:<channel>: a Verified participant of that channel
func (d *topicDirectory) Authorize(ctx context.Context, userID, role, topic string) error {
	switch {
	case topic == ws.TopicUsers:
		if role != models.RoleAdmin {
			return ErrForbidden
		}
		return nil

	case strings.HasPrefix(topic, "notifications:"):
		if strings.TrimPrefix(topic, "notifications:") != userID {
			return ErrForbidden
		}
		return nil

	case strings.HasPrefix(topic, "chat:"):
		channelID := strings.TrimPrefix(topic, "chat:")
		a, b, ok := ChannelParticipants(channelID)
		if !ok {
			return ErrValidation
		}
		if userID != a && userID != b {
			return ErrForbidden
		}
		// unverified profiles may not observe chat, mirroring the REST gate
		user, err := d.userRepo.FindByID(userID)
		if err != nil {
			return ErrForbidden
		}
		if !user.IsVerified() && user.Role != models.RoleAdmin {
			return ErrForbidden
		}
		return nil

	default:
		return ErrValidation
	}
}

// Snapshot produces the full current state of a topic.
func (d *topicDirectory) Snapshot(ctx context.Context, topic string) (interface{}, error) {
	switch {
	case topic == ws.TopicUsers:
		return d.userRepo.ListAll()

	case strings.HasPrefix(topic, "notifications:"):
		return d.notifications.List(ctx, strings.TrimPrefix(topic, "notifications:"))

	case strings.HasPrefix(topic, "chat:"):
		return d.chat.HistoryByChannel(ctx, strings.TrimPrefix(topic, "chat:"))

	default:
		return nil, ErrValidation
	}
}
