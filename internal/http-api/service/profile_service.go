package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rajhackss/organ-donor-portal/internal/http-api/models"
	"github.com/rajhackss/organ-donor-portal/internal/http-api/repository"
	ws "github.com/rajhackss/organ-donor-portal/internal/websocket"

	"gorm.io/gorm"
)

// ProfileUpdate is the tagged schema accepted on profile writes. Nil fields
// are left untouched; set fields are validated against the enumerated sets
// before anything reaches the database.
type ProfileUpdate struct {
	FullName        *string
	Age             *int
	ContactPhone    *string
	BloodGroup      *string
	Organ           *string
	HealthCondition *string
	Available       *bool
}

// UserStats is the admin dashboard summary.
type UserStats struct {
	Pending    int `json:"pending"`
	Donors     int `json:"donors"`
	Recipients int `json:"recipients"`
}

type ProfileService interface {
	Get(userID string) (*models.User, error)
	UpdateProfile(userID string, update ProfileUpdate) (*models.User, error)
	Matches(userID string, filter repository.MatchFilter) ([]models.User, error)
	ListUsers() ([]models.User, UserStats, error)
	SetStatus(ctx context.Context, targetID, newStatus string) (*models.User, error)
}

type profileService struct {
	userRepo  repository.UserRepository
	notifier  NotificationService
	publisher ws.Publisher
}

func NewProfileService(userRepo repository.UserRepository, notifier NotificationService, publisher ws.Publisher) ProfileService {
	return &profileService{userRepo: userRepo, notifier: notifier, publisher: publisher}
}

func (s *profileService) Get(userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies an owner edit. Concurrent writers (self-edit racing
// an admin status change) are not coordinated: last writer wins.
func (s *profileService) UpdateProfile(userID string, update ProfileUpdate) (*models.User, error) {
	fields := map[string]interface{}{}

	if update.FullName != nil {
		fields["full_name"] = *update.FullName
	}
	if update.Age != nil {
		if *update.Age < 0 || *update.Age > 130 {
			return nil, fmt.Errorf("%w: implausible age", ErrValidation)
		}
		fields["age"] = *update.Age
	}
	if update.ContactPhone != nil {
		fields["contact_phone"] = *update.ContactPhone
	}
	if update.BloodGroup != nil {
		if !containsString(models.ValidBloodGroups, *update.BloodGroup) {
			return nil, fmt.Errorf("%w: unknown blood group %q", ErrValidation, *update.BloodGroup)
		}
		fields["blood_group"] = *update.BloodGroup
	}
	if update.Organ != nil {
		if !containsString(models.ValidOrgans, *update.Organ) {
			return nil, fmt.Errorf("%w: unknown organ %q", ErrValidation, *update.Organ)
		}
		fields["organ"] = *update.Organ
	}
	if update.HealthCondition != nil {
		fields["health_condition"] = *update.HealthCondition
	}
	if update.Available != nil {
		fields["available"] = *update.Available
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}

	if err := s.userRepo.UpdateProfile(userID, fields); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	s.publishUserDelta(user)
	return user, nil
}

// Matches lists verified counterpart profiles for a verified caller.
// Verification gating for the caller is enforced by middleware; this keeps
// the unverified side invisible.
func (s *profileService) Matches(userID string, filter repository.MatchFilter) ([]models.User, error) {
	user, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	counterpart := models.CounterpartRole(user.Role)
	if counterpart == "" {
		return nil, fmt.Errorf("%w: role %q has no counterpart", ErrValidation, user.Role)
	}

	return s.userRepo.ListVerifiedByRole(counterpart, filter)
}

// ListUsers returns every profile plus the dashboard stats, admin only
// (enforced at the route).
func (s *profileService) ListUsers() ([]models.User, UserStats, error) {
	users, err := s.userRepo.ListAll()
	if err != nil {
		return nil, UserStats{}, err
	}

	var stats UserStats
	for _, u := range users {
		if u.Status == models.StatusPending {
			stats.Pending++
		}
		switch u.Role {
		case models.RoleDonor:
			stats.Donors++
		case models.RoleRecipient:
			stats.Recipients++
		}
	}
	return users, stats, nil
}

// allowedTransitions is the verification state machine. Admin-triggered
// only; there are no automatic transitions.
var allowedTransitions = map[string][]string{
	models.StatusPending:  {models.StatusVerified, models.StatusRejected},
	models.StatusVerified: {models.StatusPending}, // revocation
}

// SetStatus moves a profile through the verification state machine and
// tells the affected user. The notification and the realtime delta are
// best-effort; the status write itself is the source of truth.
func (s *profileService) SetStatus(ctx context.Context, targetID, newStatus string) (*models.User, error) {
	target, err := s.Get(targetID)
	if err != nil {
		return nil, err
	}

	if target.Role == models.RoleAdmin {
		return nil, fmt.Errorf("%w: admin accounts are not verified", ErrValidation)
	}

	if !containsString(allowedTransitions[target.Status], newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, target.Status, newStatus)
	}

	if err := s.userRepo.UpdateStatus(targetID, newStatus); err != nil {
		return nil, err
	}
	target.Status = newStatus

	title, body, category := statusChangeNotice(newStatus)
	if _, err := s.notifier.Notify(ctx, targetID, title, body, category); err != nil {
		slog.Warn("status notification failed", "user_id", targetID, "error", err)
	}

	s.publishUserDelta(target)
	return target, nil
}

func statusChangeNotice(status string) (title, body, category string) {
	switch status {
	case models.StatusVerified:
		return "Account verified",
			"Your profile has been verified. You can now browse matches and start conversations.",
			models.CategorySuccess
	case models.StatusRejected:
		return "Verification rejected",
			"Your profile could not be verified. Please review your details and contact support.",
			models.CategoryWarning
	default:
		return "Verification revoked",
			"Your profile verification was revoked and is pending review again.",
			models.CategoryInfo
	}
}

func (s *profileService) publishUserDelta(user *models.User) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(context.Background(), ws.TopicUsers, user)
}

func containsString(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
