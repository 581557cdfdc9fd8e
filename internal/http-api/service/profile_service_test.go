package service

import (
	"context"
	"testing"

	"github.com/rajhackss/organ-donor-portal/internal/http-api/models"
	"github.com/rajhackss/organ-donor-portal/internal/http-api/repository"
	ws "github.com/rajhackss/organ-donor-portal/internal/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

func newProfileFixture() (*MockUserRepository, *MockNotificationService, *recordingPublisher, ProfileService) {
	userRepo := new(MockUserRepository)
	notifier := new(MockNotificationService)
	publisher := &recordingPublisher{}
	svc := NewProfileService(userRepo, notifier, publisher)
	return userRepo, notifier, publisher, svc
}

func TestSetStatus_TransitionMatrix(t *testing.T) {
	cases := []struct {
		from    string
		to      string
		allowed bool
	}{
		{models.StatusPending, models.StatusVerified, true},
		{models.StatusPending, models.StatusRejected, true},
		{models.StatusVerified, models.StatusPending, true}, // revocation
		{models.StatusVerified, models.StatusRejected, false},
		{models.StatusRejected, models.StatusVerified, false},
		{models.StatusRejected, models.StatusPending, false},
		{models.StatusPending, models.StatusPending, false},
	}

	for _, tc := range cases {
		userRepo, notifier, _, svc := newProfileFixture()
		userRepo.On("FindByID", "u1").Return(&models.User{
			ID: "u1", Role: models.RoleDonor, Status: tc.from,
		}, nil)
		if tc.allowed {
			userRepo.On("UpdateStatus", "u1", tc.to).Return(nil)
			notifier.On("Notify", mock.Anything, "u1", mock.Anything, mock.Anything, mock.Anything).
				Return(&models.Notification{}, nil)
		}

		user, err := svc.SetStatus(context.Background(), "u1", tc.to)
		if tc.allowed {
			assert.NoError(t, err, "%s -> %s should be allowed", tc.from, tc.to)
			assert.Equal(t, tc.to, user.Status)
		} else {
			assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s should be rejected", tc.from, tc.to)
			userRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
		}
	}
}

func TestSetStatus_VerifiedSendsSuccessNotification(t *testing.T) {
	userRepo, notifier, publisher, svc := newProfileFixture()

	userRepo.On("FindByID", "u1").Return(&models.User{
		ID: "u1", Role: models.RoleRecipient, Status: models.StatusPending,
	}, nil)
	userRepo.On("UpdateStatus", "u1", models.StatusVerified).Return(nil)
	notifier.On("Notify", mock.Anything, "u1", "Account verified", mock.Anything, models.CategorySuccess).
		Return(&models.Notification{}, nil).Once()

	_, err := svc.SetStatus(context.Background(), "u1", models.StatusVerified)
	assert.NoError(t, err)
	notifier.AssertExpectations(t)
	assert.Equal(t, []string{ws.TopicUsers}, publisher.published())
}

func TestSetStatus_RevokeThenReverify(t *testing.T) {
	userRepo, notifier, publisher, svc := newProfileFixture()

	userRepo.On("FindByID", "u1").Return(&models.User{
		ID: "u1", Role: models.RoleDonor, Status: models.StatusVerified,
	}, nil).Once()
	userRepo.On("FindByID", "u1").Return(&models.User{
		ID: "u1", Role: models.RoleDonor, Status: models.StatusPending,
	}, nil).Once()
	userRepo.On("UpdateStatus", "u1", mock.Anything).Return(nil)
	notifier.On("Notify", mock.Anything, "u1", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Notification{}, nil)

	user, err := svc.SetStatus(context.Background(), "u1", models.StatusPending)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPending, user.Status)

	user, err = svc.SetStatus(context.Background(), "u1", models.StatusVerified)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusVerified, user.Status)

	// one users-topic delta per applied transition, in order
	assert.Equal(t, []string{ws.TopicUsers, ws.TopicUsers}, publisher.published())
}

func TestSetStatus_AdminAccountsNotVerifiable(t *testing.T) {
	userRepo, _, _, svc := newProfileFixture()

	userRepo.On("FindByID", "root").Return(&models.User{
		ID: "root", Role: models.RoleAdmin, Status: models.StatusVerified,
	}, nil)

	_, err := svc.SetStatus(context.Background(), "root", models.StatusPending)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateProfile_RejectsUnknownBloodGroup(t *testing.T) {
	userRepo, _, _, svc := newProfileFixture()

	_, err := svc.UpdateProfile("u1", ProfileUpdate{BloodGroup: strPtr("Z+")})
	assert.ErrorIs(t, err, ErrValidation)
	userRepo.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
}

func TestUpdateProfile_RejectsUnknownOrgan(t *testing.T) {
	userRepo, _, _, svc := newProfileFixture()

	_, err := svc.UpdateProfile("u1", ProfileUpdate{Organ: strPtr("Spleen")})
	assert.ErrorIs(t, err, ErrValidation)
	userRepo.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
}

func TestUpdateProfile_EmptyUpdateRejected(t *testing.T) {
	_, _, _, svc := newProfileFixture()

	_, err := svc.UpdateProfile("u1", ProfileUpdate{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateProfile_AppliesFields(t *testing.T) {
	userRepo, _, publisher, svc := newProfileFixture()

	userRepo.On("UpdateProfile", "u1", map[string]interface{}{
		"full_name":   "Jordan Smith",
		"age":         34,
		"blood_group": "O-",
		"organ":       "Kidney",
		"available":   true,
	}).Return(nil)
	userRepo.On("FindByID", "u1").Return(&models.User{ID: "u1", FullName: "Jordan Smith"}, nil)

	user, err := svc.UpdateProfile("u1", ProfileUpdate{
		FullName:   strPtr("Jordan Smith"),
		Age:        intPtr(34),
		BloodGroup: strPtr("O-"),
		Organ:      strPtr("Kidney"),
		Available:  boolPtr(true),
	})
	assert.NoError(t, err)
	assert.Equal(t, "Jordan Smith", user.FullName)
	assert.Equal(t, []string{ws.TopicUsers}, publisher.published())
}

func TestMatches_DonorSeesVerifiedRecipients(t *testing.T) {
	userRepo, _, _, svc := newProfileFixture()

	userRepo.On("FindByID", "d1").Return(&models.User{
		ID: "d1", Role: models.RoleDonor, Status: models.StatusVerified,
	}, nil)
	userRepo.On("ListVerifiedByRole", models.RoleRecipient, repository.MatchFilter{Organ: "Kidney"}).
		Return([]models.User{{ID: "r1", Role: models.RoleRecipient}}, nil)

	matches, err := svc.Matches("d1", repository.MatchFilter{Organ: "Kidney"})
	assert.NoError(t, err)
	assert.Len(t, matches, 1)
	assert.Equal(t, "r1", matches[0].ID)
}

func TestMatches_AdminHasNoCounterpart(t *testing.T) {
	userRepo, _, _, svc := newProfileFixture()

	userRepo.On("FindByID", "root").Return(&models.User{
		ID: "root", Role: models.RoleAdmin, Status: models.StatusVerified,
	}, nil)

	_, err := svc.Matches("root", repository.MatchFilter{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListUsers_Stats(t *testing.T) {
	userRepo, _, _, svc := newProfileFixture()

	userRepo.On("ListAll").Return([]models.User{
		{ID: "1", Role: models.RoleDonor, Status: models.StatusPending},
		{ID: "2", Role: models.RoleDonor, Status: models.StatusVerified},
		{ID: "3", Role: models.RoleRecipient, Status: models.StatusPending},
		{ID: "4", Role: models.RoleAdmin, Status: models.StatusVerified},
	}, nil)

	users, stats, err := svc.ListUsers()
	assert.NoError(t, err)
	assert.Len(t, users, 4)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 2, stats.Donors)
	assert.Equal(t, 1, stats.Recipients)
}
