package database

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/rajhackss/organ-donor-portal/internal/http-api/middleware/auth"
	"github.com/rajhackss/organ-donor-portal/internal/http-api/models"

	"gorm.io/gorm"
)

// SeedAdmin ensures one verified admin account exists. Admins are never
// self-registered; this is the only way one is created.
func SeedAdmin(db *gorm.DB, log *slog.Logger, email, password string) error {
	if email == "" || password == "" {
		log.Warn("admin seeding skipped, ADMIN_EMAIL/ADMIN_PASSWORD not set")
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil // already seeded
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin account: %w", err)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:       email,
		Password:    hashed,
		DisplayName: "Administrator",
		Role:        models.RoleAdmin,
		Status:      models.StatusVerified,
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	log.Info("seeded admin account", "email", email)
	return nil
}
