package repository

import (
	"time"

	"github.com/rajhackss/organ-donor-portal/internal/http-api/models"

	"gorm.io/gorm"
)

// MatchFilter narrows a counterpart listing. Zero values mean "no filter".
type MatchFilter struct {
	BloodGroup string
	Organ      string
}

// UserRepository defines the interface for user profile data operations.
type UserRepository interface {
	Create(user *models.User) error
	FindByEmail(email string) (*models.User, error)
	FindByID(id string) (*models.User, error)
	ListAll() ([]models.User, error)
	ListVerifiedByRole(role string, filter MatchFilter) ([]models.User, error)
	UpdateProfile(id string, fields map[string]interface{}) error
	UpdateStatus(id string, status string) error
	UpdateLastLogin(id string, at time.Time) error
}

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository in a GORM implementation
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	// return nil on error so a zero-value struct is never mistaken for a hit
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ListAll() ([]models.User, error) {
	var users []models.User
	err := r.db.Order("created_at ASC").Find(&users).Error
	return users, err
}

func (r *userRepository) ListVerifiedByRole(role string, filter MatchFilter) ([]models.User, error) {
	var users []models.User
	q := r.db.Where("role = ? AND status = ?", role, models.StatusVerified)
	if filter.BloodGroup != "" {
		q = q.Where("blood_group = ?", filter.BloodGroup)
	}
	if filter.Organ != "" {
		q = q.Where("organ = ?", filter.Organ)
	}
	err := q.Order("created_at ASC").Find(&users).Error
	return users, err
}

// UpdateProfile applies a partial update. Concurrent writers are not
// coordinated: last writer wins.
func (r *userRepository) UpdateProfile(id string, fields map[string]interface{}) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Updates(fields).Error
}

func (r *userRepository) UpdateStatus(id string, status string) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Update("status", status).Error
}

func (r *userRepository) UpdateLastLogin(id string, at time.Time) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Update("last_login", at).Error
}
