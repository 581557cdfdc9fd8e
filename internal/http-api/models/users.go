package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role values a profile can carry. Admin accounts are seeded, never
// self-registered.
const (
	RoleDonor     = "donor"
	RoleRecipient = "recipient"
	RoleAdmin     = "admin"
)

// Verification status values. Transitions are admin-triggered only, see
// ProfileService.
const (
	StatusPending  = "Pending"
	StatusVerified = "Verified"
	StatusRejected = "Rejected"
)

// ValidRoles lists the roles accepted at registration time.
var ValidRoles = []string{RoleDonor, RoleRecipient}

// ValidBloodGroups is the closed set accepted on profile writes.
var ValidBloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// ValidOrgans is the closed set accepted on profile writes.
var ValidOrgans = []string{"Kidney", "Liver", "Heart", "Lung", "Pancreas", "Cornea", "Bone Marrow", "Blood"}

type User struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Email       string `gorm:"uniqueIndex;not null" json:"email"`
	Password    string `gorm:"column:password_hash;not null" json:"-"` // Not show in JSON
	DisplayName string `gorm:"not null" json:"display_name"`
	Role        string `gorm:"not null;index" json:"role"`                      // donor | recipient | admin
	Status      string `gorm:"default:'Pending';not null;index" json:"status"` // Pending | Verified | Rejected

	// Medical attributes, optional until the owner fills the profile form.
	FullName        string `json:"full_name"`
	Age             int    `json:"age,omitempty"`
	ContactPhone    string `json:"contact_phone,omitempty"`
	BloodGroup      string `json:"blood_group,omitempty"`
	Organ           string `json:"organ,omitempty"`
	HealthCondition string `json:"health_condition,omitempty"`
	Available       bool   `gorm:"default:false" json:"available"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	// If the ID is not already set, generate a new one.
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return
}

func (User) TableName() string {
	return "users"
}

// IsVerified reports whether the profile may be matched and contacted.
func (user *User) IsVerified() bool {
	return user.Status == StatusVerified
}

// CounterpartRole maps donor to recipient and back. Admins have no
// counterpart.
func CounterpartRole(role string) string {
	switch role {
	case RoleDonor:
		return RoleRecipient
	case RoleRecipient:
		return RoleDonor
	default:
		return ""
	}
}
