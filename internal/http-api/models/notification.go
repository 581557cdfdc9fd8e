package models

import "time"

// Notification categories. Anything else is coerced to info at the write
// boundary.
const (
	CategoryInfo    = "info"
	CategorySuccess = "success"
	CategoryWarning = "warning"
)

type Notification struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Category  string    `gorm:"not null" json:"category"` // info | success | warning
	Read      bool      `gorm:"default:false" json:"read"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`

	// Associations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}

// NormalizeCategory coerces unrecognized categories to info.
func NormalizeCategory(category string) string {
	switch category {
	case CategoryInfo, CategorySuccess, CategoryWarning:
		return category
	default:
		return CategoryInfo
	}
}
