package models

import (
	"time"
)

// Favorite bookmarks a service listing for a seeker
type Favorite struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_favorites_user_service"`
	ServiceID uint      `json:"service_id" gorm:"not null;uniqueIndex:idx_favorites_user_service"`
	Service   Service   `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the Favorite model
func (Favorite) TableName() string {
	return "favorites"
}
