package models

import (
	"time"
)

// Service represents a fixed-price service listed by a provider
type Service struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ProviderID  uint      `json:"provider_id" gorm:"not null;index"`
	Provider    User      `json:"provider,omitempty" gorm:"foreignKey:ProviderID"`
	Title       string    `json:"title" gorm:"type:varchar(200);not null"`
	Category    string    `json:"category" gorm:"type:varchar(100);not null;index"`
	Description string    `json:"description" gorm:"type:text"`
	Price       float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the Service model
func (Service) TableName() string {
	return "services"
}

// ServiceCreate represents the request structure for listing a service
type ServiceCreate struct {
	Title       string  `json:"title" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
}
