package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleSeeker   UserRole = "SEEKER"
	RoleProvider UserRole = "PROVIDER"
)

type User struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Name            string    `json:"name" gorm:"size:255;not null"`
	Email           string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash    string    `json:"-" gorm:"size:255;not null"`
	Role            UserRole  `json:"role" gorm:"type:varchar(20);not null;check:role IN ('SEEKER','PROVIDER')"`
	Phone           *string   `json:"phone" gorm:"size:20"`
	ServiceCategory *string   `json:"service_category" gorm:"size:100"`
	PaymentMethod   *string   `json:"payment_method" gorm:"size:50"`
	PaymentDetail   *string   `json:"payment_detail" gorm:"size:255"`
	Lat             *float64  `json:"lat" gorm:"type:decimal(10,8)"`
	Lng             *float64  `json:"lng" gorm:"type:decimal(11,8)"`
	Address         *string   `json:"address" gorm:"type:text"`
	Rating          float64   `json:"rating" gorm:"type:decimal(3,1);default:0"`
	IsActive        bool      `json:"is_active" gorm:"default:true"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// BeforeCreate is a GORM hook that runs before creating a user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleSeeker
	}
	return nil
}

// IsValidRole checks if the user role is valid
func (u *User) IsValidRole() bool {
	switch u.Role {
	case RoleSeeker, RoleProvider:
		return true
	default:
		return false
	}
}

// IsSeeker checks if the user is a seeker
func (u *User) IsSeeker() bool {
	return u.Role == RoleSeeker
}

// IsProvider checks if the user is a provider
func (u *User) IsProvider() bool {
	return u.Role == RoleProvider
}

// HasLocation reports whether both coordinates are set
func (u *User) HasLocation() bool {
	return u.Lat != nil && u.Lng != nil
}

// Coordinates returns the user's stored location; ok is false when unset
func (u *User) Coordinates() (lat, lng float64, ok bool) {
	if !u.HasLocation() {
		return 0, 0, false
	}
	return *u.Lat, *u.Lng, true
}

// UserSignup represents the request structure for account creation
type UserSignup struct {
	Name            string   `json:"name" binding:"required"`
	Email           string   `json:"email" binding:"required,email"`
	Password        string   `json:"password" binding:"required,min=6"`
	Role            UserRole `json:"role" binding:"required"`
	Phone           *string  `json:"phone"`
	ServiceCategory *string  `json:"service_category"`
	PaymentMethod   *string  `json:"payment_method"`
	PaymentDetail   *string  `json:"payment_detail"`
	Lat             *float64 `json:"lat"`
	Lng             *float64 `json:"lng"`
	Address         *string  `json:"address"`
}

// UserLogin represents the request structure for logging in
type UserLogin struct {
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required"`
	Role     UserRole `json:"role" binding:"required"`
}
