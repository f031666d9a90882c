package models

import (
	"time"
)

// ServiceRequestStatus represents the current status of a posted request
type ServiceRequestStatus string

const (
	RequestStatusOpen   ServiceRequestStatus = "OPEN"
	RequestStatusClosed ServiceRequestStatus = "CLOSED"
)

// OfferStatus represents the status of a provider's offer on a request
type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "PENDING"
	OfferStatusAccepted OfferStatus = "ACCEPTED"
	OfferStatusRejected OfferStatus = "REJECTED"
)

// ServiceRequest represents an open call for a service posted by a seeker
type ServiceRequest struct {
	ID          uint                 `json:"id" gorm:"primaryKey"`
	SeekerID    uint                 `json:"seeker_id" gorm:"not null;index"`
	Seeker      User                 `json:"seeker,omitempty" gorm:"foreignKey:SeekerID"`
	SeekerName  string               `json:"seeker_name" gorm:"size:255"`
	Category    string               `json:"category" gorm:"type:varchar(100);not null"`
	Description string               `json:"description" gorm:"type:text"`
	Price       float64              `json:"price" gorm:"type:decimal(10,2);not null"`
	Lat         *float64             `json:"lat" gorm:"type:decimal(10,8)"`
	Lng         *float64             `json:"lng" gorm:"type:decimal(11,8)"`
	Address     string               `json:"address" gorm:"type:text"`
	Status      ServiceRequestStatus `json:"status" gorm:"type:varchar(20);not null;default:'OPEN';check:status IN ('OPEN','CLOSED')"`
	CreatedAt   time.Time            `json:"created_at" gorm:"autoCreateTime"`
	ExpiresAt   time.Time            `json:"expires_at" gorm:"index"`
}

// TableName specifies the table name for the ServiceRequest model
func (ServiceRequest) TableName() string {
	return "service_requests"
}

// Coordinates returns the request location; ok is false when unset
func (r ServiceRequest) Coordinates() (lat, lng float64, ok bool) {
	if r.Lat == nil || r.Lng == nil {
		return 0, 0, false
	}
	return *r.Lat, *r.Lng, true
}

// Offer represents a provider's priced response to a service request.
// A provider may offer at most once per request.
type Offer struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	RequestID    uint        `json:"request_id" gorm:"not null;uniqueIndex:idx_request_provider"`
	Request      ServiceRequest `json:"request,omitempty" gorm:"foreignKey:RequestID"`
	ProviderID   uint        `json:"provider_id" gorm:"not null;uniqueIndex:idx_request_provider"`
	Provider     User        `json:"provider,omitempty" gorm:"foreignKey:ProviderID"`
	ProviderName string      `json:"provider_name" gorm:"size:255"`
	SeekerID     uint        `json:"seeker_id" gorm:"not null;index"`
	Price        float64     `json:"price" gorm:"type:decimal(10,2);not null"`
	Message      string      `json:"message" gorm:"type:text"`
	Status       OfferStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';check:status IN ('PENDING','ACCEPTED','REJECTED')"`
	CreatedAt    time.Time   `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the Offer model
func (Offer) TableName() string {
	return "request_offers"
}

// ServiceRequestCreate represents the request structure for posting a service request
type ServiceRequestCreate struct {
	Category    string  `json:"category" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Lat         float64 `json:"lat" binding:"required"`
	Lng         float64 `json:"lng" binding:"required"`
	Address     string  `json:"address"`
}

// OfferCreate represents the request structure for making an offer
type OfferCreate struct {
	RequestID uint    `json:"request_id" binding:"required"`
	Price     float64 `json:"price" binding:"required,gt=0"`
	Message   string  `json:"message"`
}
