package models

import (
	"time"
)

// Rating represents a rating given by one booking party to the other after
// completion. A rater may rate a booking at most once.
type Rating struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	BookingID  uint      `json:"booking_id" gorm:"not null;uniqueIndex:idx_booking_rater"`
	RaterID    uint      `json:"rater_id" gorm:"not null;uniqueIndex:idx_booking_rater"`
	RaterName  string    `json:"rater_name" gorm:"size:255"`
	RaterRole  UserRole  `json:"rater_role" gorm:"type:varchar(20)"`
	TargetID   uint      `json:"target_id" gorm:"not null;index"`
	TargetRole UserRole  `json:"target_role" gorm:"type:varchar(20)"`
	Rating     int       `json:"rating" gorm:"type:int;not null;check:rating >= 1 AND rating <= 5"`
	Comment    string    `json:"comment" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the Rating model
func (Rating) TableName() string {
	return "ratings"
}

// PendingRating is created transactionally when a booking completes and
// removed when the rating is submitted. It replaces wall-clock rating
// prompts with a durable queue item.
type PendingRating struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	BookingID  uint      `json:"booking_id" gorm:"not null;uniqueIndex:idx_pending_booking_rater"`
	RaterID    uint      `json:"rater_id" gorm:"not null;uniqueIndex:idx_pending_booking_rater"`
	TargetID   uint      `json:"target_id" gorm:"not null"`
	TargetRole UserRole  `json:"target_role" gorm:"type:varchar(20)"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the PendingRating model
func (PendingRating) TableName() string {
	return "pending_ratings"
}

// RatingCreate represents the request structure for submitting a rating
type RatingCreate struct {
	BookingID uint   `json:"booking_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}

// RatingStats summarizes the ratings received by a user
type RatingStats struct {
	Average      float64     `json:"average"`
	Total        int         `json:"total"`
	Distribution map[int]int `json:"distribution"`
}
