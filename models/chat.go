package models

import (
	"time"
)

// ChatMessage represents a single message between a seeker and a provider.
// ConversationID is derived from the participant pair; no conversation row
// exists.
type ChatMessage struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ConversationID string    `json:"conversation_id" gorm:"size:50;not null;index"`
	SeekerID       uint      `json:"seeker_id" gorm:"not null;index"`
	ProviderID     uint      `json:"provider_id" gorm:"not null;index"`
	SenderID       uint      `json:"sender_id" gorm:"not null"`
	SenderName     string    `json:"sender_name" gorm:"size:255"`
	Content        string    `json:"content" gorm:"type:text;not null"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the ChatMessage model
func (ChatMessage) TableName() string {
	return "chat_messages"
}

// ConversationSummary is the per-conversation aggregate returned when listing
// a user's conversations
type ConversationSummary struct {
	ID            string    `json:"id"`
	SeekerID      uint      `json:"seeker_id"`
	ProviderID    uint      `json:"provider_id"`
	LastMessage   string    `json:"last_message"`
	LastMessageAt time.Time `json:"last_message_at"`
	OtherID       uint      `json:"other_id"`
	OtherName     string    `json:"other_name"`
	OtherRating   float64   `json:"other_rating"`
	HasUnread     bool      `json:"has_unread"`
}

// ChatSend represents the request structure for sending a message
type ChatSend struct {
	ConversationID string `json:"conversation_id" binding:"required"`
	Content        string `json:"content" binding:"required"`
}
