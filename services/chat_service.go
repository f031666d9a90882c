package services

import (
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"servicelink-server/models"
	ws "servicelink-server/websocket"
)

// ChatService handles direct messages between seekers and providers.
// Conversations are derived from the message log; there is no conversation
// table.
type ChatService struct {
	db     *gorm.DB
	events ws.Publisher
}

// NewChatService creates a chat service publishing to the given event sink
func NewChatService(db *gorm.DB, events ws.Publisher) *ChatService {
	return &ChatService{db: db, events: events}
}

// ConversationID derives the canonical conversation identifier for a
// seeker/provider pair. The seeker id always comes first.
func ConversationID(seekerID, providerID uint) string {
	return fmt.Sprintf("%d:%d", seekerID, providerID)
}

// ParseConversationID splits a conversation identifier back into its parts
func ParseConversationID(id string) (seekerID, providerID uint, err error) {
	parts := strings.Split(id, ":")
	if len(parts) != 2 {
		return 0, 0, Validationf("Invalid conversation id")
	}
	s, err1 := strconv.ParseUint(parts[0], 10, 32)
	p, err2 := strconv.ParseUint(parts[1], 10, 32)
	if err1 != nil || err2 != nil || s == 0 || p == 0 {
		return 0, 0, Validationf("Invalid conversation id")
	}
	return uint(s), uint(p), nil
}

// Send stores a message in the conversation and publishes it for delivery.
// The sender must be one of the two participants.
func (s *ChatService) Send(sender *models.User, in models.ChatSend) (*models.ChatMessage, error) {
	seekerID, providerID, err := ParseConversationID(in.ConversationID)
	if err != nil {
		return nil, err
	}
	if sender.ID != seekerID && sender.ID != providerID {
		return nil, Authorizationf("Not a participant in this conversation")
	}

	message := models.ChatMessage{
		ConversationID: ConversationID(seekerID, providerID),
		SeekerID:       seekerID,
		ProviderID:     providerID,
		SenderID:       sender.ID,
		SenderName:     sender.Name,
		Content:        in.Content,
	}

	if err := s.db.Create(&message).Error; err != nil {
		return nil, classifyDB(err, "")
	}

	s.events.Publish(ws.Event{
		Stream:      ws.StreamChats,
		Kind:        ws.EventInsert,
		ActorName:   sender.Name,
		ChatMessage: &message,
	})

	return &message, nil
}

// History returns a conversation's messages oldest first. Only participants
// can read it.
func (s *ChatService) History(user *models.User, conversationID string) ([]models.ChatMessage, error) {
	seekerID, providerID, err := ParseConversationID(conversationID)
	if err != nil {
		return nil, err
	}
	if user.ID != seekerID && user.ID != providerID {
		return nil, Authorizationf("Not a participant in this conversation")
	}

	var messages []models.ChatMessage
	dbErr := s.db.
		Where("conversation_id = ?", ConversationID(seekerID, providerID)).
		Order("created_at ASC").
		Find(&messages).Error
	if dbErr != nil {
		return nil, classifyDB(dbErr, "")
	}
	return messages, nil
}

// ListConversations summarizes the user's conversations, most recent first.
// hasUnread reports live unread state per conversation; pass nil when no
// session is attached.
func (s *ChatService) ListConversations(user *models.User, hasUnread func(conversationID string) bool) ([]models.ConversationSummary, error) {
	var messages []models.ChatMessage
	err := s.db.
		Where("seeker_id = ? OR provider_id = ?", user.ID, user.ID).
		Order("created_at DESC").
		Find(&messages).Error
	if err != nil {
		return nil, classifyDB(err, "")
	}

	summaries := []models.ConversationSummary{}
	seen := map[string]bool{}
	for _, m := range messages {
		if seen[m.ConversationID] {
			continue
		}
		seen[m.ConversationID] = true

		otherID := m.ProviderID
		if user.ID == m.ProviderID {
			otherID = m.SeekerID
		}

		summary := models.ConversationSummary{
			ID:            m.ConversationID,
			SeekerID:      m.SeekerID,
			ProviderID:    m.ProviderID,
			LastMessage:   m.Content,
			LastMessageAt: m.CreatedAt,
			OtherID:       otherID,
		}

		var other models.User
		if err := s.db.First(&other, otherID).Error; err == nil {
			summary.OtherName = other.Name
			summary.OtherRating = other.Rating
		}
		if hasUnread != nil {
			summary.HasUnread = hasUnread(m.ConversationID)
		}

		summaries = append(summaries, summary)
	}
	return summaries, nil
}
