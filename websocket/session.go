package websocket

import (
	"sync"

	"servicelink-server/models"
)

// BadgeCounts is the unread summary pushed to the UI badge
type BadgeCounts struct {
	Notifications int `json:"notifications"`
	Payments      int `json:"payments"`
	Requests      int `json:"requests"`
	Chats         int `json:"chats"`
	Total         int `json:"total"`
}

// Session holds the per-user transient state the engine derives from the
// change streams: the four unread sets, the current page pointer, and the
// actively viewed conversation. All durable state lives in the store; a
// session can be rebuilt by reconnecting.
//
// The dispatcher goroutine is the only writer of the unread sets. The mutex
// exists because page and conversation pointers are set from connection
// read pumps, and because every event handler must publish its full set
// mutation in one critical section.
type Session struct {
	mu   sync.Mutex
	user models.User

	currentPage        string
	activeConversation string

	unreadNotifications map[uint]struct{}
	unreadPayments      map[uint]struct{}
	unreadRequests      map[uint]struct{}
	unreadChats         map[string]struct{}
}

func newSession(user models.User) *Session {
	return &Session{
		user:                user,
		unreadNotifications: make(map[uint]struct{}),
		unreadPayments:      make(map[uint]struct{}),
		unreadRequests:      make(map[uint]struct{}),
		unreadChats:         make(map[string]struct{}),
	}
}

// UserID returns the owning user's id
func (s *Session) UserID() uint {
	return s.user.ID
}

// SetPage records the currently active view
func (s *Session) SetPage(page string) {
	s.mu.Lock()
	s.currentPage = page
	s.mu.Unlock()
}

// Page returns the currently active view
func (s *Session) Page() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPage
}

// OpenConversation marks a conversation as actively viewed and clears its
// unread entry
func (s *Session) OpenConversation(conversationID string) {
	s.mu.Lock()
	s.activeConversation = conversationID
	delete(s.unreadChats, conversationID)
	s.mu.Unlock()
}

// CloseConversation clears the active conversation pointer
func (s *Session) CloseConversation() {
	s.mu.Lock()
	s.activeConversation = ""
	s.mu.Unlock()
}

// ActiveConversation returns the conversation currently open in the UI
func (s *Session) ActiveConversation() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeConversation
}

// Counts returns the unread summary. Total is the sum over the four sets.
func (s *Session) Counts() BadgeCounts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countsLocked()
}

func (s *Session) countsLocked() BadgeCounts {
	c := BadgeCounts{
		Notifications: len(s.unreadNotifications),
		Payments:      len(s.unreadPayments),
		Requests:      len(s.unreadRequests),
		Chats:         len(s.unreadChats),
	}
	c.Total = c.Notifications + c.Payments + c.Requests + c.Chats
	return c
}

// MarkRead removes a notification id from the general set and, when its
// payload references a payment or request, that id from the specialized set.
// It never grows any set.
func (s *Session) MarkRead(notificationID uint, payload models.NotificationPayload) BadgeCounts {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.unreadNotifications, notificationID)
	if payload.PaymentID != 0 {
		delete(s.unreadPayments, payload.PaymentID)
		delete(s.unreadNotifications, payload.PaymentID)
	}
	if payload.RequestID != 0 {
		delete(s.unreadRequests, payload.RequestID)
		delete(s.unreadNotifications, payload.RequestID)
	}
	if payload.OfferID != 0 {
		delete(s.unreadNotifications, payload.OfferID)
	}
	return s.countsLocked()
}

// MarkAllRead clears all four unread sets
func (s *Session) MarkAllRead() BadgeCounts {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unreadNotifications = make(map[uint]struct{})
	s.unreadPayments = make(map[uint]struct{})
	s.unreadRequests = make(map[uint]struct{})
	s.unreadChats = make(map[string]struct{})
	return s.countsLocked()
}

// HasUnreadChat reports whether a conversation has unread messages
func (s *Session) HasUnreadChat(conversationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.unreadChats[conversationID]
	return ok
}
