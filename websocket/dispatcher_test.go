package websocket

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"servicelink-server/models"
)

// recordingUI captures UI calls per user for assertions
type recordingUI struct {
	mu      sync.Mutex
	alerts  map[uint][]string
	badges  map[uint][]BadgeCounts
	views   map[uint][]string
	appends map[uint][]string
	prompts map[uint][]uint
}

func newRecordingUI() *recordingUI {
	return &recordingUI{
		alerts:  make(map[uint][]string),
		badges:  make(map[uint][]BadgeCounts),
		views:   make(map[uint][]string),
		appends: make(map[uint][]string),
		prompts: make(map[uint][]uint),
	}
}

func (r *recordingUI) Alert(userID uint, kind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts[userID] = append(r.alerts[userID], message)
}

func (r *recordingUI) BadgeUpdate(userID uint, counts BadgeCounts) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.badges[userID] = append(r.badges[userID], counts)
}

func (r *recordingUI) ViewInvalidate(userID uint, view string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[userID] = append(r.views[userID], view)
}

func (r *recordingUI) MessageAppend(userID uint, conversationID string, msg *models.ChatMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appends[userID] = append(r.appends[userID], msg.Content)
}

func (r *recordingUI) RatingPrompt(userID uint, bookingID, targetID uint, targetRole models.UserRole) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts[userID] = append(r.prompts[userID], bookingID)
}

func (r *recordingUI) lastBadge(userID uint) (BadgeCounts, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	badges := r.badges[userID]
	if len(badges) == 0 {
		return BadgeCounts{}, false
	}
	return badges[len(badges)-1], true
}

func newTestDispatcher() (*Dispatcher, *recordingUI) {
	ui := newRecordingUI()
	return NewDispatcher(ui, 10), ui
}

func seekerUser(id uint, name string) models.User {
	return models.User{ID: id, Name: name, Role: models.RoleSeeker, IsActive: true}
}

func providerUser(id uint, name string, lat, lng float64) models.User {
	return models.User{
		ID: id, Name: name, Role: models.RoleProvider, IsActive: true,
		Lat: &lat, Lng: &lng,
	}
}

func TestPaymentInsertRouting(t *testing.T) {
	d, ui := newTestDispatcher()
	d.Attach(seekerUser(1, "Ayesha"))
	d.Attach(providerUser(2, "Bilal", 24.86, 67.0))

	d.handlePaymentEvent(Event{
		Stream: StreamPayments, Kind: EventInsert, ActorName: "Bilal",
		Payment: &models.Payment{ID: 5, SeekerID: 1, ProviderID: 2, Amount: 2000, Status: models.PaymentStatusPending},
	})

	// Seeker: unread in payments and notifications, alert naming the provider
	badge, ok := ui.lastBadge(1)
	require.True(t, ok)
	require.Equal(t, 1, badge.Payments)
	require.Equal(t, 1, badge.Notifications)
	require.Equal(t, 2, badge.Total)
	require.Contains(t, ui.alerts[1][0], "Payment request of PKR 2000")
	require.Contains(t, ui.alerts[1][0], "Bilal")

	// Provider: confirmation only, no badge
	require.Len(t, ui.alerts[2], 1)
	_, ok = ui.lastBadge(2)
	require.False(t, ok)
}

func TestPaymentCompletedRouting(t *testing.T) {
	d, ui := newTestDispatcher()
	d.Attach(seekerUser(1, "Ayesha"))
	d.Attach(providerUser(2, "Bilal", 24.86, 67.0))

	d.handlePaymentEvent(Event{
		Stream: StreamPayments, Kind: EventUpdate,
		Payment: &models.Payment{ID: 5, BookingID: 9, SeekerID: 1, ProviderID: 2, Amount: 2000, Status: models.PaymentStatusCompleted},
	})

	require.Len(t, ui.alerts[2], 1)
	require.Contains(t, ui.alerts[2][0], "completed")
	require.Len(t, ui.alerts[1], 1)
	require.Contains(t, ui.alerts[1][0], "Payment confirmed")

	// The payer is prompted to rate the provider
	require.Equal(t, []uint{9}, ui.prompts[1])
}

func TestRequestInsertReachesOnlyNearbyProviders(t *testing.T) {
	d, ui := newTestDispatcher()
	d.Attach(seekerUser(1, "Ayesha"))
	d.Attach(providerUser(2, "Bilal", 24.8607, 67.0011))    // ~2 km away
	d.Attach(providerUser(3, "Chaudhry", 31.5204, 74.3587)) // far away

	lat, lng := 24.8787, 67.0011
	d.handleRequestEvent(Event{
		Stream: StreamRequests, Kind: EventInsert,
		Request: &models.ServiceRequest{ID: 7, SeekerID: 1, Category: "Plumbing", Lat: &lat, Lng: &lng},
	})

	// Owner gets the posted confirmation
	require.Len(t, ui.alerts[1], 1)
	require.Contains(t, ui.alerts[1][0], "has been posted")

	// Nearby provider gets unread state and an area alert
	badge, ok := ui.lastBadge(2)
	require.True(t, ok)
	require.Equal(t, 1, badge.Requests)
	require.Equal(t, 1, badge.Notifications)
	require.Contains(t, ui.alerts[2][0], "Plumbing")

	// Distant provider hears nothing
	require.Empty(t, ui.alerts[3])
	_, ok = ui.lastBadge(3)
	require.False(t, ok)
}

func TestOfferInsertRouting(t *testing.T) {
	d, ui := newTestDispatcher()
	d.Attach(seekerUser(1, "Ayesha"))
	d.Attach(providerUser(2, "Bilal", 24.86, 67.0))

	d.handleRequestEvent(Event{
		Stream: StreamRequests, Kind: EventInsert,
		Offer: &models.Offer{ID: 11, RequestID: 7, SeekerID: 1, ProviderID: 2, Price: 1200},
	})

	badge, ok := ui.lastBadge(1)
	require.True(t, ok)
	require.Equal(t, 1, badge.Notifications)
	require.Contains(t, ui.alerts[1][0], "New offer")

	require.Len(t, ui.alerts[2], 1)
	require.Contains(t, ui.alerts[2][0], "has been sent")
}

func TestBookingCancelledAlertsBothParties(t *testing.T) {
	d, ui := newTestDispatcher()
	d.Attach(seekerUser(1, "Ayesha"))
	d.Attach(providerUser(2, "Bilal", 24.86, 67.0))

	reason := "Schedule conflict: Travelling"
	d.handleBookingEvent(Event{
		Stream: StreamBookings, Kind: EventUpdate,
		Booking: &models.Booking{ID: 9, SeekerID: 1, ProviderID: 2, Status: models.BookingStatusCancelled, CancellationReason: &reason},
	})

	require.Contains(t, ui.alerts[1][0], reason)
	require.Contains(t, ui.alerts[2][0], reason)
}

func TestBookingCompletedPromptsBothParties(t *testing.T) {
	d, ui := newTestDispatcher()
	d.Attach(seekerUser(1, "Ayesha"))
	d.Attach(providerUser(2, "Bilal", 24.86, 67.0))

	d.handleBookingEvent(Event{
		Stream: StreamBookings, Kind: EventUpdate,
		Booking: &models.Booking{ID: 9, SeekerID: 1, ProviderID: 2, Status: models.BookingStatusCompleted},
	})

	require.Equal(t, []uint{9}, ui.prompts[1])
	require.Equal(t, []uint{9}, ui.prompts[2])
}

func TestChatMessageToActiveConversationAppendsOnly(t *testing.T) {
	d, ui := newTestDispatcher()
	d.Attach(seekerUser(1, "Ayesha"))
	d.Attach(providerUser(2, "Bilal", 24.86, 67.0))

	recipient, _ := d.Session(1)
	recipient.OpenConversation("1:2")

	d.handleChatEvent(Event{
		Stream: StreamChats, Kind: EventInsert,
		ChatMessage: &models.ChatMessage{ConversationID: "1:2", SeekerID: 1, ProviderID: 2, SenderID: 2, SenderName: "Bilal", Content: "On my way"},
	})

	require.Equal(t, []string{"On my way"}, ui.appends[1])
	require.Empty(t, ui.alerts[1])
	require.False(t, recipient.HasUnreadChat("1:2"))
}

func TestChatMessageToInactiveConversationGoesUnread(t *testing.T) {
	d, ui := newTestDispatcher()
	d.Attach(seekerUser(1, "Ayesha"))
	d.Attach(providerUser(2, "Bilal", 24.86, 67.0))

	recipient, _ := d.Session(1)
	recipient.OpenConversation("1:3")

	d.handleChatEvent(Event{
		Stream: StreamChats, Kind: EventInsert,
		ChatMessage: &models.ChatMessage{ConversationID: "1:2", SeekerID: 1, ProviderID: 2, SenderID: 2, SenderName: "Bilal", Content: "On my way"},
	})

	require.Empty(t, ui.appends[1])
	require.Contains(t, ui.alerts[1][0], "Bilal")
	require.True(t, recipient.HasUnreadChat("1:2"))

	badge, ok := ui.lastBadge(1)
	require.True(t, ok)
	require.Equal(t, 1, badge.Chats)
}

func TestChatMessageToDisconnectedRecipientIsDropped(t *testing.T) {
	d, ui := newTestDispatcher()
	d.Attach(providerUser(2, "Bilal", 24.86, 67.0))

	d.handleChatEvent(Event{
		Stream: StreamChats, Kind: EventInsert,
		ChatMessage: &models.ChatMessage{ConversationID: "1:2", SeekerID: 1, ProviderID: 2, SenderID: 2, Content: "hello"},
	})

	require.Empty(t, ui.alerts[1])
	require.Empty(t, ui.appends[1])
}

func TestPublishDoesNotBlockWhenStreamFull(t *testing.T) {
	d, _ := newTestDispatcher()
	// The dispatcher is not running, so the channel fills up
	for i := 0; i < streamBuffer+10; i++ {
		d.Publish(Event{Stream: StreamChats, Kind: EventInsert})
	}
}

func TestDispatcherMarkRead(t *testing.T) {
	d, ui := newTestDispatcher()
	d.Attach(seekerUser(1, "Ayesha"))

	s, _ := d.Session(1)
	s.mu.Lock()
	s.unreadNotifications[5] = struct{}{}
	s.unreadPayments[5] = struct{}{}
	s.mu.Unlock()

	d.MarkRead(1, &models.Notification{
		ID:   5,
		Data: models.NotificationPayload{PaymentID: 5}.Encode(),
	})

	badge, ok := ui.lastBadge(1)
	require.True(t, ok)
	require.Equal(t, 0, badge.Total)
}

func TestDetachRemovesSession(t *testing.T) {
	d, _ := newTestDispatcher()
	d.Attach(seekerUser(1, "Ayesha"))
	d.Detach(1)

	_, ok := d.Session(1)
	require.False(t, ok)
}
