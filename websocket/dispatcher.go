package websocket

import (
	"fmt"
	"log"
	"sync"

	"servicelink-server/models"
	"servicelink-server/utils"
)

// UI is the collaborator the engine drives. The hub implements it over
// WebSocket; tests substitute a recorder.
type UI interface {
	Alert(userID uint, kind, message string)
	BadgeUpdate(userID uint, counts BadgeCounts)
	ViewInvalidate(userID uint, view string)
	MessageAppend(userID uint, conversationID string, msg *models.ChatMessage)
	RatingPrompt(userID uint, bookingID, targetID uint, targetRole models.UserRole)
}

const streamBuffer = 100

// Dispatcher fans four independent change streams into a single routing
// goroutine. One bounded channel per stream preserves per-stream ordering;
// the single consumer keeps every session mutation single-writer without
// further locking between events.
type Dispatcher struct {
	ui       UI
	radiusKm float64

	payments chan Event
	requests chan Event
	bookings chan Event
	chats    chan Event
	done     chan struct{}

	mu       sync.RWMutex
	sessions map[uint]*Session
}

// NewDispatcher creates a dispatcher routing to the given UI collaborator.
// radiusKm is the fixed request-to-provider visibility radius.
func NewDispatcher(ui UI, radiusKm float64) *Dispatcher {
	return &Dispatcher{
		ui:       ui,
		radiusKm: radiusKm,
		payments: make(chan Event, streamBuffer),
		requests: make(chan Event, streamBuffer),
		bookings: make(chan Event, streamBuffer),
		chats:    make(chan Event, streamBuffer),
		done:     make(chan struct{}),
		sessions: make(map[uint]*Session),
	}
}

// Run consumes the four streams until Stop is called. Intended to run as a
// single goroutine.
func (d *Dispatcher) Run() {
	for {
		select {
		case ev := <-d.payments:
			d.handlePaymentEvent(ev)
		case ev := <-d.requests:
			d.handleRequestEvent(ev)
		case ev := <-d.bookings:
			d.handleBookingEvent(ev)
		case ev := <-d.chats:
			d.handleChatEvent(ev)
		case <-d.done:
			return
		}
	}
}

// Stop terminates the routing loop
func (d *Dispatcher) Stop() {
	close(d.done)
}

// Publish queues an event on its stream channel. A full stream drops the
// event rather than blocking the mutation path; sessions resynchronize from
// the store on the next page load.
func (d *Dispatcher) Publish(ev Event) {
	var ch chan Event
	switch ev.Stream {
	case StreamPayments:
		ch = d.payments
	case StreamRequests:
		ch = d.requests
	case StreamBookings:
		ch = d.bookings
	case StreamChats:
		ch = d.chats
	default:
		log.Printf("⚠️ Unknown event stream: %s", ev.Stream)
		return
	}

	select {
	case ch <- ev:
	default:
		log.Printf("⚠️ Stream %s is full, dropping %s event", ev.Stream, ev.Kind)
	}
}

// Attach creates (or replaces) the session for a connected user
func (d *Dispatcher) Attach(user models.User) *Session {
	s := newSession(user)
	d.mu.Lock()
	d.sessions[user.ID] = s
	d.mu.Unlock()
	return s
}

// Detach discards a user's session
func (d *Dispatcher) Detach(userID uint) {
	d.mu.Lock()
	delete(d.sessions, userID)
	d.mu.Unlock()
}

// Session returns the live session for a user, if any
func (d *Dispatcher) Session(userID uint) (*Session, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.sessions[userID]
	return s, ok
}

// MarkRead clears a read notification from the session's unread sets and
// pushes the new badge counts
func (d *Dispatcher) MarkRead(userID uint, n *models.Notification) {
	if s, ok := d.Session(userID); ok {
		counts := s.MarkRead(n.ID, n.Payload())
		d.ui.BadgeUpdate(userID, counts)
	}
}

// MarkAllRead clears every unread set for the user
func (d *Dispatcher) MarkAllRead(userID uint) {
	if s, ok := d.Session(userID); ok {
		d.ui.BadgeUpdate(userID, s.MarkAllRead())
	}
}

func (d *Dispatcher) handlePaymentEvent(ev Event) {
	p := ev.Payment
	if p == nil {
		return
	}

	switch {
	case ev.Kind == EventInsert:
		if s, ok := d.Session(p.SeekerID); ok {
			s.mu.Lock()
			s.unreadPayments[p.ID] = struct{}{}
			s.unreadNotifications[p.ID] = struct{}{}
			counts := s.countsLocked()
			page := s.currentPage
			s.mu.Unlock()

			d.ui.Alert(p.SeekerID, "info", fmt.Sprintf("💰 Payment request of PKR %.0f from %s", p.Amount, actorOr(ev.ActorName, "Provider")))
			d.ui.BadgeUpdate(p.SeekerID, counts)
			if page == "notifications" {
				d.ui.ViewInvalidate(p.SeekerID, "notifications")
			}
		}
		if _, ok := d.Session(p.ProviderID); ok {
			d.ui.Alert(p.ProviderID, "success", fmt.Sprintf("✅ Payment request of PKR %.0f sent instantly!", p.Amount))
		}

	case ev.Kind == EventUpdate && p.Status == models.PaymentStatusCompleted:
		if s, ok := d.Session(p.ProviderID); ok {
			d.ui.Alert(p.ProviderID, "success", fmt.Sprintf("💰 Payment of PKR %.0f completed by customer!", p.Amount))
			if page := s.Page(); page == "provider-dashboard" || page == "provider-payment-requests" {
				d.ui.ViewInvalidate(p.ProviderID, page)
			}
		}
		if s, ok := d.Session(p.SeekerID); ok {
			d.ui.Alert(p.SeekerID, "success", "✅ Payment confirmed! Thank you for your payment.")
			if page := s.Page(); page == "seeker-dashboard" || page == "notifications" {
				d.ui.ViewInvalidate(p.SeekerID, page)
			}
			d.ui.RatingPrompt(p.SeekerID, p.BookingID, p.ProviderID, models.RoleProvider)
		}
	}
}

func (d *Dispatcher) handleRequestEvent(ev Event) {
	switch {
	case ev.Request != nil && ev.Kind == EventInsert:
		d.routeRequestInsert(ev.Request)
	case ev.Offer != nil && ev.Kind == EventInsert:
		d.routeOfferInsert(ev.Offer)
	}
}

func (d *Dispatcher) routeRequestInsert(r *models.ServiceRequest) {
	d.mu.RLock()
	sessions := make([]*Session, 0, len(d.sessions))
	for _, s := range d.sessions {
		sessions = append(sessions, s)
	}
	d.mu.RUnlock()

	for _, s := range sessions {
		switch {
		case s.user.ID == r.SeekerID:
			d.ui.Alert(s.user.ID, "success", "✅ Your request has been posted!")
			if s.Page() == "seeker-marketplace" {
				d.ui.ViewInvalidate(s.user.ID, "seeker-marketplace")
			}

		case s.user.IsProvider() && s.user.HasLocation() && r.Lat != nil && r.Lng != nil:
			distance := utils.HaversineDistance(*s.user.Lat, *s.user.Lng, *r.Lat, *r.Lng)
			if distance > d.radiusKm {
				continue
			}

			s.mu.Lock()
			s.unreadRequests[r.ID] = struct{}{}
			s.unreadNotifications[r.ID] = struct{}{}
			counts := s.countsLocked()
			page := s.currentPage
			s.mu.Unlock()

			d.ui.Alert(s.user.ID, "info", fmt.Sprintf("📍 New service request in your area for %s", r.Category))
			d.ui.BadgeUpdate(s.user.ID, counts)
			if page == "provider-dashboard" {
				d.ui.ViewInvalidate(s.user.ID, "provider-dashboard")
			}
		}
	}
}

func (d *Dispatcher) routeOfferInsert(o *models.Offer) {
	if s, ok := d.Session(o.SeekerID); ok {
		s.mu.Lock()
		s.unreadNotifications[o.ID] = struct{}{}
		counts := s.countsLocked()
		page := s.currentPage
		s.mu.Unlock()

		d.ui.Alert(o.SeekerID, "info", "💰 New offer received for your request")
		d.ui.BadgeUpdate(o.SeekerID, counts)
		if page == "seeker-marketplace" {
			d.ui.ViewInvalidate(o.SeekerID, "seeker-marketplace")
		}
	}
	if _, ok := d.Session(o.ProviderID); ok {
		d.ui.Alert(o.ProviderID, "success", "✅ Your offer has been sent!")
	}
}

func (d *Dispatcher) handleBookingEvent(ev Event) {
	b := ev.Booking
	if b == nil {
		return
	}

	switch {
	case ev.Kind == EventInsert:
		if s, ok := d.Session(b.ProviderID); ok {
			d.ui.Alert(b.ProviderID, "info", "📅 New booking confirmed")
			if s.Page() == "provider-dashboard" {
				d.ui.ViewInvalidate(b.ProviderID, "provider-dashboard")
			}
		}

	case ev.Kind == EventUpdate && b.Status == models.BookingStatusCancelled:
		reason := "No reason provided"
		if b.CancellationReason != nil && *b.CancellationReason != "" {
			reason = *b.CancellationReason
		}
		if s, ok := d.Session(b.SeekerID); ok {
			d.ui.Alert(b.SeekerID, "info", fmt.Sprintf("📝 Order cancelled: %s", reason))
			if s.Page() == "seeker-dashboard" {
				d.ui.ViewInvalidate(b.SeekerID, "seeker-dashboard")
			}
		}
		if s, ok := d.Session(b.ProviderID); ok {
			d.ui.Alert(b.ProviderID, "info", fmt.Sprintf("📝 Order cancelled: %s", reason))
			if s.Page() == "provider-dashboard" {
				d.ui.ViewInvalidate(b.ProviderID, "provider-dashboard")
			}
		}

	case ev.Kind == EventUpdate && b.Status == models.BookingStatusCompleted:
		if _, ok := d.Session(b.SeekerID); ok {
			d.ui.RatingPrompt(b.SeekerID, b.ID, b.ProviderID, models.RoleProvider)
		}
		if _, ok := d.Session(b.ProviderID); ok {
			d.ui.RatingPrompt(b.ProviderID, b.ID, b.SeekerID, models.RoleSeeker)
		}
	}
}

func (d *Dispatcher) handleChatEvent(ev Event) {
	m := ev.ChatMessage
	if m == nil || ev.Kind != EventInsert {
		return
	}

	recipient := m.SeekerID
	if m.SenderID == m.SeekerID {
		recipient = m.ProviderID
	}

	s, ok := d.Session(recipient)
	if !ok {
		return
	}

	// Messages for the open conversation land in the live view directly and
	// never count as unread.
	if s.ActiveConversation() == m.ConversationID {
		d.ui.MessageAppend(recipient, m.ConversationID, m)
		return
	}

	s.mu.Lock()
	s.unreadChats[m.ConversationID] = struct{}{}
	counts := s.countsLocked()
	s.mu.Unlock()

	d.ui.Alert(recipient, "info", fmt.Sprintf("💬 New message from %s", actorOr(m.SenderName, "User")))
	d.ui.BadgeUpdate(recipient, counts)
}

func actorOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
