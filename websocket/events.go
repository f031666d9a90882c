package websocket

import (
	"servicelink-server/models"
)

// Stream identifies one of the four independent change streams feeding the
// dispatcher. Events within a stream are delivered in publish order; no
// ordering holds across streams.
type Stream string

const (
	StreamPayments Stream = "payments"
	StreamRequests Stream = "requests"
	StreamBookings Stream = "bookings"
	StreamChats    Stream = "chats"
)

// EventKind mirrors the row-change kind of the underlying store
type EventKind string

const (
	EventInsert EventKind = "INSERT"
	EventUpdate EventKind = "UPDATE"
)

// Event is a typed change notification. Exactly one payload field is set,
// matching the stream. ActorName carries the display name of the user whose
// action produced the event, for alert texts.
type Event struct {
	Stream    Stream
	Kind      EventKind
	ActorName string

	Payment     *models.Payment
	Request     *models.ServiceRequest
	Offer       *models.Offer
	Booking     *models.Booking
	ChatMessage *models.ChatMessage
}

// Publisher is the narrow interface services use to emit change events after
// a successful commit.
type Publisher interface {
	Publish(Event)
}

// NopPublisher discards events; used where no live sessions exist
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}
