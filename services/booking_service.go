package services

import (
	"fmt"

	"gorm.io/gorm"

	"servicelink-server/models"
	ws "servicelink-server/websocket"
)

// BookingService drives bookings from creation through completion or
// cancellation. Completion itself is payment-driven (see PaymentService).
type BookingService struct {
	db     *gorm.DB
	events ws.Publisher
}

// NewBookingService creates a booking service publishing to the given event sink
func NewBookingService(db *gorm.DB, events ws.Publisher) *BookingService {
	return &BookingService{db: db, events: events}
}

// CreateFromService books a listed service directly. The booking starts in
// REQUESTED and the price is frozen from the service at creation time.
func (s *BookingService) CreateFromService(seeker *models.User, in models.BookingCreate) (*models.Booking, error) {
	if !seeker.IsSeeker() {
		return nil, Validationf("Only seekers can book services")
	}

	var service models.Service
	if err := s.db.First(&service, in.ServiceID).Error; err != nil {
		return nil, NotFoundf("Service not found")
	}
	if service.ProviderID == seeker.ID {
		return nil, Validationf("You cannot book your own service")
	}
	if !service.IsActive {
		return nil, Conflictf("Service is not available")
	}

	serviceID := service.ID
	booking := models.Booking{
		ServiceID:     &serviceID,
		SeekerID:      seeker.ID,
		ProviderID:    service.ProviderID,
		Price:         service.Price,
		ScheduledTime: in.ScheduledTime,
		Note:          in.Note,
		Status:        models.BookingStatusRequested,
	}

	if err := s.db.Create(&booking).Error; err != nil {
		return nil, classifyDB(err, "")
	}

	s.events.Publish(ws.Event{
		Stream:    ws.StreamBookings,
		Kind:      ws.EventInsert,
		ActorName: seeker.Name,
		Booking:   &booking,
	})

	return &booking, nil
}

// ListForUser returns bookings where the user is either party, newest first
func (s *BookingService) ListForUser(user *models.User) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.
		Preload("Service").
		Where("seeker_id = ? OR provider_id = ?", user.ID, user.ID).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, classifyDB(err, "")
	}
	return bookings, nil
}

// Get loads a booking the user is a party to
func (s *BookingService) Get(user *models.User, bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.Preload("Service").First(&booking, bookingID).Error; err != nil {
		return nil, NotFoundf("Booking not found")
	}
	if !booking.IsParty(user.ID) {
		return nil, Authorizationf("Not authorized")
	}
	return &booking, nil
}

// UpdateStatus moves a REQUESTED booking to APPROVED or REJECTED. Only the
// provider decides. COMPLETED is never set directly; it follows payment
// completion.
func (s *BookingService) UpdateStatus(actor *models.User, bookingID uint, newStatus models.BookingStatus) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.First(&booking, bookingID).Error; err != nil {
		return nil, NotFoundf("Booking not found")
	}
	if booking.ProviderID != actor.ID {
		return nil, Authorizationf("Only the provider can respond to a booking request")
	}

	switch newStatus {
	case models.BookingStatusApproved, models.BookingStatusRejected:
		if booking.Status != models.BookingStatusRequested {
			return nil, Conflictf("Booking is not awaiting a response")
		}
	case models.BookingStatusCompleted:
		return nil, Validationf("Completion is driven by payment confirmation")
	default:
		return nil, Validationf("Invalid status transition")
	}

	if err := s.db.Model(&booking).Update("status", newStatus).Error; err != nil {
		return nil, classifyDB(err, "")
	}
	booking.Status = newStatus

	s.events.Publish(ws.Event{
		Stream:    ws.StreamBookings,
		Kind:      ws.EventUpdate,
		ActorName: actor.Name,
		Booking:   &booking,
	})

	return &booking, nil
}

// Cancel moves a non-terminal booking to CANCELLED with a composed reason.
// A pending payment request for the booking is removed in the same
// transaction, so no orphaned payment request survives the cancellation.
// The counterparty gets a notification.
func (s *BookingService) Cancel(actor *models.User, bookingID uint, reason, details string) (*models.Booking, error) {
	if reason == "" {
		return nil, Validationf("Cancellation reason is required")
	}

	var booking models.Booking
	if err := s.db.First(&booking, bookingID).Error; err != nil {
		return nil, NotFoundf("Booking not found")
	}
	if !booking.IsParty(actor.ID) {
		return nil, Authorizationf("Not authorized")
	}
	if booking.IsTerminal() {
		return nil, Conflictf("Booking can no longer be cancelled")
	}

	cancellationText := reason
	if details != "" {
		cancellationText = fmt.Sprintf("%s: %s", reason, details)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&booking).Updates(map[string]interface{}{
			"status":              models.BookingStatusCancelled,
			"cancellation_reason": cancellationText,
		}).Error; err != nil {
			return err
		}

		if err := tx.
			Where("booking_id = ? AND status = ?", bookingID, models.PaymentStatusPending).
			Delete(&models.Payment{}).Error; err != nil {
			return err
		}

		notification := models.Notification{
			UserID:  booking.CounterpartyID(actor.ID),
			Title:   "📝 Order Cancelled",
			Message: fmt.Sprintf("%s cancelled the order: %s", actor.Name, cancellationText),
			Type:    models.NotificationOrderCancelled,
			Data: models.NotificationPayload{
				BookingID: bookingID,
				Reason:    cancellationText,
				ActorName: actor.Name,
			}.Encode(),
		}
		return tx.Create(&notification).Error
	})
	if err != nil {
		return nil, classifyDB(err, "")
	}

	booking.Status = models.BookingStatusCancelled
	booking.CancellationReason = &cancellationText

	s.events.Publish(ws.Event{
		Stream:    ws.StreamBookings,
		Kind:      ws.EventUpdate,
		ActorName: actor.Name,
		Booking:   &booking,
	})

	return &booking, nil
}
