package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"servicelink-server/models"
	ws "servicelink-server/websocket"
)

// PaymentService handles the provider-initiated payment flow. Confirming a
// payment is what completes the underlying booking.
type PaymentService struct {
	db     *gorm.DB
	events ws.Publisher
}

// NewPaymentService creates a payment service publishing to the given event sink
func NewPaymentService(db *gorm.DB, events ws.Publisher) *PaymentService {
	return &PaymentService{db: db, events: events}
}

// CreateRequest creates a PENDING payment request for an approved booking.
// Only the booking's provider can request payment, and only one pending
// request may exist per booking at a time.
func (s *PaymentService) CreateRequest(provider *models.User, in models.PaymentCreate) (*models.Payment, error) {
	var booking models.Booking
	if err := s.db.First(&booking, in.BookingID).Error; err != nil {
		return nil, NotFoundf("Booking not found")
	}
	if booking.ProviderID != provider.ID {
		return nil, Authorizationf("Only the provider can request payment")
	}
	if booking.Status != models.BookingStatusApproved {
		return nil, Conflictf("Payment can only be requested for an approved booking")
	}

	var pending int64
	if err := s.db.Model(&models.Payment{}).
		Where("booking_id = ? AND status = ?", booking.ID, models.PaymentStatusPending).
		Count(&pending).Error; err != nil {
		return nil, classifyDB(err, "")
	}
	if pending > 0 {
		return nil, Conflictf("A payment request already exists for this booking")
	}

	method := in.Method
	if method == "" && provider.PaymentMethod != nil {
		method = *provider.PaymentMethod
	}

	payment := models.Payment{
		BookingID:  booking.ID,
		ProviderID: booking.ProviderID,
		SeekerID:   booking.SeekerID,
		ServiceID:  booking.ServiceID,
		Amount:     in.Amount,
		Method:     method,
		Status:     models.PaymentStatusPending,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		notification := models.Notification{
			UserID:  booking.SeekerID,
			Title:   "💰 Payment Request",
			Message: fmt.Sprintf("%s requested a payment of PKR %.0f", provider.Name, payment.Amount),
			Type:    models.NotificationPaymentRequest,
			Data: models.NotificationPayload{
				PaymentID:  payment.ID,
				BookingID:  booking.ID,
				ProviderID: booking.ProviderID,
				Amount:     payment.Amount,
				ActorName:  provider.Name,
			}.Encode(),
		}
		return tx.Create(&notification).Error
	})
	if err != nil {
		return nil, classifyDB(err, "")
	}

	s.events.Publish(ws.Event{
		Stream:    ws.StreamPayments,
		Kind:      ws.EventInsert,
		ActorName: provider.Name,
		Payment:   &payment,
	})

	return &payment, nil
}

// Process confirms a pending payment. In one transaction the payment moves
// to COMPLETED, the booking moves to COMPLETED, and both parties get a
// pending rating entry so the rating prompt survives a disconnect.
func (s *PaymentService) Process(seeker *models.User, paymentID uint, in models.PaymentProcess) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.First(&payment, paymentID).Error; err != nil {
		return nil, NotFoundf("Payment not found")
	}
	if payment.SeekerID != seeker.ID {
		return nil, Authorizationf("Only the payer can confirm this payment")
	}
	if payment.Status != models.PaymentStatusPending {
		return nil, Conflictf("Payment already processed")
	}

	transactionID := in.TransactionID
	if transactionID == "" {
		transactionID = uuid.NewString()
	}

	var booking models.Booking
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&payment).Updates(map[string]interface{}{
			"status":         models.PaymentStatusCompleted,
			"transaction_id": transactionID,
		}).Error; err != nil {
			return err
		}

		if err := tx.First(&booking, payment.BookingID).Error; err != nil {
			return err
		}
		if err := tx.Model(&booking).Update("status", models.BookingStatusCompleted).Error; err != nil {
			return err
		}
		booking.Status = models.BookingStatusCompleted

		pendingRatings := []models.PendingRating{
			{BookingID: booking.ID, RaterID: booking.SeekerID, TargetID: booking.ProviderID, TargetRole: models.RoleProvider},
			{BookingID: booking.ID, RaterID: booking.ProviderID, TargetID: booking.SeekerID, TargetRole: models.RoleSeeker},
		}
		for i := range pendingRatings {
			if err := tx.Create(&pendingRatings[i]).Error; err != nil {
				return err
			}
		}

		notification := models.Notification{
			UserID:  payment.ProviderID,
			Title:   "✅ Payment Completed",
			Message: fmt.Sprintf("%s paid PKR %.0f", seeker.Name, payment.Amount),
			Type:    models.NotificationPaymentCompleted,
			Data: models.NotificationPayload{
				PaymentID: payment.ID,
				BookingID: booking.ID,
				SeekerID:  payment.SeekerID,
				Amount:    payment.Amount,
				ActorName: seeker.Name,
			}.Encode(),
		}
		return tx.Create(&notification).Error
	})
	if err != nil {
		return nil, classifyDB(err, "")
	}

	payment.Status = models.PaymentStatusCompleted
	payment.TransactionID = &transactionID

	s.events.Publish(ws.Event{
		Stream:    ws.StreamPayments,
		Kind:      ws.EventUpdate,
		ActorName: seeker.Name,
		Payment:   &payment,
	})
	s.events.Publish(ws.Event{
		Stream:    ws.StreamBookings,
		Kind:      ws.EventUpdate,
		ActorName: seeker.Name,
		Booking:   &booking,
	})

	return &payment, nil
}

// Cancel withdraws a pending payment request. The row is removed entirely
// rather than kept in a cancelled state.
func (s *PaymentService) Cancel(provider *models.User, paymentID uint) error {
	var payment models.Payment
	if err := s.db.First(&payment, paymentID).Error; err != nil {
		return NotFoundf("Payment not found")
	}
	if payment.ProviderID != provider.ID {
		return Authorizationf("Only the requesting provider can cancel this payment")
	}
	if payment.Status != models.PaymentStatusPending {
		return Conflictf("Only a pending payment can be cancelled")
	}

	if err := s.db.Delete(&payment).Error; err != nil {
		return classifyDB(err, "")
	}
	return nil
}

// ListForUser returns payments where the user is either party, newest first
func (s *PaymentService) ListForUser(user *models.User) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.db.
		Where("seeker_id = ? OR provider_id = ?", user.ID, user.ID).
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, classifyDB(err, "")
	}
	return payments, nil
}

// ProviderRevenue sums a provider's completed payments
func (s *PaymentService) ProviderRevenue(providerID uint) (float64, error) {
	var total float64
	err := s.db.Model(&models.Payment{}).
		Where("provider_id = ? AND status = ?", providerID, models.PaymentStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, classifyDB(err, "")
	}
	return total, nil
}
