package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"servicelink-server/models"
	"servicelink-server/utils"
	ws "servicelink-server/websocket"
)

// requestTTL is the advisory lifetime of a posted request
const requestTTL = 24 * time.Hour

// RequestService resolves posted service requests and the competing offers
// against them.
type RequestService struct {
	db       *gorm.DB
	events   ws.Publisher
	radiusKm float64
}

// NewRequestService creates a request/offer service publishing to the given
// event sink
func NewRequestService(db *gorm.DB, events ws.Publisher, radiusKm float64) *RequestService {
	return &RequestService{db: db, events: events, radiusKm: radiusKm}
}

// PostRequest creates an OPEN request with a 24h advisory expiry
func (s *RequestService) PostRequest(seeker *models.User, in models.ServiceRequestCreate) (*models.ServiceRequest, error) {
	if !seeker.IsSeeker() {
		return nil, Validationf("Only seekers can post requests")
	}
	if !utils.IsLocationValid(in.Lat, in.Lng) {
		return nil, Validationf("Invalid location coordinates")
	}

	address := in.Address
	if address == "" {
		address = "Location set"
	}

	now := time.Now()
	request := models.ServiceRequest{
		SeekerID:    seeker.ID,
		SeekerName:  seeker.Name,
		Category:    in.Category,
		Description: in.Description,
		Price:       in.Price,
		Lat:         &in.Lat,
		Lng:         &in.Lng,
		Address:     address,
		Status:      models.RequestStatusOpen,
		ExpiresAt:   now.Add(requestTTL),
	}

	if err := s.db.Create(&request).Error; err != nil {
		return nil, classifyDB(err, "Request already exists")
	}

	s.events.Publish(ws.Event{
		Stream:    ws.StreamRequests,
		Kind:      ws.EventInsert,
		ActorName: seeker.Name,
		Request:   &request,
	})

	return &request, nil
}

// NearbyRequests returns the open, unexpired requests within the fixed
// visibility radius of the provider's stored location, newest first. The
// cell cover is a coarse prefilter; the haversine check decides membership.
// A provider without a stored location sees nothing.
func (s *RequestService) NearbyRequests(provider *models.User) ([]models.ServiceRequest, error) {
	if !provider.IsProvider() {
		return nil, Validationf("Only providers can browse nearby requests")
	}
	lat, lng, ok := provider.Coordinates()
	if !ok {
		return []models.ServiceRequest{}, nil
	}

	var open []models.ServiceRequest
	err := s.db.
		Where("status = ? AND expires_at > ?", models.RequestStatusOpen, time.Now()).
		Order("created_at DESC").
		Find(&open).Error
	if err != nil {
		return nil, classifyDB(err, "")
	}

	cover := utils.CoverCells(lat, lng, s.radiusKm)

	nearby := make([]models.ServiceRequest, 0, len(open))
	for _, req := range open {
		reqLat, reqLng, ok := req.Coordinates()
		if !ok {
			continue
		}
		if !cover.Contains(reqLat, reqLng) {
			continue
		}
		if utils.HaversineDistance(lat, lng, reqLat, reqLng) <= s.radiusKm {
			nearby = append(nearby, req)
		}
	}

	return nearby, nil
}

// MyRequests lists the seeker's own requests, newest first
func (s *RequestService) MyRequests(seeker *models.User) ([]models.ServiceRequest, error) {
	var requests []models.ServiceRequest
	err := s.db.
		Where("seeker_id = ?", seeker.ID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, classifyDB(err, "")
	}
	return requests, nil
}

// OffersForRequest lists offers on a request, cheapest first
func (s *RequestService) OffersForRequest(requestID uint) ([]models.Offer, error) {
	var offers []models.Offer
	err := s.db.
		Where("request_id = ?", requestID).
		Order("price ASC").
		Find(&offers).Error
	if err != nil {
		return nil, classifyDB(err, "")
	}
	return offers, nil
}

// MakeOffer creates a PENDING offer against an open request. A provider may
// offer at most once per request; the unique index backs up the pre-check
// when two sessions race.
func (s *RequestService) MakeOffer(provider *models.User, in models.OfferCreate) (*models.Offer, error) {
	if !provider.IsProvider() {
		return nil, Validationf("Only providers can make offers")
	}

	var request models.ServiceRequest
	if err := s.db.First(&request, in.RequestID).Error; err != nil {
		return nil, NotFoundf("Request not found")
	}
	if request.Status != models.RequestStatusOpen {
		return nil, Conflictf("Request is no longer open")
	}

	var count int64
	if err := s.db.Model(&models.Offer{}).
		Where("request_id = ? AND provider_id = ?", in.RequestID, provider.ID).
		Count(&count).Error; err != nil {
		return nil, classifyDB(err, "")
	}
	if count > 0 {
		return nil, Conflictf("You have already made an offer for this request")
	}

	offer := models.Offer{
		RequestID:    in.RequestID,
		ProviderID:   provider.ID,
		ProviderName: provider.Name,
		SeekerID:     request.SeekerID,
		Price:        in.Price,
		Message:      in.Message,
		Status:       models.OfferStatusPending,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&offer).Error; err != nil {
			return err
		}

		notification := models.Notification{
			UserID:  request.SeekerID,
			Title:   "💰 New Offer Received",
			Message: fmt.Sprintf("%s offered PKR %.0f for your request", provider.Name, in.Price),
			Type:    models.NotificationNewOffer,
			Data: models.NotificationPayload{
				RequestID:  in.RequestID,
				OfferID:    offer.ID,
				ProviderID: provider.ID,
				Price:      in.Price,
				ActorName:  provider.Name,
			}.Encode(),
		}
		return tx.Create(&notification).Error
	})
	if err != nil {
		return nil, classifyDB(err, "You have already made an offer for this request")
	}

	s.events.Publish(ws.Event{
		Stream:    ws.StreamRequests,
		Kind:      ws.EventInsert,
		ActorName: provider.Name,
		Offer:     &offer,
	})

	return &offer, nil
}

// AcceptOffer resolves a request to exactly one accepted offer in a single
// transaction: booking created at the offer price, offer ACCEPTED, request
// CLOSED, every other offer REJECTED, winner notified. The OPEN-status guard
// makes a concurrent second accept fail with a conflict instead of creating
// a second booking.
func (s *RequestService) AcceptOffer(seeker *models.User, offerID, requestID uint) (*models.Booking, error) {
	var booking models.Booking

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var offer models.Offer
		if err := tx.Where("id = ? AND request_id = ?", offerID, requestID).First(&offer).Error; err != nil {
			return NotFoundf("Offer not found")
		}

		var request models.ServiceRequest
		if err := tx.First(&request, requestID).Error; err != nil {
			return NotFoundf("Request not found")
		}
		if request.SeekerID != seeker.ID {
			return Authorizationf("Only the request owner can accept offers")
		}
		if offer.Status != models.OfferStatusPending {
			return Conflictf("Offer has already been resolved")
		}

		res := tx.Model(&models.ServiceRequest{}).
			Where("id = ? AND status = ?", requestID, models.RequestStatusOpen).
			Update("status", models.RequestStatusClosed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return Conflictf("Request is no longer open")
		}

		booking = models.Booking{
			ServiceID:     nil,
			SeekerID:      seeker.ID,
			ProviderID:    offer.ProviderID,
			Price:         offer.Price,
			ScheduledTime: time.Now(),
			Note:          fmt.Sprintf("Request: %d", requestID),
			Status:        models.BookingStatusApproved,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Offer{}).
			Where("id = ?", offerID).
			Update("status", models.OfferStatusAccepted).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Offer{}).
			Where("request_id = ? AND id <> ? AND status = ?", requestID, offerID, models.OfferStatusPending).
			Update("status", models.OfferStatusRejected).Error; err != nil {
			return err
		}

		notification := models.Notification{
			UserID:  offer.ProviderID,
			Title:   "✅ Offer Accepted",
			Message: fmt.Sprintf("%s accepted your offer of PKR %.0f", seeker.Name, offer.Price),
			Type:    models.NotificationOfferAccepted,
			Data: models.NotificationPayload{
				RequestID: requestID,
				OfferID:   offerID,
				BookingID: booking.ID,
				Price:     offer.Price,
				ActorName: seeker.Name,
			}.Encode(),
		}
		return tx.Create(&notification).Error
	})
	if err != nil {
		if _, ok := err.(*Error); ok {
			return nil, err
		}
		return nil, classifyDB(err, "Request is no longer open")
	}

	s.events.Publish(ws.Event{
		Stream:    ws.StreamBookings,
		Kind:      ws.EventInsert,
		ActorName: seeker.Name,
		Booking:   &booking,
	})

	return &booking, nil
}

// CloseExpired closes OPEN requests whose advisory expiry has passed.
// Returns the number of requests closed.
func (s *RequestService) CloseExpired() (int64, error) {
	res := s.db.Model(&models.ServiceRequest{}).
		Where("status = ? AND expires_at <= ?", models.RequestStatusOpen, time.Now()).
		Update("status", models.RequestStatusClosed)
	if res.Error != nil {
		return 0, classifyDB(res.Error, "")
	}
	return res.RowsAffected, nil
}
