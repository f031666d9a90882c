package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"servicelink-server/models"
	"servicelink-server/utils"
	ws "servicelink-server/websocket"
)

func newRequestService(t *testing.T) (*RequestService, *recordingPublisher) {
	t.Helper()
	events := &recordingPublisher{}
	return NewRequestService(newTestDB(t), events, utils.DefaultRequestRadiusKm), events
}

func TestPostRequestCreatesOpenRequest(t *testing.T) {
	svc, events := newRequestService(t)
	seeker := createSeeker(t, svc.db, "Ayesha", "ayesha@example.com")

	request, err := svc.PostRequest(seeker, models.ServiceRequestCreate{
		Category:    "Plumbing",
		Description: "Leaking kitchen tap",
		Price:       1500,
		Lat:         24.8607,
		Lng:         67.0011,
	})
	require.NoError(t, err)
	require.Equal(t, models.RequestStatusOpen, request.Status)
	require.Equal(t, seeker.Name, request.SeekerName)
	require.Equal(t, "Location set", request.Address)
	require.WithinDuration(t, time.Now().Add(24*time.Hour), request.ExpiresAt, time.Minute)

	published := events.byStream(ws.StreamRequests)
	require.Len(t, published, 1)
	require.Equal(t, ws.EventInsert, published[0].Kind)
	require.Equal(t, request.ID, published[0].Request.ID)
}

func TestPostRequestRejectsProviders(t *testing.T) {
	svc, _ := newRequestService(t)
	provider := createProvider(t, svc.db, "Bilal", "bilal@example.com", 24.86, 67.0)

	_, err := svc.PostRequest(provider, models.ServiceRequestCreate{
		Category: "Plumbing",
		Price:    1000,
		Lat:      24.86,
		Lng:      67.0,
	})
	require.Error(t, err)
	require.Equal(t, KindValidation, KindOf(err))
}

func TestPostRequestRejectsInvalidCoordinates(t *testing.T) {
	svc, _ := newRequestService(t)
	seeker := createSeeker(t, svc.db, "Ayesha", "ayesha@example.com")

	_, err := svc.PostRequest(seeker, models.ServiceRequestCreate{
		Category: "Plumbing",
		Price:    1000,
		Lat:      123.0,
		Lng:      67.0,
	})
	require.Error(t, err)
	require.Equal(t, KindValidation, KindOf(err))
}

func TestNearbyRequestsFiltersByRadius(t *testing.T) {
	svc, _ := newRequestService(t)
	seeker := createSeeker(t, svc.db, "Ayesha", "ayesha@example.com")
	provider := createProvider(t, svc.db, "Bilal", "bilal@example.com", 24.8607, 67.0011)

	// Roughly 2 km north of the provider
	near, err := svc.PostRequest(seeker, models.ServiceRequestCreate{
		Category: "Plumbing", Price: 1000, Lat: 24.8787, Lng: 67.0011,
	})
	require.NoError(t, err)

	// Several hundred kilometers away
	_, err = svc.PostRequest(seeker, models.ServiceRequestCreate{
		Category: "Plumbing", Price: 1000, Lat: 31.5204, Lng: 74.3587,
	})
	require.NoError(t, err)

	visible, err := svc.NearbyRequests(provider)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	require.Equal(t, near.ID, visible[0].ID)
}

func TestNearbyRequestsWithoutLocationSeesNothing(t *testing.T) {
	svc, _ := newRequestService(t)
	seeker := createSeeker(t, svc.db, "Ayesha", "ayesha@example.com")
	_, err := svc.PostRequest(seeker, models.ServiceRequestCreate{
		Category: "Plumbing", Price: 1000, Lat: 24.8607, Lng: 67.0011,
	})
	require.NoError(t, err)

	provider := &models.User{
		Name: "Bilal", Email: "bilal@example.com", PasswordHash: "x",
		Role: models.RoleProvider, IsActive: true,
	}
	require.NoError(t, svc.db.Create(provider).Error)

	visible, err := svc.NearbyRequests(provider)
	require.NoError(t, err)
	require.Empty(t, visible)
}

func TestNearbyRequestsRejectsSeekers(t *testing.T) {
	svc, _ := newRequestService(t)
	seeker := createSeeker(t, svc.db, "Ayesha", "ayesha@example.com")

	_, err := svc.NearbyRequests(seeker)
	require.Error(t, err)
	require.Equal(t, KindValidation, KindOf(err))
}

func TestMakeOfferOncePerProvider(t *testing.T) {
	svc, _ := newRequestService(t)
	seeker := createSeeker(t, svc.db, "Ayesha", "ayesha@example.com")
	provider := createProvider(t, svc.db, "Bilal", "bilal@example.com", 24.86, 67.0)

	request, err := svc.PostRequest(seeker, models.ServiceRequestCreate{
		Category: "Plumbing", Price: 1500, Lat: 24.8607, Lng: 67.0011,
	})
	require.NoError(t, err)

	offer, err := svc.MakeOffer(provider, models.OfferCreate{
		RequestID: request.ID, Price: 1200, Message: "Can come today",
	})
	require.NoError(t, err)
	require.Equal(t, models.OfferStatusPending, offer.Status)
	require.Equal(t, seeker.ID, offer.SeekerID)
	require.EqualValues(t, 1, countNotifications(t, svc.db, seeker.ID, models.NotificationNewOffer))

	_, err = svc.MakeOffer(provider, models.OfferCreate{RequestID: request.ID, Price: 1100})
	require.Error(t, err)
	require.Equal(t, KindConflict, KindOf(err))
}

func TestMakeOfferRequiresOpenRequest(t *testing.T) {
	svc, _ := newRequestService(t)
	seeker := createSeeker(t, svc.db, "Ayesha", "ayesha@example.com")
	provider := createProvider(t, svc.db, "Bilal", "bilal@example.com", 24.86, 67.0)

	request, err := svc.PostRequest(seeker, models.ServiceRequestCreate{
		Category: "Plumbing", Price: 1500, Lat: 24.8607, Lng: 67.0011,
	})
	require.NoError(t, err)
	require.NoError(t, svc.db.Model(request).Update("status", models.RequestStatusClosed).Error)

	_, err = svc.MakeOffer(provider, models.OfferCreate{RequestID: request.ID, Price: 1200})
	require.Error(t, err)
	require.Equal(t, KindConflict, KindOf(err))
}

func TestAcceptOfferResolvesRequest(t *testing.T) {
	svc, events := newRequestService(t)
	seeker := createSeeker(t, svc.db, "Ayesha", "ayesha@example.com")
	winner := createProvider(t, svc.db, "Bilal", "bilal@example.com", 24.86, 67.0)
	loser := createProvider(t, svc.db, "Chaudhry", "chaudhry@example.com", 24.87, 67.01)

	request, err := svc.PostRequest(seeker, models.ServiceRequestCreate{
		Category: "Plumbing", Price: 1500, Lat: 24.8607, Lng: 67.0011,
	})
	require.NoError(t, err)

	winning, err := svc.MakeOffer(winner, models.OfferCreate{RequestID: request.ID, Price: 1200})
	require.NoError(t, err)
	losing, err := svc.MakeOffer(loser, models.OfferCreate{RequestID: request.ID, Price: 1300})
	require.NoError(t, err)

	booking, err := svc.AcceptOffer(seeker, winning.ID, request.ID)
	require.NoError(t, err)
	require.Equal(t, models.BookingStatusApproved, booking.Status)
	require.Equal(t, winning.Price, booking.Price)
	require.Equal(t, winner.ID, booking.ProviderID)
	require.Nil(t, booking.ServiceID)

	var reloaded models.ServiceRequest
	require.NoError(t, svc.db.First(&reloaded, request.ID).Error)
	require.Equal(t, models.RequestStatusClosed, reloaded.Status)

	var acceptedOffer, rejectedOffer models.Offer
	require.NoError(t, svc.db.First(&acceptedOffer, winning.ID).Error)
	require.NoError(t, svc.db.First(&rejectedOffer, losing.ID).Error)
	require.Equal(t, models.OfferStatusAccepted, acceptedOffer.Status)
	require.Equal(t, models.OfferStatusRejected, rejectedOffer.Status)

	require.EqualValues(t, 1, countNotifications(t, svc.db, winner.ID, models.NotificationOfferAccepted))

	bookingEvents := events.byStream(ws.StreamBookings)
	require.Len(t, bookingEvents, 1)
	require.Equal(t, booking.ID, bookingEvents[0].Booking.ID)
}

func TestAcceptOfferSecondAcceptConflicts(t *testing.T) {
	svc, _ := newRequestService(t)
	seeker := createSeeker(t, svc.db, "Ayesha", "ayesha@example.com")
	first := createProvider(t, svc.db, "Bilal", "bilal@example.com", 24.86, 67.0)
	second := createProvider(t, svc.db, "Chaudhry", "chaudhry@example.com", 24.87, 67.01)

	request, err := svc.PostRequest(seeker, models.ServiceRequestCreate{
		Category: "Plumbing", Price: 1500, Lat: 24.8607, Lng: 67.0011,
	})
	require.NoError(t, err)

	offer1, err := svc.MakeOffer(first, models.OfferCreate{RequestID: request.ID, Price: 1200})
	require.NoError(t, err)
	offer2, err := svc.MakeOffer(second, models.OfferCreate{RequestID: request.ID, Price: 1300})
	require.NoError(t, err)

	_, err = svc.AcceptOffer(seeker, offer1.ID, request.ID)
	require.NoError(t, err)

	_, err = svc.AcceptOffer(seeker, offer2.ID, request.ID)
	require.Error(t, err)
	require.Equal(t, KindConflict, KindOf(err))

	// Still exactly one booking
	var bookings int64
	require.NoError(t, svc.db.Model(&models.Booking{}).Count(&bookings).Error)
	require.EqualValues(t, 1, bookings)
}

func TestAcceptOfferOnlyOwner(t *testing.T) {
	svc, _ := newRequestService(t)
	seeker := createSeeker(t, svc.db, "Ayesha", "ayesha@example.com")
	other := createSeeker(t, svc.db, "Dania", "dania@example.com")
	provider := createProvider(t, svc.db, "Bilal", "bilal@example.com", 24.86, 67.0)

	request, err := svc.PostRequest(seeker, models.ServiceRequestCreate{
		Category: "Plumbing", Price: 1500, Lat: 24.8607, Lng: 67.0011,
	})
	require.NoError(t, err)
	offer, err := svc.MakeOffer(provider, models.OfferCreate{RequestID: request.ID, Price: 1200})
	require.NoError(t, err)

	_, err = svc.AcceptOffer(other, offer.ID, request.ID)
	require.Error(t, err)
	require.Equal(t, KindAuthorization, KindOf(err))
}

func TestCloseExpired(t *testing.T) {
	svc, _ := newRequestService(t)
	seeker := createSeeker(t, svc.db, "Ayesha", "ayesha@example.com")

	request, err := svc.PostRequest(seeker, models.ServiceRequestCreate{
		Category: "Plumbing", Price: 1500, Lat: 24.8607, Lng: 67.0011,
	})
	require.NoError(t, err)
	require.NoError(t, svc.db.Model(request).
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	closed, err := svc.CloseExpired()
	require.NoError(t, err)
	require.EqualValues(t, 1, closed)

	var reloaded models.ServiceRequest
	require.NoError(t, svc.db.First(&reloaded, request.ID).Error)
	require.Equal(t, models.RequestStatusClosed, reloaded.Status)
}
