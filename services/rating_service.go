package services

import (
	"fmt"
	"math"

	"gorm.io/gorm"

	"servicelink-server/models"
	ws "servicelink-server/websocket"
)

// RatingService handles post-completion ratings and the aggregate score
// shown on user profiles.
type RatingService struct {
	db     *gorm.DB
	events ws.Publisher
}

// NewRatingService creates a rating service publishing to the given event sink
func NewRatingService(db *gorm.DB, events ws.Publisher) *RatingService {
	return &RatingService{db: db, events: events}
}

// Submit records a rating for a completed booking. In one transaction the
// rating is created, the rater's pending rating entry is removed, and the
// target's aggregate score is recomputed.
func (s *RatingService) Submit(rater *models.User, in models.RatingCreate) (*models.Rating, error) {
	var booking models.Booking
	if err := s.db.First(&booking, in.BookingID).Error; err != nil {
		return nil, NotFoundf("Booking not found")
	}
	if !booking.IsParty(rater.ID) {
		return nil, Authorizationf("Not authorized")
	}
	if booking.Status != models.BookingStatusCompleted {
		return nil, Conflictf("Only completed bookings can be rated")
	}

	var existing int64
	if err := s.db.Model(&models.Rating{}).
		Where("booking_id = ? AND rater_id = ?", booking.ID, rater.ID).
		Count(&existing).Error; err != nil {
		return nil, classifyDB(err, "")
	}
	if existing > 0 {
		return nil, Conflictf("You have already rated this experience")
	}

	targetID := booking.CounterpartyID(rater.ID)
	targetRole := models.RoleProvider
	if targetID == booking.SeekerID {
		targetRole = models.RoleSeeker
	}

	rating := models.Rating{
		BookingID:  booking.ID,
		RaterID:    rater.ID,
		RaterName:  rater.Name,
		RaterRole:  rater.Role,
		TargetID:   targetID,
		TargetRole: targetRole,
		Rating:     in.Rating,
		Comment:    in.Comment,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rating).Error; err != nil {
			return err
		}

		if err := tx.
			Where("booking_id = ? AND rater_id = ?", booking.ID, rater.ID).
			Delete(&models.PendingRating{}).Error; err != nil {
			return err
		}

		var avg float64
		if err := tx.Model(&models.Rating{}).
			Where("target_id = ?", targetID).
			Select("COALESCE(AVG(rating), 0)").
			Scan(&avg).Error; err != nil {
			return err
		}
		rounded := math.Round(avg*10) / 10
		if err := tx.Model(&models.User{}).
			Where("id = ?", targetID).
			Update("rating", rounded).Error; err != nil {
			return err
		}

		notification := models.Notification{
			UserID:  targetID,
			Title:   "⭐ New Rating",
			Message: fmt.Sprintf("%s rated you %d stars", rater.Name, in.Rating),
			Type:    models.NotificationRatingReceived,
			Data: models.NotificationPayload{
				BookingID: booking.ID,
				RaterID:   rater.ID,
				Rating:    in.Rating,
				ActorName: rater.Name,
			}.Encode(),
		}
		return tx.Create(&notification).Error
	})
	if err != nil {
		return nil, classifyDB(err, "You have already rated this experience")
	}

	return &rating, nil
}

// PendingFor lists the ratings a user still owes, oldest first
func (s *RatingService) PendingFor(user *models.User) ([]models.PendingRating, error) {
	var pending []models.PendingRating
	err := s.db.
		Where("rater_id = ?", user.ID).
		Order("created_at ASC").
		Find(&pending).Error
	if err != nil {
		return nil, classifyDB(err, "")
	}
	return pending, nil
}

// ReceivedBy lists the ratings a user has received, newest first
func (s *RatingService) ReceivedBy(userID uint) ([]models.Rating, error) {
	var ratings []models.Rating
	err := s.db.
		Where("target_id = ?", userID).
		Order("created_at DESC").
		Find(&ratings).Error
	if err != nil {
		return nil, classifyDB(err, "")
	}
	return ratings, nil
}

// StatsFor summarizes a user's received ratings
func (s *RatingService) StatsFor(userID uint) (*models.RatingStats, error) {
	ratings, err := s.ReceivedBy(userID)
	if err != nil {
		return nil, err
	}

	stats := models.RatingStats{Distribution: map[int]int{}}
	sum := 0
	for _, r := range ratings {
		stats.Total++
		sum += r.Rating
		stats.Distribution[r.Rating]++
	}
	if stats.Total > 0 {
		stats.Average = math.Round(float64(sum)/float64(stats.Total)*10) / 10
	}
	return &stats, nil
}
