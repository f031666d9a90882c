package services

import (
	"gorm.io/gorm"

	"servicelink-server/models"
)

const notificationPageSize = 50

// NotificationService manages the durable notification log. Live unread
// state lives in websocket sessions; this service only touches the rows.
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a notification service
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// List returns the user's most recent notifications
func (s *NotificationService) List(user *models.User) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(notificationPageSize).
		Find(&notifications).Error
	if err != nil {
		return nil, classifyDB(err, "")
	}
	return notifications, nil
}

// MarkRead flags one notification as read and returns it so the caller can
// propagate the payload to the user's live session.
func (s *NotificationService) MarkRead(user *models.User, notificationID uint) (*models.Notification, error) {
	var notification models.Notification
	if err := s.db.First(&notification, notificationID).Error; err != nil {
		return nil, NotFoundf("Notification not found")
	}
	if notification.UserID != user.ID {
		return nil, Authorizationf("Not authorized")
	}

	if !notification.IsRead {
		if err := s.db.Model(&notification).Update("is_read", true).Error; err != nil {
			return nil, classifyDB(err, "")
		}
		notification.IsRead = true
	}
	return &notification, nil
}

// MarkAllRead flags every unread notification for the user
func (s *NotificationService) MarkAllRead(user *models.User) error {
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Update("is_read", true).Error
	if err != nil {
		return classifyDB(err, "")
	}
	return nil
}

// UnreadCount returns the number of unread rows for the user
func (s *NotificationService) UnreadCount(user *models.User) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Count(&count).Error
	if err != nil {
		return 0, classifyDB(err, "")
	}
	return count, nil
}
