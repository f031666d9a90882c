package services

import (
	"gorm.io/gorm"

	"servicelink-server/models"
)

// FavoriteService manages a user's bookmarked service listings
type FavoriteService struct {
	db *gorm.DB
}

// NewFavoriteService creates a favorite service
func NewFavoriteService(db *gorm.DB) *FavoriteService {
	return &FavoriteService{db: db}
}

// Toggle bookmarks the listing, or removes the bookmark when one already
// exists. It returns the resulting state.
func (s *FavoriteService) Toggle(user *models.User, serviceID uint) (bool, error) {
	var service models.Service
	if err := s.db.First(&service, serviceID).Error; err != nil {
		return false, NotFoundf("Service not found")
	}
	if service.ProviderID == user.ID {
		return false, Validationf("You cannot favorite your own service")
	}

	result := s.db.
		Where("user_id = ? AND service_id = ?", user.ID, serviceID).
		Delete(&models.Favorite{})
	if result.Error != nil {
		return false, classifyDB(result.Error, "")
	}
	if result.RowsAffected > 0 {
		return false, nil
	}

	favorite := models.Favorite{UserID: user.ID, ServiceID: serviceID}
	if err := s.db.Create(&favorite).Error; err != nil {
		return false, classifyDB(err, "Service is already in your favorites")
	}
	return true, nil
}

// IsFavorite reports whether the user has bookmarked the listing
func (s *FavoriteService) IsFavorite(user *models.User, serviceID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.Favorite{}).
		Where("user_id = ? AND service_id = ?", user.ID, serviceID).
		Count(&count).Error
	if err != nil {
		return false, classifyDB(err, "")
	}
	return count > 0, nil
}

// ListForUser returns the user's bookmarked listings, newest bookmark first
func (s *FavoriteService) ListForUser(user *models.User) ([]models.Service, error) {
	var favorites []models.Favorite
	err := s.db.
		Preload("Service.Provider").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, classifyDB(err, "")
	}

	services := make([]models.Service, 0, len(favorites))
	for _, favorite := range favorites {
		services = append(services, favorite.Service)
	}
	return services, nil
}
