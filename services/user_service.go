package services

import (
	"log"

	"gorm.io/gorm"

	"servicelink-server/config"
	"servicelink-server/models"
	"servicelink-server/utils"
)

// UserService manages profiles and the public landing stats
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a user service
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Get loads a user's public profile
func (s *UserService) Get(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, NotFoundf("User not found")
	}
	return &user, nil
}

// UpdateLocation stores the user's coordinates and resolves a human-readable
// address. Geocoding failures fall back to a placeholder rather than failing
// the update.
func (s *UserService) UpdateLocation(user *models.User, lat, lng float64) (*models.User, error) {
	if !utils.IsLocationValid(lat, lng) {
		return nil, Validationf("Invalid coordinates")
	}

	address, err := utils.ReverseGeocode(config.AppConfig.Geo.NominatimURL, lat, lng)
	if err != nil {
		log.Printf("⚠️ Reverse geocoding failed for user %d: %v", user.ID, err)
		address = "Location set"
	}

	updates := map[string]interface{}{
		"lat":     lat,
		"lng":     lng,
		"address": address,
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, classifyDB(err, "")
	}

	user.Lat = &lat
	user.Lng = &lng
	user.Address = &address
	log.Printf("📍 Location updated for user %d: %s", user.ID, address)
	return user, nil
}

// UpdatePayment stores a provider's payout method and detail
func (s *UserService) UpdatePayment(user *models.User, method, detail string) (*models.User, error) {
	if !user.IsProvider() {
		return nil, Validationf("Only providers can set payout details")
	}
	if method == "" || detail == "" {
		return nil, Validationf("Payment method and detail are required")
	}

	updates := map[string]interface{}{
		"payment_method": method,
		"payment_detail": detail,
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, classifyDB(err, "")
	}

	user.PaymentMethod = &method
	user.PaymentDetail = &detail
	return user, nil
}

// PlatformStats are the public counts shown on the landing page
type PlatformStats struct {
	Users     int64 `json:"users"`
	Providers int64 `json:"providers"`
	Services  int64 `json:"services"`
	Reviews   int64 `json:"reviews"`
}

// Stats counts users, providers, active listings and reviews
func (s *UserService) Stats() (*PlatformStats, error) {
	var stats PlatformStats
	if err := s.db.Model(&models.User{}).Count(&stats.Users).Error; err != nil {
		return nil, classifyDB(err, "")
	}
	if err := s.db.Model(&models.User{}).
		Where("role = ?", models.RoleProvider).
		Count(&stats.Providers).Error; err != nil {
		return nil, classifyDB(err, "")
	}
	if err := s.db.Model(&models.Service{}).
		Where("is_active = ?", true).
		Count(&stats.Services).Error; err != nil {
		return nil, classifyDB(err, "")
	}
	if err := s.db.Model(&models.Rating{}).Count(&stats.Reviews).Error; err != nil {
		return nil, classifyDB(err, "")
	}
	return &stats, nil
}
