package services

import (
	"sort"
	"strings"

	"gorm.io/gorm"

	"servicelink-server/models"
	"servicelink-server/utils"
)

// CatalogService manages fixed-price service listings and the seeker-side
// browse view.
type CatalogService struct {
	db *gorm.DB
}

// NewCatalogService creates a catalog service
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// BrowseItem is a listing annotated with the distance to the browsing seeker
type BrowseItem struct {
	models.Service
	DistanceKm float64 `json:"distance_km"`
}

// Create lists a new service for a provider
func (s *CatalogService) Create(provider *models.User, in models.ServiceCreate) (*models.Service, error) {
	if !provider.IsProvider() {
		return nil, Validationf("Only providers can list services")
	}

	service := models.Service{
		ProviderID:  provider.ID,
		Title:       in.Title,
		Category:    in.Category,
		Description: in.Description,
		Price:       in.Price,
		IsActive:    true,
	}
	if err := s.db.Create(&service).Error; err != nil {
		return nil, classifyDB(err, "")
	}
	return &service, nil
}

// MyServices lists a provider's own services, newest first
func (s *CatalogService) MyServices(provider *models.User) ([]models.Service, error) {
	var services []models.Service
	err := s.db.
		Where("provider_id = ?", provider.ID).
		Order("created_at DESC").
		Find(&services).Error
	if err != nil {
		return nil, classifyDB(err, "")
	}
	return services, nil
}

// SetActive toggles a listing's availability
func (s *CatalogService) SetActive(provider *models.User, serviceID uint, active bool) (*models.Service, error) {
	var service models.Service
	if err := s.db.First(&service, serviceID).Error; err != nil {
		return nil, NotFoundf("Service not found")
	}
	if service.ProviderID != provider.ID {
		return nil, Authorizationf("Not authorized")
	}

	if err := s.db.Model(&service).Update("is_active", active).Error; err != nil {
		return nil, classifyDB(err, "")
	}
	service.IsActive = active
	return &service, nil
}

// Delete removes a listing along with any bookmarks pointing at it. Existing
// bookings keep their frozen price and their nullable service reference.
func (s *CatalogService) Delete(provider *models.User, serviceID uint) error {
	var service models.Service
	if err := s.db.First(&service, serviceID).Error; err != nil {
		return NotFoundf("Service not found")
	}
	if service.ProviderID != provider.ID {
		return Authorizationf("Not authorized")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("service_id = ?", serviceID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		return tx.Delete(&service).Error
	})
	if err != nil {
		return classifyDB(err, "")
	}
	return nil
}

// Browse returns active listings for a seeker, filtered by category and a
// case-insensitive title/description search, annotated and sorted by
// distance when the seeker has a location and a radius band is given.
// radiusKm of 0 skips the distance filter.
func (s *CatalogService) Browse(seeker *models.User, category, search string, radiusKm float64) ([]BrowseItem, error) {
	query := s.db.
		Preload("Provider").
		Where("is_active = ?", true).
		Where("provider_id <> ?", seeker.ID)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var services []models.Service
	if err := query.Order("created_at DESC").Find(&services).Error; err != nil {
		return nil, classifyDB(err, "")
	}

	lat, lng, hasOrigin := seeker.Coordinates()
	if !hasOrigin || radiusKm <= 0 {
		items := make([]BrowseItem, 0, len(services))
		for _, svc := range services {
			items = append(items, BrowseItem{Service: svc})
		}
		return items, nil
	}

	items := []BrowseItem{}
	for _, svc := range services {
		pLat, pLng, ok := svc.Provider.Coordinates()
		if !ok {
			continue
		}
		distance := utils.HaversineDistance(lat, lng, pLat, pLng)
		if distance > radiusKm {
			continue
		}
		items = append(items, BrowseItem{Service: svc, DistanceKm: distance})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].DistanceKm < items[j].DistanceKm
	})
	return items, nil
}
