package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"servicelink-server/config"
	"servicelink-server/database"
	"servicelink-server/models"
	ws "servicelink-server/websocket"
)

// newTestDB opens a fresh in-memory database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	config.Load()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

// recordingPublisher captures published events for assertions
type recordingPublisher struct {
	mu     sync.Mutex
	events []ws.Event
}

func (r *recordingPublisher) Publish(ev ws.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingPublisher) all() []ws.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ws.Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recordingPublisher) byStream(stream ws.Stream) []ws.Event {
	var out []ws.Event
	for _, ev := range r.all() {
		if ev.Stream == stream {
			out = append(out, ev)
		}
	}
	return out
}

func createSeeker(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "x",
		Role:         models.RoleSeeker,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createProvider(t *testing.T, db *gorm.DB, name, email string, lat, lng float64) *models.User {
	t.Helper()
	category := "Plumbing"
	user := &models.User{
		Name:            name,
		Email:           email,
		PasswordHash:    "x",
		Role:            models.RoleProvider,
		ServiceCategory: &category,
		Lat:             &lat,
		Lng:             &lng,
		IsActive:        true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func countNotifications(t *testing.T, db *gorm.DB, userID uint, notificationType string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", userID, notificationType).
		Count(&count).Error)
	return count
}
