package jobs

import (
	"log"
	"time"

	"servicelink-server/services"
)

const expirationCheckInterval = 30 * time.Second

// ExpirationJob closes service requests past their expiry window
type ExpirationJob struct {
	requests *services.RequestService
	stopChan chan bool
}

// NewExpirationJob creates a new expiration job
func NewExpirationJob(requests *services.RequestService) *ExpirationJob {
	return &ExpirationJob{
		requests: requests,
		stopChan: make(chan bool),
	}
}

// Start begins the expiration job
func (j *ExpirationJob) Start() {
	go j.run()
	log.Println("🚀 Expiration job started")
}

// Stop stops the expiration job
func (j *ExpirationJob) Stop() {
	j.stopChan <- true
	log.Println("🛑 Expiration job stopped")
}

func (j *ExpirationJob) run() {
	ticker := time.NewTicker(expirationCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.checkExpiredRequests()
		case <-j.stopChan:
			return
		}
	}
}

func (j *ExpirationJob) checkExpiredRequests() {
	closed, err := j.requests.CloseExpired()
	if err != nil {
		log.Printf("❌ Error closing expired requests: %v", err)
		return
	}
	if closed > 0 {
		log.Printf("⏰ Closed %d expired service requests", closed)
	}
}
