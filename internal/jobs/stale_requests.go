package jobs

import (
	"context"
	"time"

	"github.com/Danelya04/PawPal/internal/services"
	"github.com/sirupsen/logrus"
)

// StaleRequestMaxAge is how long an adoption request may stay pending
// before the janitor expires it.
const StaleRequestMaxAge = 30 * 24 * time.Hour

// AdoptionJanitor runs periodic maintenance on the adoption workflow.
type AdoptionJanitor struct {
	AdoptionService     *services.AdoptionService
	NotificationService *services.NotificationService
}

// NewAdoptionJanitor creates a new instance of AdoptionJanitor.
func NewAdoptionJanitor(adoptionService *services.AdoptionService, notifService *services.NotificationService) *AdoptionJanitor {
	return &AdoptionJanitor{
		AdoptionService:     adoptionService,
		NotificationService: notifService,
	}
}

// ExpireStaleRequests rejects pending requests that went unanswered.
func (j *AdoptionJanitor) ExpireStaleRequests(ctx context.Context) error {
	if err := j.AdoptionService.ExpireStaleRequests(ctx, StaleRequestMaxAge); err != nil {
		return err
	}
	logrus.Info("Stale adoption request scan completed")
	return nil
}

// CleanupNotifications purges notifications past their expiry.
func (j *AdoptionJanitor) CleanupNotifications(ctx context.Context) error {
	return j.NotificationService.DeleteExpiredNotifications(ctx)
}
