package cron

import (
	"context"

	"github.com/Danelya04/PawPal/internal/jobs"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartAdoptionCronJobs schedules the periodic maintenance jobs.
func StartAdoptionCronJobs(janitor *jobs.AdoptionJanitor) {
	c := cron.New()

	// Expire unanswered adoption requests once a day
	c.AddFunc("0 3 * * *", func() {
		if err := janitor.ExpireStaleRequests(context.Background()); err != nil {
			logrus.WithError(err).Error("ExpireStaleRequests failed")
		}
	})

	// Purge expired notifications
	c.AddFunc("@hourly", func() {
		if err := janitor.CleanupNotifications(context.Background()); err != nil {
			logrus.WithError(err).Error("CleanupNotifications failed")
		}
	})

	c.Start()
}
