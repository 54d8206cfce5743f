package cron

import (
	"context"
	"log/slog"
	"time"
)

// NotificationPurger is the part of the notification service the purge job needs
type NotificationPurger interface {
	PurgeDeleted(ctx context.Context, retention time.Duration) (int64, error)
}

// NotificationJobs contains notification housekeeping jobs
type NotificationJobs struct {
	purger    NotificationPurger
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger
}

// NewNotificationJobs creates notification cron jobs
func NewNotificationJobs(purger NotificationPurger, retention, interval time.Duration, logger *slog.Logger) *NotificationJobs {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationJobs{
		purger:    purger,
		retention: retention,
		interval:  interval,
		logger:    logger,
	}
}

// RegisterJobs registers all notification-related cron jobs
func (j *NotificationJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("purge_deleted_notifications", j.interval, j.PurgeDeleted)
}

// PurgeDeleted hard-deletes soft-deleted notifications past the retention period
func (j *NotificationJobs) PurgeDeleted(ctx context.Context) error {
	purged, err := j.purger.PurgeDeleted(ctx, j.retention)
	if err != nil {
		return err
	}
	if purged > 0 {
		j.logger.Info("Purged deleted notifications", "count", purged, "retention", j.retention)
	}
	return nil
}
