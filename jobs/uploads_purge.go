package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// UploadPurger removes expired soft-deleted uploads from storage.
type UploadPurger interface {
	PurgeExpired(ctx context.Context, retention time.Duration) (int, error)
}

// NewUploadsPurgeHandler processes TaskTypeUploadsPurge tasks, scheduled by
// cron from the worker.
func NewUploadsPurgeHandler(logger *slog.Logger, purger UploadPurger, retention time.Duration) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		purged, err := purger.PurgeExpired(ctx, retention)
		if err != nil {
			logger.Error("upload purge failed", slog.Any("error", err))
			return err
		}
		if purged > 0 {
			logger.Info("purged expired uploads", slog.Int("count", purged))
		}
		return nil
	}
}
