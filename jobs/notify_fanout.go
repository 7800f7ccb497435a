package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/printdesk/printdesk/internal/notifications"
)

// NotificationDeliverer stores one notification for one user.
type NotificationDeliverer interface {
	Deliver(ctx context.Context, userID int64, kind notifications.Kind, title, body string) (notifications.Notification, error)
}

// NewNotifyFanoutHandler processes TaskTypeNotifyFanout tasks. Deliveries run
// concurrently with a small cap; a single failed recipient retries the task.
func NewNotifyFanoutHandler(logger *slog.Logger, deliverer NotificationDeliverer) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload NotifyFanoutPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if len(payload.UserIDs) == 0 {
			return nil
		}

		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(8)
		for _, userID := range payload.UserIDs {
			g.Go(func() error {
				_, err := deliverer.Deliver(ctx, userID, notifications.Kind(payload.Kind), payload.Title, payload.Body)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			logger.Error("notification fanout failed", slog.Any("error", err))
			return err
		}
		return nil
	}
}
