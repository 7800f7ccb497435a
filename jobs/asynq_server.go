package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// Worker wraps the Asynq server and optional scheduler.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	logger    *slog.Logger
}

// TaskHandler allows injecting custom Asynq handlers during worker setup.
type TaskHandler struct {
	Type    string
	Handler asynq.HandlerFunc
}

// CronRegistration wires a cron expression to a prepared task.
type CronRegistration struct {
	Spec    string
	Task    *asynq.Task
	Options []asynq.Option
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts asynq.RedisClientOpt
	Logger    *slog.Logger
	Handlers  []TaskHandler
	Cron      []CronRegistration
}

// NewWorker constructs a Worker instance.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})
	mux := asynq.NewServeMux()
	for _, h := range cfg.Handlers {
		if h.Type == "" || h.Handler == nil {
			continue
		}
		mux.HandleFunc(h.Type, h.Handler)
	}

	var scheduler *asynq.Scheduler
	if len(cfg.Cron) > 0 {
		scheduler = asynq.NewScheduler(cfg.RedisOpts, &asynq.SchedulerOpts{Location: time.UTC})
		for _, entry := range cfg.Cron {
			if entry.Spec == "" || entry.Task == nil {
				continue
			}
			if _, err := scheduler.Register(entry.Spec, entry.Task, entry.Options...); err != nil {
				return nil, err
			}
		}
	}

	return &Worker{server: srv, mux: mux, scheduler: scheduler, logger: cfg.Logger}, nil
}

// Run starts processing jobs until context cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: not configured")
	}
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			return err
		}
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		return err
	}
}

// Client submits jobs to the queue. Its notify methods satisfy the Notifier
// ports of the order and message services; enqueue failures are logged and
// swallowed so a Redis hiccup never fails the originating request.
type Client struct {
	client *asynq.Client
	logger *slog.Logger
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt, logger *slog.Logger) (*Client, error) {
	return &Client{client: asynq.NewClient(redisOpts), logger: logger}, nil
}

// EnqueueNotifyFanout enqueues a notification fan-out task.
func (c *Client) EnqueueNotifyFanout(ctx context.Context, payload NotifyFanoutPayload) (*asynq.TaskInfo, error) {
	task, err := NewNotifyFanoutTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}

// NotifyOrderStatus tells an order's owner about a status change.
func (c *Client) NotifyOrderStatus(ctx context.Context, userID, orderID int64, status string) {
	c.enqueue(ctx, NotifyFanoutPayload{
		UserIDs: []int64{userID},
		Kind:    "ORDER_STATUS",
		Title:   "Order update",
		Body:    orderBody(orderID, status),
	})
}

// NotifyMessageResponse tells a message's sender that staff replied.
func (c *Client) NotifyMessageResponse(ctx context.Context, userID, messageID int64) {
	c.enqueue(ctx, NotifyFanoutPayload{
		UserIDs: []int64{userID},
		Kind:    "MESSAGE_RESPONSE",
		Title:   "New reply",
		Body:    messageBody(messageID),
	})
}

func (c *Client) enqueue(ctx context.Context, payload NotifyFanoutPayload) {
	if _, err := c.EnqueueNotifyFanout(ctx, payload); err != nil && c.logger != nil {
		c.logger.Error("enqueue notification failed", slog.Any("error", err))
	}
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
