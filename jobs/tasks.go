package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeNotifyFanout delivers in-app notifications to a set of users.
	TaskTypeNotifyFanout = "notify:fanout"
	// TaskTypeUploadsPurge sweeps soft-deleted uploads past retention.
	TaskTypeUploadsPurge = "uploads:purge"
)

// NotifyFanoutPayload describes one notification delivered to many users.
type NotifyFanoutPayload struct {
	UserIDs []int64 `json:"user_ids"`
	Kind    string  `json:"kind"`
	Title   string  `json:"title"`
	Body    string  `json:"body"`
}

// NewNotifyFanoutTask constructs an Asynq task.
func NewNotifyFanoutTask(payload NotifyFanoutPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeNotifyFanout, data), nil
}

// NewUploadsPurgeTask constructs the purge task; it carries no payload.
func NewUploadsPurgeTask() *asynq.Task {
	return asynq.NewTask(TaskTypeUploadsPurge, nil)
}
