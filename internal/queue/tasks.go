package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jobtrack/jobtrack/internal/domain"
)

const TypeJobEvent = "job:event"

const (
	EventJobCreated = "job.created"
	EventJobUpdated = "job.updated"
	EventJobDeleted = "job.deleted"
)

// JobEventPayload is the task body for one job lifecycle event delivered
// to the configured integration endpoint.
type JobEventPayload struct {
	Event      string     `json:"event"`
	Job        domain.Job `json:"job"`
	OccurredAt time.Time  `json:"occurred_at"`
}

func NewJobEventTask(payload JobEventPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal job event payload: %w", err)
	}
	return asynq.NewTask(TypeJobEvent, body), nil
}

func ParseJobEventPayload(task *asynq.Task) (JobEventPayload, error) {
	var payload JobEventPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return JobEventPayload{}, fmt.Errorf("unmarshal job event payload: %w", err)
	}
	return payload, nil
}
