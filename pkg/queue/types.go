package queue

import (
	"time"

	"github.com/google/uuid"
)

// DefaultQueueName is the default queue name used when no queue is specified
const DefaultQueueName = "default"

// Well-known queue names for the orchestration pipelines.
const (
	QueueSocialPublish   = "social-publish"
	QueueEventSync       = "event-sync"
	QueueWebhookDelivery = "webhook-delivery"
	QueueHoldExpiry      = "hold-expiry"
)

// JobStatus represents the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job represents one unit of work in a named queue. The payload is a JSON
// document whose shape is determined by Name; handlers are bound to exactly
// one payload type, so Name acts as the discriminator of the payload union.
type Job struct {
	ID          uuid.UUID       `json:"id"`
	Queue       string          `json:"queue"`
	Name        string          `json:"name"`
	Payload     []byte          `json:"payload,omitempty"`
	Status      JobStatus       `json:"status"`
	Attempts    int8            `json:"attempts"`
	MaxAttempts int8            `json:"max_attempts"`
	Backoff     Policy          `json:"backoff"`
	ScheduledAt time.Time       `json:"scheduled_at"`
	LockedUntil *time.Time      `json:"locked_until,omitempty"`
	LockedBy    *uuid.UUID      `json:"locked_by,omitempty"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
	Error       *string         `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// DeadLetterJob stores a job that exhausted all attempts, kept for manual
// inspection and recovery.
type DeadLetterJob struct {
	ID        uuid.UUID `json:"id"`
	JobID     uuid.UUID `json:"job_id"`
	Queue     string    `json:"queue"`
	Name      string    `json:"name"`
	Payload   []byte    `json:"payload,omitempty"`
	Error     string    `json:"error"`
	Attempts  int8      `json:"attempts"`
	FailedAt  time.Time `json:"failed_at"`
	CreatedAt time.Time `json:"created_at"`
}
