package queue

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage implements all queue repository interfaces for testing and
// local development.
type MemoryStorage struct {
	mu         sync.RWMutex
	jobs       map[uuid.UUID]*Job
	deadLetter map[uuid.UUID]*DeadLetterJob

	// Indexes for efficient queries
	byQueue  map[string][]uuid.UUID
	byStatus map[JobStatus][]uuid.UUID

	// Lock management
	lockTicker *time.Ticker
	done       chan struct{}
}

// NewMemoryStorage creates a new in-memory storage implementation
func NewMemoryStorage() *MemoryStorage {
	ms := &MemoryStorage{
		jobs:       make(map[uuid.UUID]*Job),
		deadLetter: make(map[uuid.UUID]*DeadLetterJob),
		byQueue:    make(map[string][]uuid.UUID),
		byStatus:   make(map[JobStatus][]uuid.UUID),
		done:       make(chan struct{}),
	}

	// Recover jobs claimed by workers that died without releasing the lock
	ms.lockTicker = time.NewTicker(time.Second)
	go ms.lockExpirationManager()

	return ms
}

// Close stops the background goroutines
func (ms *MemoryStorage) Close() error {
	close(ms.done)
	ms.lockTicker.Stop()
	return nil
}

// CreateJob implements EnqueuerRepository
func (ms *MemoryStorage) CreateJob(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.jobs[job.ID]; exists {
		return fmt.Errorf("job with ID %s already exists", job.ID)
	}

	// Clone to prevent external modifications
	jobCopy := *job
	ms.jobs[job.ID] = &jobCopy

	ms.byQueue[job.Queue] = append(ms.byQueue[job.Queue], job.ID)
	ms.byStatus[job.Status] = append(ms.byStatus[job.Status], job.ID)

	return nil
}

// GetJob returns a copy of the job with the given id.
func (ms *MemoryStorage) GetJob(ctx context.Context, jobID uuid.UUID) (*Job, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	job, exists := ms.jobs[jobID]
	if !exists {
		return nil, ErrJobNotFound
	}

	jobCopy := *job
	return &jobCopy, nil
}

// ClaimJob implements WorkerRepository. Eligible jobs are selected in
// delay-then-FIFO order: the earliest scheduled_at that has passed wins.
func (ms *MemoryStorage) ClaimJob(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Job, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	var best *Job

	for _, jobID := range ms.byStatus[JobStatusPending] {
		job := ms.jobs[jobID]

		if !slices.Contains(queues, job.Queue) {
			continue
		}

		// Skip jobs scheduled for future execution (delayed jobs)
		if job.ScheduledAt.After(now) {
			continue
		}

		if job.LockedUntil != nil && job.LockedUntil.After(now) {
			continue
		}

		if best == nil || job.ScheduledAt.Before(best.ScheduledAt) {
			best = job
		}
	}

	if best == nil {
		return nil, ErrNoJobToClaim
	}

	lockUntil := now.Add(lockDuration)
	best.Status = JobStatusProcessing
	best.LockedUntil = &lockUntil
	best.LockedBy = &workerID

	ms.removeFromStatusIndex(best.ID, JobStatusPending)
	ms.byStatus[JobStatusProcessing] = append(ms.byStatus[JobStatusProcessing], best.ID)

	jobCopy := *best
	return &jobCopy, nil
}

// CompleteJob implements WorkerRepository
func (ms *MemoryStorage) CompleteJob(ctx context.Context, jobID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	job, exists := ms.jobs[jobID]
	if !exists {
		return fmt.Errorf("job %s not found", jobID)
	}

	if job.Status != JobStatusProcessing {
		return fmt.Errorf("job %s is not in processing state", jobID)
	}

	now := time.Now()
	job.Status = JobStatusCompleted
	job.ProcessedAt = &now
	job.LockedUntil = nil
	job.LockedBy = nil

	ms.removeFromStatusIndex(jobID, JobStatusProcessing)
	ms.byStatus[JobStatusCompleted] = append(ms.byStatus[JobStatusCompleted], jobID)

	return nil
}

// FailJob implements WorkerRepository. The job's own backoff policy decides
// the reschedule delay; exhausted jobs become terminally failed.
func (ms *MemoryStorage) FailJob(ctx context.Context, jobID uuid.UUID, errorMsg string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	job, exists := ms.jobs[jobID]
	if !exists {
		return fmt.Errorf("job %s not found", jobID)
	}

	if job.Status != JobStatusProcessing {
		return fmt.Errorf("job %s is not in processing state", jobID)
	}

	job.Attempts++
	job.Error = &errorMsg
	job.LockedUntil = nil
	job.LockedBy = nil

	if job.Attempts >= job.MaxAttempts {
		job.Status = JobStatusFailed
		ms.removeFromStatusIndex(jobID, JobStatusProcessing)
		ms.byStatus[JobStatusFailed] = append(ms.byStatus[JobStatusFailed], jobID)
	} else {
		job.Status = JobStatusPending
		ms.removeFromStatusIndex(jobID, JobStatusProcessing)
		ms.byStatus[JobStatusPending] = append(ms.byStatus[JobStatusPending], jobID)

		job.ScheduledAt = time.Now().Add(job.Backoff.Next(job.Attempts))
	}

	return nil
}

// MoveToDeadLetter implements WorkerRepository
func (ms *MemoryStorage) MoveToDeadLetter(ctx context.Context, jobID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	job, exists := ms.jobs[jobID]
	if !exists {
		return fmt.Errorf("job %s not found", jobID)
	}

	entry := &DeadLetterJob{
		ID:        uuid.New(),
		JobID:     job.ID,
		Queue:     job.Queue,
		Name:      job.Name,
		Payload:   job.Payload,
		Error:     "",
		Attempts:  job.Attempts,
		FailedAt:  time.Now(),
		CreatedAt: time.Now(),
	}

	if job.Error != nil {
		entry.Error = *job.Error
	}

	ms.deadLetter[entry.ID] = entry

	ms.removeFromStatusIndex(jobID, job.Status)
	ms.removeFromQueueIndex(jobID, job.Queue)
	delete(ms.jobs, jobID)

	return nil
}

// DeadLetterJobs returns a snapshot of the dead letter archive.
func (ms *MemoryStorage) DeadLetterJobs() []DeadLetterJob {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	out := make([]DeadLetterJob, 0, len(ms.deadLetter))
	for _, entry := range ms.deadLetter {
		out = append(out, *entry)
	}
	return out
}

// ExtendLock implements WorkerRepository
func (ms *MemoryStorage) ExtendLock(ctx context.Context, jobID uuid.UUID, duration time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	job, exists := ms.jobs[jobID]
	if !exists {
		return fmt.Errorf("job %s not found", jobID)
	}

	if job.Status != JobStatusProcessing {
		return fmt.Errorf("job %s is not in processing state", jobID)
	}

	lockUntil := time.Now().Add(duration)
	job.LockedUntil = &lockUntil

	return nil
}

// Helper methods

func (ms *MemoryStorage) removeFromStatusIndex(jobID uuid.UUID, status JobStatus) {
	ms.byStatus[status] = slices.DeleteFunc(ms.byStatus[status], func(id uuid.UUID) bool {
		return id == jobID
	})
}

func (ms *MemoryStorage) removeFromQueueIndex(jobID uuid.UUID, queue string) {
	ms.byQueue[queue] = slices.DeleteFunc(ms.byQueue[queue], func(id uuid.UUID) bool {
		return id == jobID
	})
}

func (ms *MemoryStorage) lockExpirationManager() {
	for {
		select {
		case <-ms.lockTicker.C:
			ms.expireLocks()
		case <-ms.done:
			return
		}
	}
}

// expireLocks resets processing jobs whose lock has passed back to pending,
// preserving their attempt count.
func (ms *MemoryStorage) expireLocks() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()

	// Collect first: removeFromStatusIndex compacts the slice being ranged,
	// so mutating inside the loop would walk freed index slots.
	var expired []uuid.UUID
	for _, jobID := range ms.byStatus[JobStatusProcessing] {
		job := ms.jobs[jobID]
		if job != nil && job.LockedUntil != nil && job.LockedUntil.Before(now) {
			expired = append(expired, jobID)
		}
	}

	for _, jobID := range expired {
		job := ms.jobs[jobID]
		job.Status = JobStatusPending
		job.LockedUntil = nil
		job.LockedBy = nil

		ms.removeFromStatusIndex(jobID, JobStatusProcessing)
		ms.byStatus[JobStatusPending] = append(ms.byStatus[JobStatusPending], jobID)
	}
}
