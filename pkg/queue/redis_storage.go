package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStorage implements the queue repository interfaces on Redis. Jobs are
// stored as JSON values; per-queue sorted sets hold pending job ids scored by
// their scheduled time, which gives workers delay-then-FIFO claim order. A
// shared processing set scored by lock deadline lets crashed workers' jobs be
// recovered.
type RedisStorage struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
}

// claimScript atomically pops the earliest due job id from the ready set and
// parks it in the processing set with its lock deadline.
var claimScript = redis.NewScript(`
local ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, 1)
if #ids == 0 then
	return false
end
redis.call('ZREM', KEYS[1], ids[1])
redis.call('ZADD', KEYS[2], ARGV[2], ids[1])
return ids[1]
`)

// RedisStorageOption configures a RedisStorage
type RedisStorageOption func(*RedisStorage)

// WithKeyPrefix sets the key namespace, default "queue:"
func WithKeyPrefix(prefix string) RedisStorageOption {
	return func(s *RedisStorage) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithRetention sets how long completed and terminally failed jobs are kept
// before their keys expire, default 24h.
func WithRetention(d time.Duration) RedisStorageOption {
	return func(s *RedisStorage) {
		if d > 0 {
			s.retention = d
		}
	}
}

// NewRedisStorage creates a Redis-backed job storage
func NewRedisStorage(client redis.UniversalClient, opts ...RedisStorageOption) (*RedisStorage, error) {
	if client == nil {
		return nil, ErrRepositoryNil
	}

	s := &RedisStorage{
		client:    client,
		prefix:    "queue:",
		retention: 24 * time.Hour,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *RedisStorage) jobKey(id uuid.UUID) string  { return s.prefix + "job:" + id.String() }
func (s *RedisStorage) readyKey(queue string) string { return s.prefix + "ready:" + queue }
func (s *RedisStorage) processingKey() string        { return s.prefix + "processing" }
func (s *RedisStorage) deadLetterKey() string        { return s.prefix + "dead" }

// CreateJob implements EnqueuerRepository
func (s *RedisStorage) CreateJob(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job %s: %w", job.ID, err)
	}

	ok, err := s.client.SetNX(ctx, s.jobKey(job.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to store job %s: %w", job.ID, err)
	}
	if !ok {
		return fmt.Errorf("job with ID %s already exists", job.ID)
	}

	score := float64(job.ScheduledAt.UnixMilli())
	if err := s.client.ZAdd(ctx, s.readyKey(job.Queue), redis.Z{Score: score, Member: job.ID.String()}).Err(); err != nil {
		return fmt.Errorf("failed to index job %s: %w", job.ID, err)
	}

	return nil
}

// GetJob returns the job with the given id.
func (s *RedisStorage) GetJob(ctx context.Context, jobID uuid.UUID) (*Job, error) {
	return s.loadJob(ctx, jobID)
}

// ClaimJob implements WorkerRepository
func (s *RedisStorage) ClaimJob(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Job, error) {
	now := time.Now()

	if err := s.recoverExpired(ctx, now); err != nil {
		return nil, err
	}

	lockUntil := now.Add(lockDuration)
	for _, queue := range queues {
		res, err := claimScript.Run(ctx, s.client,
			[]string{s.readyKey(queue), s.processingKey()},
			now.UnixMilli(), lockUntil.UnixMilli(),
		).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to claim job from queue %q: %w", queue, err)
		}

		id, err := uuid.Parse(res.(string))
		if err != nil {
			return nil, fmt.Errorf("invalid job id in queue %q: %w", queue, err)
		}

		job, err := s.loadJob(ctx, id)
		if err != nil {
			return nil, err
		}

		job.Status = JobStatusProcessing
		job.LockedUntil = &lockUntil
		job.LockedBy = &workerID
		if err := s.saveJob(ctx, job, 0); err != nil {
			return nil, err
		}

		return job, nil
	}

	return nil, ErrNoJobToClaim
}

// CompleteJob implements WorkerRepository
func (s *RedisStorage) CompleteJob(ctx context.Context, jobID uuid.UUID) error {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return err
	}

	now := time.Now()
	job.Status = JobStatusCompleted
	job.ProcessedAt = &now
	job.LockedUntil = nil
	job.LockedBy = nil

	if err := s.client.ZRem(ctx, s.processingKey(), jobID.String()).Err(); err != nil {
		return fmt.Errorf("failed to release job %s: %w", jobID, err)
	}

	// Completed jobs expire after the retention window
	return s.saveJob(ctx, job, s.retention)
}

// FailJob implements WorkerRepository
func (s *RedisStorage) FailJob(ctx context.Context, jobID uuid.UUID, errorMsg string) error {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return err
	}

	job.Attempts++
	job.Error = &errorMsg
	job.LockedUntil = nil
	job.LockedBy = nil

	if err := s.client.ZRem(ctx, s.processingKey(), jobID.String()).Err(); err != nil {
		return fmt.Errorf("failed to release job %s: %w", jobID, err)
	}

	if job.Attempts >= job.MaxAttempts {
		job.Status = JobStatusFailed
		return s.saveJob(ctx, job, 0)
	}

	job.Status = JobStatusPending
	job.ScheduledAt = time.Now().Add(job.Backoff.Next(job.Attempts))
	if err := s.saveJob(ctx, job, 0); err != nil {
		return err
	}

	score := float64(job.ScheduledAt.UnixMilli())
	if err := s.client.ZAdd(ctx, s.readyKey(job.Queue), redis.Z{Score: score, Member: jobID.String()}).Err(); err != nil {
		return fmt.Errorf("failed to reschedule job %s: %w", jobID, err)
	}

	return nil
}

// MoveToDeadLetter implements WorkerRepository
func (s *RedisStorage) MoveToDeadLetter(ctx context.Context, jobID uuid.UUID) error {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return err
	}

	entry := DeadLetterJob{
		ID:        uuid.New(),
		JobID:     job.ID,
		Queue:     job.Queue,
		Name:      job.Name,
		Payload:   job.Payload,
		Attempts:  job.Attempts,
		FailedAt:  time.Now(),
		CreatedAt: time.Now(),
	}
	if job.Error != nil {
		entry.Error = *job.Error
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal dead letter entry for job %s: %w", jobID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.deadLetterKey(), data)
	pipe.ZRem(ctx, s.readyKey(job.Queue), jobID.String())
	pipe.ZRem(ctx, s.processingKey(), jobID.String())
	pipe.Del(ctx, s.jobKey(jobID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to move job %s to dead letter: %w", jobID, err)
	}

	return nil
}

// ExtendLock implements WorkerRepository
func (s *RedisStorage) ExtendLock(ctx context.Context, jobID uuid.UUID, duration time.Duration) error {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return err
	}

	if job.Status != JobStatusProcessing {
		return fmt.Errorf("job %s is not in processing state", jobID)
	}

	lockUntil := time.Now().Add(duration)
	job.LockedUntil = &lockUntil

	if err := s.client.ZAdd(ctx, s.processingKey(), redis.Z{
		Score:  float64(lockUntil.UnixMilli()),
		Member: jobID.String(),
	}).Err(); err != nil {
		return fmt.Errorf("failed to extend lock for job %s: %w", jobID, err)
	}

	return s.saveJob(ctx, job, 0)
}

// recoverExpired re-queues jobs whose worker lock has lapsed.
func (s *RedisStorage) recoverExpired(ctx context.Context, now time.Time) error {
	ids, err := s.client.ZRangeByScore(ctx, s.processingKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", now.UnixMilli()),
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to scan expired locks: %w", err)
	}

	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}

		job, err := s.loadJob(ctx, id)
		if err != nil {
			// Job value is gone; drop the dangling index entry
			_ = s.client.ZRem(ctx, s.processingKey(), raw).Err()
			continue
		}

		job.Status = JobStatusPending
		job.LockedUntil = nil
		job.LockedBy = nil
		if err := s.saveJob(ctx, job, 0); err != nil {
			return err
		}

		pipe := s.client.TxPipeline()
		pipe.ZRem(ctx, s.processingKey(), raw)
		pipe.ZAdd(ctx, s.readyKey(job.Queue), redis.Z{
			Score:  float64(job.ScheduledAt.UnixMilli()),
			Member: raw,
		})
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to recover job %s: %w", id, err)
		}
	}

	return nil
}

func (s *RedisStorage) loadJob(ctx context.Context, jobID uuid.UUID) (*Job, error) {
	data, err := s.client.Get(ctx, s.jobKey(jobID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job %s: %w", jobID, err)
	}

	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job %s: %w", jobID, err)
	}

	return &job, nil
}

func (s *RedisStorage) saveJob(ctx context.Context, job *Job, ttl time.Duration) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job %s: %w", job.ID, err)
	}

	if err := s.client.Set(ctx, s.jobKey(job.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store job %s: %w", job.ID, err)
	}

	return nil
}
