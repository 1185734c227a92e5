package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStorage implements the queue repository interfaces on Postgres.
//
// Expected tables:
//
//	CREATE TABLE jobs (
//	    id            UUID PRIMARY KEY,
//	    queue         TEXT NOT NULL,
//	    name          TEXT NOT NULL,
//	    payload       JSONB,
//	    status        TEXT NOT NULL,
//	    attempts      SMALLINT NOT NULL DEFAULT 0,
//	    max_attempts  SMALLINT NOT NULL DEFAULT 3,
//	    backoff_kind  TEXT NOT NULL DEFAULT 'exponential',
//	    backoff_delay BIGINT NOT NULL DEFAULT 30000000000,
//	    scheduled_at  TIMESTAMPTZ NOT NULL,
//	    locked_until  TIMESTAMPTZ,
//	    locked_by     UUID,
//	    processed_at  TIMESTAMPTZ,
//	    error         TEXT,
//	    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE INDEX jobs_claim_idx ON jobs (queue, scheduled_at) WHERE status = 'pending';
//
//	CREATE TABLE dead_letter_jobs (
//	    id         UUID PRIMARY KEY,
//	    job_id     UUID NOT NULL,
//	    queue      TEXT NOT NULL,
//	    name       TEXT NOT NULL,
//	    payload    JSONB,
//	    error      TEXT NOT NULL DEFAULT '',
//	    attempts   SMALLINT NOT NULL,
//	    failed_at  TIMESTAMPTZ NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PGStorage struct {
	pool *pgxpool.Pool
}

// NewPGStorage creates a Postgres-backed job storage
func NewPGStorage(pool *pgxpool.Pool) (*PGStorage, error) {
	if pool == nil {
		return nil, ErrRepositoryNil
	}
	return &PGStorage{pool: pool}, nil
}

// CreateJob implements EnqueuerRepository
func (s *PGStorage) CreateJob(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO jobs (id, queue, name, payload, status, attempts, max_attempts,
			backoff_kind, backoff_delay, scheduled_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		job.ID, job.Queue, job.Name, job.Payload, job.Status, job.Attempts,
		job.MaxAttempts, job.Backoff.Kind, job.Backoff.Delay, job.ScheduledAt,
		job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store job %s: %w", job.ID, err)
	}

	return nil
}

// ClaimJob implements WorkerRepository. SKIP LOCKED keeps concurrent workers
// from contending on the same row; the scheduled_at ordering gives
// delay-then-FIFO claiming. Rows whose lock lapsed are reclaimed here too.
func (s *PGStorage) ClaimJob(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Job, error) {
	lockUntil := time.Now().Add(lockDuration)

	row := s.pool.QueryRow(ctx, `
		UPDATE jobs SET status = $1, locked_until = $2, locked_by = $3
		WHERE id = (
			SELECT id FROM jobs
			WHERE queue = ANY($4)
			  AND scheduled_at <= now()
			  AND (status = $5 OR (status = $1 AND locked_until < now()))
			ORDER BY scheduled_at
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING id, queue, name, payload, status, attempts, max_attempts,
			backoff_kind, backoff_delay, scheduled_at, locked_until, locked_by,
			processed_at, error, created_at`,
		JobStatusProcessing, lockUntil, workerID, queues, JobStatusPending,
	)

	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoJobToClaim
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}

	return job, nil
}

// GetJob returns the job with the given id.
func (s *PGStorage) GetJob(ctx context.Context, jobID uuid.UUID) (*Job, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, queue, name, payload, status, attempts, max_attempts,
			backoff_kind, backoff_delay, scheduled_at, locked_until, locked_by,
			processed_at, error, created_at
		FROM jobs WHERE id = $1`, jobID)

	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job %s: %w", jobID, err)
	}

	return job, nil
}

// CompleteJob implements WorkerRepository
func (s *PGStorage) CompleteJob(ctx context.Context, jobID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE jobs SET status = $1, processed_at = now(), locked_until = NULL, locked_by = NULL
		WHERE id = $2 AND status = $3`,
		JobStatusCompleted, jobID, JobStatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("failed to complete job %s: %w", jobID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s is not in processing state", jobID)
	}

	return nil
}

// FailJob implements WorkerRepository. The backoff delay is computed in SQL
// from the job's own policy columns.
func (s *PGStorage) FailJob(ctx context.Context, jobID uuid.UUID, errorMsg string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE jobs SET
			attempts = attempts + 1,
			error = $1,
			locked_until = NULL,
			locked_by = NULL,
			status = CASE WHEN attempts + 1 >= max_attempts THEN $2 ELSE $3 END,
			scheduled_at = CASE
				WHEN attempts + 1 >= max_attempts THEN scheduled_at
				WHEN backoff_kind = $4 THEN now() + make_interval(secs => backoff_delay / 1e9)
				ELSE now() + make_interval(secs => (backoff_delay / 1e9) * power(2, attempts))
			END
		WHERE id = $5 AND status = $6`,
		errorMsg, JobStatusFailed, JobStatusPending, BackoffFixed, jobID, JobStatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("failed to fail job %s: %w", jobID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s is not in processing state", jobID)
	}

	return nil
}

// MoveToDeadLetter implements WorkerRepository
func (s *PGStorage) MoveToDeadLetter(ctx context.Context, jobID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin dead letter move for job %s: %w", jobID, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		INSERT INTO dead_letter_jobs (id, job_id, queue, name, payload, error, attempts, failed_at)
		SELECT $1, id, queue, name, payload, COALESCE(error, ''), attempts, now()
		FROM jobs WHERE id = $2`,
		uuid.New(), jobID,
	)
	if err != nil {
		return fmt.Errorf("failed to archive job %s: %w", jobID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s not found", jobID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, jobID); err != nil {
		return fmt.Errorf("failed to delete job %s: %w", jobID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit dead letter move for job %s: %w", jobID, err)
	}

	return nil
}

// ExtendLock implements WorkerRepository
func (s *PGStorage) ExtendLock(ctx context.Context, jobID uuid.UUID, duration time.Duration) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE jobs SET locked_until = $1 WHERE id = $2 AND status = $3`,
		time.Now().Add(duration), jobID, JobStatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("failed to extend lock for job %s: %w", jobID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s is not in processing state", jobID)
	}

	return nil
}

func scanJob(row pgx.Row) (*Job, error) {
	var job Job
	err := row.Scan(
		&job.ID, &job.Queue, &job.Name, &job.Payload, &job.Status,
		&job.Attempts, &job.MaxAttempts, &job.Backoff.Kind, &job.Backoff.Delay,
		&job.ScheduledAt, &job.LockedUntil, &job.LockedBy, &job.ProcessedAt,
		&job.Error, &job.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}
