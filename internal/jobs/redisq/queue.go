// Package redisq backs the verification job queue with Redis so jobs survive
// process restarts. A pending list feeds a worker loop; each job's record
// lives in its own key and carries the attempt count for retries.
package redisq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"vetgate/internal/audit"
	"vetgate/internal/jobs"
	"vetgate/internal/platform/metrics"
	id "vetgate/pkg/domain"
	"vetgate/pkg/platform/sentinel"
)

// AuditPublisher receives job lifecycle events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

const (
	pendingKey   = "vetgate:verification:pending"
	jobKeyPrefix = "vetgate:verification:jobs:"

	// MaxRetries is how many processor attempts a job gets before it is
	// marked FAILED for good.
	MaxRetries = 3

	jobTTL      = 24 * time.Hour
	popTimeout  = time.Second
	retryDelay  = time.Second
)

// record is the JSON document stored per job. The status field is stored as
// raw text so a newer writer cannot crash an older reader; mapping back to
// the enum falls through to UNKNOWN.
type record struct {
	ID          string    `json:"id"`
	CandidateID string    `json:"candidate_id"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	Attempts    int       `json:"attempts"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Queue implements jobs.Queue on Redis.
type Queue struct {
	client         *redis.Client
	processor      jobs.Processor
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(*Queue)

func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) {
		q.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(q *Queue) {
		q.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(q *Queue) {
		q.metrics = m
	}
}

func New(client *redis.Client, processor jobs.Processor, opts ...Option) *Queue {
	q := &Queue{
		client:    client,
		processor: processor,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// EnqueueTier1 persists the job record and pushes its id onto the pending
// list. The snapshot is durable before the caller gets it back.
func (q *Queue) EnqueueTier1(ctx context.Context, candidateID id.CandidateID) (jobs.Snapshot, error) {
	now := time.Now().UTC()
	rec := record{
		ID:          id.NewJobID().String(),
		CandidateID: candidateID.String(),
		Status:      string(jobs.StatusQueued),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := q.save(ctx, rec); err != nil {
		return jobs.Snapshot{}, err
	}
	if err := q.client.LPush(ctx, pendingKey, rec.ID).Err(); err != nil {
		return jobs.Snapshot{}, fmt.Errorf("push job to pending list: %w", err)
	}
	return toSnapshot(rec)
}

// GetJob loads the job record.
func (q *Queue) GetJob(ctx context.Context, jobID id.JobID) (jobs.Snapshot, error) {
	rec, err := q.load(ctx, jobID.String())
	if err != nil {
		return jobs.Snapshot{}, err
	}
	return toSnapshot(rec)
}

// RunWorker claims jobs from the pending list until ctx is cancelled. Exactly
// one worker invocation processes each claimed job; a processor failure
// re-queues the job until its attempts are exhausted.
func (q *Queue) RunWorker(ctx context.Context) error {
	q.logger.Info("verification job worker started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		result, err := q.client.BRPop(ctx, popTimeout, pendingKey).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			q.logger.Error("failed to pop job from pending list", "error", err)
			time.Sleep(retryDelay)
			continue
		}
		if len(result) < 2 {
			continue
		}
		q.process(ctx, result[1])
	}
}

func (q *Queue) process(ctx context.Context, jobID string) {
	rec, err := q.load(ctx, jobID)
	if errors.Is(err, sentinel.ErrNotFound) {
		// Record expired while queued; nothing left to run against.
		q.logger.Warn("claimed job has no record", "job_id", jobID)
		return
	}
	if err != nil {
		q.logger.Error("failed to load claimed job", "job_id", jobID, "error", err)
		return
	}

	candidateID, err := id.ParseCandidateID(rec.CandidateID)
	if err != nil {
		rec.Status = string(jobs.StatusFailed)
		rec.Error = "job record corrupt: " + err.Error()
		rec.UpdatedAt = time.Now().UTC()
		_ = q.save(ctx, rec)
		return
	}

	rec.Status = string(jobs.StatusRunning)
	rec.Attempts++
	rec.UpdatedAt = time.Now().UTC()
	if err := q.save(ctx, rec); err != nil {
		q.logger.Error("failed to mark job running", "job_id", jobID, "error", err)
	}

	procErr := q.processor.Process(ctx, candidateID)
	rec.UpdatedAt = time.Now().UTC()

	switch {
	case procErr == nil:
		rec.Status = string(jobs.StatusCompleted)
		rec.Error = ""
	case rec.Attempts < MaxRetries:
		q.logger.Warn("verification job attempt failed; re-queueing",
			"job_id", jobID,
			"attempt", rec.Attempts,
			"error", procErr,
		)
		rec.Status = string(jobs.StatusQueued)
		rec.Error = procErr.Error()
		if err := q.save(ctx, rec); err != nil {
			q.logger.Error("failed to save re-queued job", "job_id", jobID, "error", err)
			return
		}
		if err := q.client.LPush(ctx, pendingKey, rec.ID).Err(); err != nil {
			q.logger.Error("failed to re-queue job", "job_id", jobID, "error", err)
		}
		return
	default:
		q.logger.Error("verification job exhausted retries",
			"job_id", jobID,
			"attempts", rec.Attempts,
			"error", procErr,
		)
		rec.Status = string(jobs.StatusFailed)
		rec.Error = procErr.Error()
		q.reportFailure(ctx, rec, candidateID, procErr)
	}

	if err := q.save(ctx, rec); err != nil {
		q.logger.Error("failed to save job outcome", "job_id", jobID, "error", err)
	}
}

func (q *Queue) reportFailure(ctx context.Context, rec record, candidateID id.CandidateID, cause error) {
	if q.metrics != nil {
		q.metrics.JobsFailed.Inc()
	}
	if q.auditPublisher == nil {
		return
	}
	event := audit.Event{
		Type:        audit.EventJobFailed,
		CandidateID: candidateID,
		Payload: map[string]string{
			"job_id":   rec.ID,
			"attempts": strconv.Itoa(rec.Attempts),
			"error":    cause.Error(),
		},
	}
	if err := q.auditPublisher.Emit(ctx, event); err != nil {
		q.logger.Error("failed to record job failure audit event",
			"job_id", rec.ID,
			"error", err,
		)
	}
}

func (q *Queue) save(ctx context.Context, rec record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal job record: %w", err)
	}
	if err := q.client.Set(ctx, jobKeyPrefix+rec.ID, raw, jobTTL).Err(); err != nil {
		return fmt.Errorf("store job record: %w", err)
	}
	return nil
}

func (q *Queue) load(ctx context.Context, jobID string) (record, error) {
	raw, err := q.client.Get(ctx, jobKeyPrefix+jobID).Bytes()
	if errors.Is(err, redis.Nil) {
		return record{}, sentinel.ErrNotFound
	}
	if err != nil {
		return record{}, fmt.Errorf("load job record: %w", err)
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return record{}, fmt.Errorf("decode job record: %w", err)
	}
	return rec, nil
}

func toSnapshot(rec record) (jobs.Snapshot, error) {
	jobID, err := id.ParseJobID(rec.ID)
	if err != nil {
		return jobs.Snapshot{}, fmt.Errorf("stored job id invalid: %w", err)
	}
	candidateID, err := id.ParseCandidateID(rec.CandidateID)
	if err != nil {
		return jobs.Snapshot{}, fmt.Errorf("stored candidate id invalid: %w", err)
	}
	return jobs.Snapshot{
		ID:          jobID,
		CandidateID: candidateID,
		Status:      parseStatus(rec.Status),
		Error:       rec.Error,
		Attempts:    rec.Attempts,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}, nil
}

// parseStatus maps stored state onto the status enum, falling through to
// UNKNOWN for anything unrecognized.
func parseStatus(raw string) jobs.Status {
	switch jobs.Status(raw) {
	case jobs.StatusQueued, jobs.StatusRunning, jobs.StatusCompleted, jobs.StatusFailed:
		return jobs.Status(raw)
	default:
		return jobs.StatusUnknown
	}
}
