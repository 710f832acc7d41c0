// Package inprocess schedules verification jobs on goroutines within the
// serving process. No cross-process durability: jobs are lost on restart,
// which is the accepted trade-off for single-instance deployments.
package inprocess

import (
	"context"
	"log/slog"
	"sync"
	"time"

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

// Scheduler decides how the job body runs. The production scheduler is
// fire-and-forget on a goroutine; tests use a synchronous one so outcomes are
// observable without sleeping.
type Scheduler interface {
	Schedule(run func())
}

// GoScheduler runs each job on its own goroutine.
type GoScheduler struct{}

func (GoScheduler) Schedule(run func()) {
	go run()
}

// SyncScheduler runs the job inline before Schedule returns.
type SyncScheduler struct{}

func (SyncScheduler) Schedule(run func()) {
	run()
}

// Queue keeps job snapshots in memory and triggers exactly one processor run
// per enqueue.
type Queue struct {
	processor      jobs.Processor
	scheduler      Scheduler
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics

	mu        sync.RWMutex
	snapshots map[id.JobID]jobs.Snapshot
}

type Option func(*Queue)

func WithScheduler(scheduler Scheduler) Option {
	return func(q *Queue) {
		q.scheduler = scheduler
	}
}

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

func New(processor jobs.Processor, opts ...Option) *Queue {
	q := &Queue{
		processor: processor,
		scheduler: GoScheduler{},
		logger:    slog.Default(),
		snapshots: make(map[id.JobID]jobs.Snapshot),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// EnqueueTier1 records the job as QUEUED and hands it to the scheduler. The
// run itself uses a background context: the job must not die with the
// enqueueing request.
func (q *Queue) EnqueueTier1(_ context.Context, candidateID id.CandidateID) (jobs.Snapshot, error) {
	now := time.Now().UTC()
	snapshot := jobs.Snapshot{
		ID:          id.NewJobID(),
		CandidateID: candidateID,
		Status:      jobs.StatusQueued,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	q.mu.Lock()
	q.snapshots[snapshot.ID] = snapshot
	q.mu.Unlock()

	q.scheduler.Schedule(func() {
		q.run(snapshot.ID, candidateID)
	})
	return snapshot, nil
}

// GetJob returns the current snapshot for the id.
func (q *Queue) GetJob(_ context.Context, jobID id.JobID) (jobs.Snapshot, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	snapshot, ok := q.snapshots[jobID]
	if !ok {
		return jobs.Snapshot{}, sentinel.ErrNotFound
	}
	return snapshot, nil
}

func (q *Queue) run(jobID id.JobID, candidateID id.CandidateID) {
	ctx := context.Background()
	q.transition(jobID, jobs.StatusRunning, "")

	err := q.processor.Process(ctx, candidateID)
	if err != nil {
		q.logger.Error("verification job failed",
			"job_id", jobID,
			"candidate_id", candidateID,
			"error", err,
		)
		q.transition(jobID, jobs.StatusFailed, err.Error())
		q.reportFailure(ctx, jobID, candidateID, err)
		return
	}
	q.transition(jobID, jobs.StatusCompleted, "")
}

func (q *Queue) reportFailure(ctx context.Context, jobID id.JobID, candidateID id.CandidateID, cause error) {
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
			"job_id": jobID.String(),
			"error":  cause.Error(),
		},
	}
	if err := q.auditPublisher.Emit(ctx, event); err != nil {
		q.logger.Error("failed to record job failure audit event",
			"job_id", jobID,
			"error", err,
		)
	}
}

func (q *Queue) transition(jobID id.JobID, status jobs.Status, errMsg string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	snapshot, ok := q.snapshots[jobID]
	if !ok {
		return
	}
	snapshot.Status = status
	snapshot.Error = errMsg
	snapshot.UpdatedAt = time.Now().UTC()
	if status == jobs.StatusRunning {
		snapshot.Attempts++
	}
	q.snapshots[jobID] = snapshot
}
