package workers

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wanderlist/wanderlist/internal/queue"
)

// mockJobQueue records enqueued jobs for scheduler tests
type mockJobQueue struct {
	mu          sync.Mutex
	enqueued    []*queue.Job
	enqueueFunc func(ctx context.Context, job *queue.Job) error
}

func (m *mockJobQueue) Enqueue(ctx context.Context, job *queue.Job) error {
	m.mu.Lock()
	m.enqueued = append(m.enqueued, job)
	m.mu.Unlock()
	if m.enqueueFunc != nil {
		return m.enqueueFunc(ctx, job)
	}
	return nil
}

func (m *mockJobQueue) Consume(ctx context.Context, prefetchCount int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, errors.New("not implemented")
}

func (m *mockJobQueue) Close() error { return nil }

func (m *mockJobQueue) HealthCheck(ctx context.Context) error { return nil }

var _ queue.JobQueue = (*mockJobQueue)(nil)

func TestReanalyzer_ScheduleReanalysisJobs(t *testing.T) {
	t.Parallel()

	users := []uuid.UUID{uuid.New(), uuid.New()}
	activityRepo := &mockActivityRepoForWorker{
		t: t,
		eligibleFunc: func(ctx context.Context) ([]uuid.UUID, error) {
			return users, nil
		},
	}
	jobQueue := &mockJobQueue{}

	r := NewReanalyzer(jobQueue, activityRepo, zap.NewNop())
	if err := r.ScheduleReanalysisJobs(context.Background()); err != nil {
		t.Fatalf("ScheduleReanalysisJobs: %v", err)
	}

	// Morning and evening jobs for each user
	if len(jobQueue.enqueued) != 4 {
		t.Fatalf("expected 4 jobs, got %d", len(jobQueue.enqueued))
	}
	for _, job := range jobQueue.enqueued {
		if job.Type != queue.JobTypeReanalyzeUser {
			t.Errorf("expected reanalyze job type, got %s", job.Type)
		}
		if job.NotBefore == nil {
			t.Error("expected NotBefore to be set on scheduled jobs")
		}
		if job.NotAfter == nil {
			t.Error("expected NotAfter to be set on scheduled jobs")
		}
		if job.NotBefore != nil && job.NotAfter != nil && !job.NotAfter.After(*job.NotBefore) {
			t.Error("NotAfter should be after NotBefore")
		}
	}
}

func TestReanalyzer_ScheduleReanalysisJobs_EligibleUsersError(t *testing.T) {
	t.Parallel()

	activityRepo := &mockActivityRepoForWorker{
		t: t,
		eligibleFunc: func(ctx context.Context) ([]uuid.UUID, error) {
			return nil, errors.New("query failed")
		},
	}

	r := NewReanalyzer(&mockJobQueue{}, activityRepo, zap.NewNop())
	if err := r.ScheduleReanalysisJobs(context.Background()); err == nil {
		t.Error("expected error when eligible user lookup fails")
	}
}

func TestReanalyzer_ScheduleReanalysisJobs_ContinuesOnEnqueueError(t *testing.T) {
	t.Parallel()

	users := []uuid.UUID{uuid.New(), uuid.New()}
	activityRepo := &mockActivityRepoForWorker{
		t: t,
		eligibleFunc: func(ctx context.Context) ([]uuid.UUID, error) {
			return users, nil
		},
	}
	failFirst := true
	jobQueue := &mockJobQueue{
		enqueueFunc: func(ctx context.Context, job *queue.Job) error {
			if failFirst {
				failFirst = false
				return errors.New("broker unavailable")
			}
			return nil
		},
	}

	r := NewReanalyzer(jobQueue, activityRepo, zap.NewNop())
	if err := r.ScheduleReanalysisJobs(context.Background()); err != nil {
		t.Fatalf("a single enqueue failure should not abort scheduling: %v", err)
	}
	if len(jobQueue.enqueued) != 4 {
		t.Errorf("expected all 4 enqueue attempts, got %d", len(jobQueue.enqueued))
	}
}
