package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wanderlist/wanderlist/internal/database"
	"github.com/wanderlist/wanderlist/internal/models"
	"github.com/wanderlist/wanderlist/internal/queue"
)

// mockPreferenceRepoForWorker is a mock for testing the preference analyzer worker
type mockPreferenceRepoForWorker struct {
	t                       *testing.T
	getByUserIDFunc         func(ctx context.Context, userID uuid.UUID) (*models.PreferenceStatistics, error)
	getByUserIDOrCreateFunc func(ctx context.Context, userID uuid.UUID) (*models.PreferenceStatistics, error)
	getInteractionCounts    func(ctx context.Context, userID uuid.UUID) (map[string]int, error)
	updateStatisticsFunc    func(ctx context.Context, stats *models.PreferenceStatistics) (bool, error)
	markTaintedFunc         func(ctx context.Context, userID uuid.UUID) (bool, error)
	aggregateTypeCountsFunc func(ctx context.Context, userID uuid.UUID) (map[string]int, error)

	// Call tracking (protected by mutex for concurrent access)
	mu                       sync.Mutex
	getByUserIDOrCreateCalls []uuid.UUID
	updateStatisticsCalls    []*models.PreferenceStatistics
	aggregateCalls           []uuid.UUID
}

func (m *mockPreferenceRepoForWorker) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.PreferenceStatistics, error) {
	if m.getByUserIDFunc == nil {
		m.t.Fatal("GetByUserID called but not configured in test - mock requires explicit setup")
	}
	return m.getByUserIDFunc(ctx, userID)
}

func (m *mockPreferenceRepoForWorker) GetByUserIDOrCreate(ctx context.Context, userID uuid.UUID) (*models.PreferenceStatistics, error) {
	m.mu.Lock()
	m.getByUserIDOrCreateCalls = append(m.getByUserIDOrCreateCalls, userID)
	m.mu.Unlock()
	if m.getByUserIDOrCreateFunc == nil {
		m.t.Fatal("GetByUserIDOrCreate called but not configured in test - mock requires explicit setup")
	}
	return m.getByUserIDOrCreateFunc(ctx, userID)
}

func (m *mockPreferenceRepoForWorker) GetInteractionCounts(ctx context.Context, userID uuid.UUID) (map[string]int, error) {
	if m.getInteractionCounts == nil {
		m.t.Fatal("GetInteractionCounts called but not configured in test - mock requires explicit setup")
	}
	return m.getInteractionCounts(ctx, userID)
}

func (m *mockPreferenceRepoForWorker) UpdateStatistics(ctx context.Context, stats *models.PreferenceStatistics) (bool, error) {
	m.mu.Lock()
	m.updateStatisticsCalls = append(m.updateStatisticsCalls, stats)
	m.mu.Unlock()
	if m.updateStatisticsFunc == nil {
		m.t.Fatal("UpdateStatistics called but not configured in test - mock requires explicit setup")
	}
	return m.updateStatisticsFunc(ctx, stats)
}

func (m *mockPreferenceRepoForWorker) MarkTainted(ctx context.Context, userID uuid.UUID) (bool, error) {
	if m.markTaintedFunc == nil {
		m.t.Fatal("MarkTainted called but not configured in test - mock requires explicit setup")
	}
	return m.markTaintedFunc(ctx, userID)
}

func (m *mockPreferenceRepoForWorker) AggregateTypeCounts(ctx context.Context, userID uuid.UUID) (map[string]int, error) {
	m.mu.Lock()
	m.aggregateCalls = append(m.aggregateCalls, userID)
	m.mu.Unlock()
	if m.aggregateTypeCountsFunc == nil {
		m.t.Fatal("AggregateTypeCounts called but not configured in test - mock requires explicit setup")
	}
	return m.aggregateTypeCountsFunc(ctx, userID)
}

var _ database.PreferenceRepositoryInterface = (*mockPreferenceRepoForWorker)(nil)

// mockActivityRepoForWorker is a mock for testing worker activity checks
type mockActivityRepoForWorker struct {
	t               *testing.T
	getByUserIDFunc func(ctx context.Context, userID uuid.UUID) (*models.UserActivity, error)
	eligibleFunc    func(ctx context.Context) ([]uuid.UUID, error)
}

func (m *mockActivityRepoForWorker) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserActivity, error) {
	if m.getByUserIDFunc == nil {
		m.t.Fatal("GetByUserID called but not configured in test - mock requires explicit setup")
	}
	return m.getByUserIDFunc(ctx, userID)
}

func (m *mockActivityRepoForWorker) UpdateLastInteraction(ctx context.Context, userID uuid.UUID) error {
	return nil
}

func (m *mockActivityRepoForWorker) GetEligibleUsersForReanalysis(ctx context.Context) ([]uuid.UUID, error) {
	if m.eligibleFunc == nil {
		m.t.Fatal("GetEligibleUsersForReanalysis called but not configured in test - mock requires explicit setup")
	}
	return m.eligibleFunc(ctx)
}

var _ database.UserActivityRepositoryInterface = (*mockActivityRepoForWorker)(nil)

// mockMessage implements queue.MessageInterface for worker tests
type mockMessage struct {
	job    *queue.Job
	acked  bool
	nacked bool
	requeue bool
}

func (m *mockMessage) Ack() error {
	m.acked = true
	return nil
}

func (m *mockMessage) Nack(requeue bool) error {
	m.nacked = true
	m.requeue = requeue
	return nil
}

func (m *mockMessage) GetJob() *queue.Job {
	return m.job
}

func TestPreferenceAnalyzer_ProcessPreferenceAnalysisJob_Success(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	stats := &models.PreferenceStatistics{
		UserID:          userID,
		TypeCounts:      make(map[string]int),
		Tainted:         true,
		AnalysisVersion: 2,
	}
	aggregated := map[string]int{"restaurants": 15, "museums": 3}

	mockPrefRepo := &mockPreferenceRepoForWorker{
		t: t,
		getByUserIDOrCreateFunc: func(ctx context.Context, uid uuid.UUID) (*models.PreferenceStatistics, error) {
			if uid != userID {
				t.Errorf("GetByUserIDOrCreate called with wrong userID: expected %s, got %s", userID, uid)
			}
			return stats, nil
		},
		aggregateTypeCountsFunc: func(ctx context.Context, uid uuid.UUID) (map[string]int, error) {
			return aggregated, nil
		},
		updateStatisticsFunc: func(ctx context.Context, s *models.PreferenceStatistics) (bool, error) {
			if s.TypeCounts["restaurants"] != 15 {
				t.Errorf("expected aggregated counts in update, got %v", s.TypeCounts)
			}
			if s.LastAnalyzedAt == nil {
				t.Error("expected LastAnalyzedAt to be set before update")
			}
			return true, nil
		},
	}

	analyzer := NewPreferenceAnalyzer(mockPrefRepo, &mockActivityRepoForWorker{t: t}, zap.NewNop())

	job := queue.NewJob(queue.JobTypePreferenceAnalysis, userID, nil)
	if err := analyzer.ProcessPreferenceAnalysisJob(context.Background(), job); err != nil {
		t.Fatalf("ProcessPreferenceAnalysisJob: %v", err)
	}

	if len(mockPrefRepo.aggregateCalls) != 1 {
		t.Errorf("expected 1 aggregate call, got %d", len(mockPrefRepo.aggregateCalls))
	}
	if len(mockPrefRepo.updateStatisticsCalls) != 1 {
		t.Errorf("expected 1 update call, got %d", len(mockPrefRepo.updateStatisticsCalls))
	}
}

func TestPreferenceAnalyzer_ProcessPreferenceAnalysisJob_VersionConflict(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	mockPrefRepo := &mockPreferenceRepoForWorker{
		t: t,
		getByUserIDOrCreateFunc: func(ctx context.Context, uid uuid.UUID) (*models.PreferenceStatistics, error) {
			return &models.PreferenceStatistics{UserID: uid, TypeCounts: map[string]int{}}, nil
		},
		aggregateTypeCountsFunc: func(ctx context.Context, uid uuid.UUID) (map[string]int, error) {
			return map[string]int{"coffee": 4}, nil
		},
		updateStatisticsFunc: func(ctx context.Context, s *models.PreferenceStatistics) (bool, error) {
			// Another worker finished first
			return false, nil
		},
	}

	analyzer := NewPreferenceAnalyzer(mockPrefRepo, &mockActivityRepoForWorker{t: t}, zap.NewNop())

	job := queue.NewJob(queue.JobTypePreferenceAnalysis, userID, nil)
	if err := analyzer.ProcessPreferenceAnalysisJob(context.Background(), job); err != nil {
		t.Fatalf("version conflict should not be an error: %v", err)
	}
}

func TestPreferenceAnalyzer_ProcessPreferenceAnalysisJob_MissingUserID(t *testing.T) {
	t.Parallel()

	analyzer := NewPreferenceAnalyzer(&mockPreferenceRepoForWorker{t: t}, &mockActivityRepoForWorker{t: t}, zap.NewNop())

	job := &queue.Job{ID: uuid.New(), Type: queue.JobTypePreferenceAnalysis}
	if err := analyzer.ProcessPreferenceAnalysisJob(context.Background(), job); err == nil {
		t.Error("expected error for missing user_id")
	}
}

func TestPreferenceAnalyzer_ProcessReanalyzeUserJob_SkipsPausedUser(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	mockPrefRepo := &mockPreferenceRepoForWorker{t: t}
	mockActivityRepo := &mockActivityRepoForWorker{
		t: t,
		getByUserIDFunc: func(ctx context.Context, uid uuid.UUID) (*models.UserActivity, error) {
			return &models.UserActivity{UserID: uid, AnalysisPaused: true}, nil
		},
	}

	analyzer := NewPreferenceAnalyzer(mockPrefRepo, mockActivityRepo, zap.NewNop())

	job := queue.NewJob(queue.JobTypeReanalyzeUser, userID, nil)
	if err := analyzer.ProcessReanalyzeUserJob(context.Background(), job); err != nil {
		t.Fatalf("paused user should be skipped without error: %v", err)
	}
	if len(mockPrefRepo.aggregateCalls) != 0 {
		t.Error("analysis should not run for a paused user")
	}
}

func TestPreferenceAnalyzer_ProcessJob_AcksOnSuccess(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	mockPrefRepo := &mockPreferenceRepoForWorker{
		t: t,
		getByUserIDOrCreateFunc: func(ctx context.Context, uid uuid.UUID) (*models.PreferenceStatistics, error) {
			return &models.PreferenceStatistics{UserID: uid, TypeCounts: map[string]int{}}, nil
		},
		aggregateTypeCountsFunc: func(ctx context.Context, uid uuid.UUID) (map[string]int, error) {
			return map[string]int{}, nil
		},
		updateStatisticsFunc: func(ctx context.Context, s *models.PreferenceStatistics) (bool, error) {
			return true, nil
		},
	}

	analyzer := NewPreferenceAnalyzer(mockPrefRepo, &mockActivityRepoForWorker{t: t}, zap.NewNop())

	msg := &mockMessage{job: queue.NewJob(queue.JobTypePreferenceAnalysis, userID, nil)}
	if err := analyzer.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob: %v", err)
	}
	if !msg.acked {
		t.Error("expected message to be acked")
	}
	if msg.nacked {
		t.Error("message should not be nacked on success")
	}
}

func TestPreferenceAnalyzer_ProcessJob_RetriesOnFailure(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	mockPrefRepo := &mockPreferenceRepoForWorker{
		t: t,
		getByUserIDOrCreateFunc: func(ctx context.Context, uid uuid.UUID) (*models.PreferenceStatistics, error) {
			return nil, errors.New("database unavailable")
		},
	}

	analyzer := NewPreferenceAnalyzer(mockPrefRepo, &mockActivityRepoForWorker{t: t}, zap.NewNop())

	msg := &mockMessage{job: queue.NewJob(queue.JobTypePreferenceAnalysis, userID, nil)}
	if err := analyzer.ProcessJob(context.Background(), msg); err == nil {
		t.Error("expected error from failed processing")
	}
	if !msg.nacked || !msg.requeue {
		t.Error("expected message to be nacked with requeue for a retryable failure")
	}
}

func TestPreferenceAnalyzer_ProcessJob_DeadLettersAfterMaxRetries(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	mockPrefRepo := &mockPreferenceRepoForWorker{
		t: t,
		getByUserIDOrCreateFunc: func(ctx context.Context, uid uuid.UUID) (*models.PreferenceStatistics, error) {
			return nil, fmt.Errorf("database unavailable")
		},
	}

	analyzer := NewPreferenceAnalyzer(mockPrefRepo, &mockActivityRepoForWorker{t: t}, zap.NewNop())

	job := queue.NewJob(queue.JobTypePreferenceAnalysis, userID, nil)
	job.RetryCount = job.MaxRetries
	msg := &mockMessage{job: job}

	if err := analyzer.ProcessJob(context.Background(), msg); err == nil {
		t.Error("expected error after max retries")
	}
	if !msg.nacked || msg.requeue {
		t.Error("expected message to be nacked without requeue after max retries")
	}
}

func TestPreferenceAnalyzer_ProcessJob_UnknownJobType(t *testing.T) {
	t.Parallel()

	analyzer := NewPreferenceAnalyzer(&mockPreferenceRepoForWorker{t: t}, &mockActivityRepoForWorker{t: t}, zap.NewNop())

	msg := &mockMessage{job: queue.NewJob(queue.JobType("mystery"), uuid.New(), nil)}
	if err := analyzer.ProcessJob(context.Background(), msg); err == nil {
		t.Error("expected error for unknown job type")
	}
	if !msg.nacked || msg.requeue {
		t.Error("unknown job types should be dead lettered")
	}
}
