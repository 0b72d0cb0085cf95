package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wanderlist/wanderlist/internal/database"
	logpkg "github.com/wanderlist/wanderlist/internal/logger"
	"github.com/wanderlist/wanderlist/internal/queue"
)

// JobProcessor processes a single job.
type JobProcessor func(ctx context.Context, job *queue.Job) error

type processorEntry struct {
	proc JobProcessor
}

// PreferenceAnalyzer processes preference analysis jobs to aggregate
// per-category interaction statistics from a user's saved places.
type PreferenceAnalyzer struct {
	prefRepo     database.PreferenceRepositoryInterface
	activityRepo database.UserActivityRepositoryInterface
	logger       *zap.Logger
	registry     map[queue.JobType]processorEntry
}

// NewPreferenceAnalyzer creates a new preference analyzer and registers
// processors for both analysis job types.
func NewPreferenceAnalyzer(
	prefRepo database.PreferenceRepositoryInterface,
	activityRepo database.UserActivityRepositoryInterface,
	logger *zap.Logger,
) *PreferenceAnalyzer {
	a := &PreferenceAnalyzer{
		prefRepo:     prefRepo,
		activityRepo: activityRepo,
		logger:       logger,
		registry:     make(map[queue.JobType]processorEntry),
	}
	a.RegisterProcessor(queue.JobTypePreferenceAnalysis, a.ProcessPreferenceAnalysisJob)
	a.RegisterProcessor(queue.JobTypeReanalyzeUser, a.ProcessReanalyzeUserJob)
	return a
}

// RegisterProcessor registers a processor for a job type.
func (a *PreferenceAnalyzer) RegisterProcessor(typ queue.JobType, proc JobProcessor) {
	a.registry[typ] = processorEntry{proc: proc}
}

// ProcessPreferenceAnalysisJob recomputes a user's preference statistics.
// A version conflict means another worker finished first; the job is
// considered done either way.
func (a *PreferenceAnalyzer) ProcessPreferenceAnalysisJob(ctx context.Context, job *queue.Job) error {
	if job.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required for preference analysis job")
	}
	a.logger.Info("processing_preference_analysis_job",
		zap.String("job_id", logpkg.SanitizeUserID(job.ID.String())),
		zap.String("user_id", logpkg.SanitizeUserID(job.UserID.String())),
	)

	return a.analyzeUser(ctx, job.UserID)
}

// ProcessReanalyzeUserJob forces a full reanalysis for a user. Skipped when
// background analysis is paused for inactivity.
func (a *PreferenceAnalyzer) ProcessReanalyzeUserJob(ctx context.Context, job *queue.Job) error {
	if job.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required for reanalyze job")
	}

	activity, err := a.activityRepo.GetByUserID(ctx, job.UserID)
	if err == nil && activity != nil && activity.AnalysisPaused {
		a.logger.Debug("skipping_reanalysis_paused_user",
			zap.String("user_id", logpkg.SanitizeUserID(job.UserID.String())),
		)
		return nil
	}

	return a.analyzeUser(ctx, job.UserID)
}

func (a *PreferenceAnalyzer) analyzeUser(ctx context.Context, userID uuid.UUID) error {
	stats, err := a.prefRepo.GetByUserIDOrCreate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get or create preference statistics: %w", err)
	}
	a.logger.Debug("preference_statistics_status",
		zap.String("user_id", logpkg.SanitizeUserID(userID.String())),
		zap.Bool("tainted", stats.Tainted),
		zap.Int("existing_types", len(stats.TypeCounts)),
	)

	typeCounts, err := a.prefRepo.AggregateTypeCounts(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to aggregate type counts: %w", err)
	}
	a.logger.Info("aggregated_preference_statistics",
		zap.String("user_id", logpkg.SanitizeUserID(userID.String())),
		zap.Int("unique_types", len(typeCounts)),
	)

	stats.TypeCounts = typeCounts
	now := time.Now()
	stats.LastAnalyzedAt = &now
	updated, err := a.prefRepo.UpdateStatistics(ctx, stats)
	if err != nil {
		return fmt.Errorf("failed to update preference statistics: %w", err)
	}
	if !updated {
		a.logger.Debug("preference_statistics_version_conflict",
			zap.String("user_id", logpkg.SanitizeUserID(userID.String())),
		)
		return nil
	}

	a.logger.Info("successfully_analyzed_preferences",
		zap.String("user_id", logpkg.SanitizeUserID(userID.String())),
		zap.Int("unique_types", len(typeCounts)),
	)
	return nil
}

// ProcessJob processes a job based on its type using the processor registry.
func (a *PreferenceAnalyzer) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()
	if !job.ShouldProcess() {
		fields := []zap.Field{zap.String("job_id", logpkg.SanitizeUserID(job.ID.String()))}
		if job.NotBefore != nil {
			fields = append(fields, zap.Time("not_before", *job.NotBefore))
		}
		a.logger.Debug("preference_job_not_ready", fields...)
		if ackErr := msg.Ack(); ackErr != nil {
			a.logger.Warn("failed_to_ack_job_for_later_processing",
				zap.String("job_id", logpkg.SanitizeUserID(job.ID.String())),
				zap.String("error", logpkg.SanitizeError(ackErr)),
			)
		}
		return nil
	}
	ent, ok := a.registry[job.Type]
	if !ok {
		if nackErr := msg.Nack(false); nackErr != nil {
			a.logger.Error("failed_to_nack_unknown_job_type",
				zap.String("job_id", logpkg.SanitizeUserID(job.ID.String())),
				zap.String("job_type", string(job.Type)),
				zap.String("error", logpkg.SanitizeError(nackErr)),
			)
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	if err := ent.proc(ctx, job); err != nil {
		a.logger.Error("preference_job_failed",
			zap.String("operation", "process_job"),
			zap.String("job_id", logpkg.SanitizeUserID(job.ID.String())),
			zap.String("user_id", logpkg.SanitizeUserID(job.UserID.String())),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		if job.CanRetry() {
			job.IncrementRetry()
			if nackErr := msg.Nack(true); nackErr != nil {
				a.logger.Warn("failed_to_nack_preference_job",
					zap.String("job_id", logpkg.SanitizeUserID(job.ID.String())),
					zap.String("error", logpkg.SanitizeError(nackErr)),
				)
			}
			return fmt.Errorf("preference analysis failed (will retry): %w", err)
		}
		if nackErr := msg.Nack(false); nackErr != nil {
			a.logger.Warn("failed_to_nack_preference_job_to_dlq",
				zap.String("job_id", logpkg.SanitizeUserID(job.ID.String())),
				zap.String("error", logpkg.SanitizeError(nackErr)),
			)
		}
		return fmt.Errorf("preference analysis failed (max retries): %w", err)
	}
	if ackErr := msg.Ack(); ackErr != nil {
		return fmt.Errorf("failed to ack preference job: %w", ackErr)
	}
	return nil
}
