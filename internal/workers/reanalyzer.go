package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wanderlist/wanderlist/internal/database"
	"github.com/wanderlist/wanderlist/internal/queue"
)

// Reanalyzer schedules periodic preference reanalysis jobs
type Reanalyzer struct {
	jobQueue     queue.JobQueue
	activityRepo database.UserActivityRepositoryInterface
	logger       *zap.Logger
}

// NewReanalyzer creates a new reanalyzer
func NewReanalyzer(jobQueue queue.JobQueue, activityRepo database.UserActivityRepositoryInterface, logger *zap.Logger) *Reanalyzer {
	return &Reanalyzer{
		jobQueue:     jobQueue,
		activityRepo: activityRepo,
		logger:       logger,
	}
}

// ScheduleReanalysisJobs creates reanalysis jobs for eligible users (2x/day,
// 08:00 and 20:00 server time)
func (r *Reanalyzer) ScheduleReanalysisJobs(ctx context.Context) error {
	now := time.Now()
	nextMorning := time.Date(now.Year(), now.Month(), now.Day(), 8, 0, 0, 0, now.Location())
	nextEvening := time.Date(now.Year(), now.Month(), now.Day(), 20, 0, 0, 0, now.Location())

	if now.After(nextMorning) {
		nextMorning = nextMorning.Add(24 * time.Hour)
	}
	if now.After(nextEvening) {
		nextEvening = nextEvening.Add(24 * time.Hour)
	}

	eligibleUsers, err := r.GetEligibleUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to get eligible users: %w", err)
	}

	for _, userID := range eligibleUsers {
		if err := r.createReanalysisJob(ctx, userID, nextMorning); err != nil {
			r.logger.Warn("failed_to_schedule_morning_reanalysis_job",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			// Continue with other users
		}

		if err := r.createReanalysisJob(ctx, userID, nextEvening); err != nil {
			r.logger.Warn("failed_to_schedule_evening_reanalysis_job",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			// Continue with other users
		}
	}

	r.logger.Info("scheduled_reanalysis_jobs",
		zap.Int("user_count", len(eligibleUsers)),
		zap.Time("next_morning", nextMorning),
		zap.Time("next_evening", nextEvening),
	)

	return nil
}

// createReanalysisJob creates a reanalysis job for a user
func (r *Reanalyzer) createReanalysisJob(ctx context.Context, userID uuid.UUID, notBefore time.Time) error {
	job := queue.NewJob(queue.JobTypeReanalyzeUser, userID, nil)
	job.NotBefore = &notBefore

	// Expire unprocessed jobs a day after their scheduled time
	notAfter := notBefore.Add(24 * time.Hour)
	job.NotAfter = &notAfter

	if err := r.jobQueue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue reanalysis job: %w", err)
	}

	return nil
}

// GetEligibleUsers returns users who are eligible for reanalysis
// (background analysis not paused)
func (r *Reanalyzer) GetEligibleUsers(ctx context.Context) ([]uuid.UUID, error) {
	return r.activityRepo.GetEligibleUsersForReanalysis(ctx)
}
