package middleware

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/wanderlist/wanderlist/internal/database"
	logpkg "github.com/wanderlist/wanderlist/internal/logger"
)

// ActivityTracking records user API activity so the reanalysis scheduler
// knows which accounts are still live.
func ActivityTracking(activityRepo *database.UserActivityRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Only track activity for authenticated requests
			user := UserFromContext(r)
			if user != nil {
				if err := activityRepo.UpdateLastInteraction(r.Context(), user.ID); err != nil {
					// Don't fail the request if activity tracking fails
					logger.Warn("failed_to_update_user_activity",
						zap.String("user_id", logpkg.SanitizeUserID(user.ID.String())),
						zap.Error(err),
					)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ActivityTracker periodically pauses analysis for inactive users.
type ActivityTracker struct {
	activityRepo  *database.UserActivityRepository
	logger        *zap.Logger
	checkInterval time.Duration
}

// NewActivityTracker creates a new activity tracker
func NewActivityTracker(activityRepo *database.UserActivityRepository, logger *zap.Logger) *ActivityTracker {
	return &ActivityTracker{
		activityRepo:  activityRepo,
		logger:        logger,
		checkInterval: 1 * time.Hour,
	}
}

// Start runs the inactivity check loop until ctx is cancelled.
func (at *ActivityTracker) Start(ctx context.Context) {
	ticker := time.NewTicker(at.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			usersToPause, err := at.activityRepo.GetUsersNeedingAnalysisPause(ctx)
			if err != nil {
				at.logger.Warn("failed_to_check_users_needing_pause", zap.Error(err))
				continue
			}

			for _, userID := range usersToPause {
				if err := at.activityRepo.SetAnalysisPaused(ctx, userID, true); err != nil {
					at.logger.Warn("failed_to_pause_analysis_for_user",
						zap.String("user_id", logpkg.SanitizeUserID(userID.String())),
						zap.Error(err),
					)
				}
			}
		}
	}
}
