package middleware

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wanderlist/wanderlist/internal/database"
	logpkg "github.com/wanderlist/wanderlist/internal/logger"
	"github.com/wanderlist/wanderlist/internal/models"
	"github.com/wanderlist/wanderlist/internal/request"
	"github.com/wanderlist/wanderlist/internal/services/session"
)

// UserFromContext extracts the user from the request context
func UserFromContext(r *http.Request) *models.User {
	return request.UserFromContext(r)
}

// Auth creates authentication middleware that validates session tokens and
// loads (or provisions) the matching user. A first verified token creates
// the account together with its default list.
func Auth(db *database.DB, verifier *session.Verifier, jwksURL string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := verifyRequestToken(w, r, verifier, jwksURL, logger)
			if !ok {
				return
			}

			ctx := r.Context()
			userRepo := database.NewUserRepository(db)
			userID, err := uuid.Parse(claims.Sub)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "Invalid subject claim", logger)
				return
			}

			user, err := userRepo.GetByID(ctx, userID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					user = &models.User{
						ID:            userID,
						Username:      claims.Username,
						Email:         claims.Email,
						EmailVerified: true,
					}
					if err := userRepo.Create(ctx, user); err != nil {
						logger.Error("failed_to_provision_user",
							zap.String("user_id", logpkg.SanitizeUserID(userID.String())),
							zap.Error(err),
						)
						respondError(w, http.StatusInternalServerError, "Failed to create user", logger)
						return
					}
				} else {
					logger.Error("database_error_fetching_user",
						zap.String("user_id", logpkg.SanitizeUserID(userID.String())),
						zap.Error(err),
					)
					respondError(w, http.StatusInternalServerError, "Database error", logger)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(request.WithUser(ctx, user)))
		})
	}
}

// OptionalAuth attaches the user when a valid token is present but lets
// anonymous requests through. Suggestions work without an account; they
// just degrade to default sets.
func OptionalAuth(db *database.DB, verifier *session.Verifier, jwksURL string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, ok := bearerToken(authHeader)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			claims, err := verifier.Verify(ctx, tokenString, jwksURL)
			if err != nil {
				logger.Debug("optional_auth_token_rejected", zap.String("error", logpkg.SanitizeError(err)))
				next.ServeHTTP(w, r)
				return
			}

			userID, err := uuid.Parse(claims.Sub)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			user, err := database.NewUserRepository(db).GetByID(ctx, userID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(request.WithUser(ctx, user)))
		})
	}
}

func verifyRequestToken(w http.ResponseWriter, r *http.Request, verifier *session.Verifier, jwksURL string, logger *zap.Logger) (*models.SessionClaims, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		respondError(w, http.StatusUnauthorized, "Missing Authorization header", logger)
		return nil, false
	}

	tokenString, ok := bearerToken(authHeader)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Invalid Authorization header format", logger)
		return nil, false
	}

	claims, err := verifier.Verify(r.Context(), tokenString, jwksURL)
	if err != nil {
		logger.Info("token_verification_failed", zap.String("error", logpkg.SanitizeError(err)))
		respondError(w, http.StatusUnauthorized, "Invalid or expired token", logger)
		return nil, false
	}
	return claims, true
}

func bearerToken(authHeader string) (string, bool) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

func respondError(w http.ResponseWriter, status int, message string, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success": false,
		"error":   message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil && logger != nil {
		logger.Warn("failed_to_encode_error_response", zap.Error(err))
	}
}
