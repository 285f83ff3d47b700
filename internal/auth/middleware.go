package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/caliberhq/question-bank/internal/models"
	"github.com/caliberhq/question-bank/internal/service"
)

type contextKey string

const (
	userIDKey contextKey = "auth.user_id"
	userKey   contextKey = "auth.user"
)

// Middleware authenticates every request with a bearer token and loads (or
// lazily creates) the matching user row, so handlers always see an account.
type Middleware struct {
	resolver Resolver
	users    service.UserService
	logger   zerolog.Logger
}

func NewMiddleware(resolver Resolver, users service.UserService, logger zerolog.Logger) *Middleware {
	return &Middleware{
		resolver: resolver,
		users:    users,
		logger:   logger,
	}
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			unauthorized(w, "missing bearer token")
			return
		}

		identity, err := m.resolver.Resolve(token)
		if err != nil {
			m.logger.Debug().Err(err).Msg("Token resolution failed")
			unauthorized(w, "invalid or expired token")
			return
		}

		user, err := m.users.GetOrCreate(r.Context(), identity.UserID, identity.Email)
		if err != nil {
			m.logger.Error().Err(err).Str("user_id", identity.UserID).Msg("Failed to load authenticated user")
			unauthorized(w, "failed to resolve user")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, user.UserID)
		ctx = context.WithValue(ctx, userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated caller's ID, or "" outside the middleware.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// CurrentUser returns the authenticated user row, or nil outside the
// middleware.
func CurrentUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
