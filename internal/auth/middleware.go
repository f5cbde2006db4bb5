package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/contactkeep/service-contacts-go/internal/user/entity"
)

// UserSource loads a user record for token validation.
type UserSource interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

type ctxKey struct{}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, u *entity.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFrom extracts the authenticated user set by Middleware.
func UserFrom(ctx context.Context) (*entity.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*entity.User)
	return u, ok
}

// Middleware returns a middleware enforcing bearer authentication. A
// structurally valid, unexpired token is still rejected when it no longer
// matches the user's stored session token, so logout actually invalidates
// sessions before expiry.
func Middleware(tokens *TokenService, users UserSource, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}
			userID, err := tokens.Verify(raw)
			if err != nil {
				logger.Debugw("token rejected", "err", err)
				unauthorized(w)
				return
			}
			u, err := users.GetByID(r.Context(), userID)
			if err != nil {
				logger.Debugw("token user lookup failed", "err", err)
				unauthorized(w)
				return
			}
			if u.SessionToken == "" || u.SessionToken != raw {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Not authorized"})
}
