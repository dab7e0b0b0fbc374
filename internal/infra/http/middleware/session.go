package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/session"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type callerKey struct{}

// WithCaller stores the authenticated user on the context.
func WithCaller(ctx context.Context, u *entity.User) context.Context {
	return context.WithValue(ctx, callerKey{}, u)
}

// CallerFrom returns the authenticated user, or nil for anonymous requests.
func CallerFrom(ctx context.Context) *entity.User {
	u, _ := ctx.Value(callerKey{}).(*entity.User)
	return u
}

// Session resolves the session cookie into a caller. Requests without a
// valid session pass through anonymously.
func Session(store session.Store, codec *session.Codec, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(session.CookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			sid, err := codec.Decode(cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			data, err := store.Get(r.Context(), sid)
			if err != nil {
				if !errors.Is(err, session.ErrNotFound) {
					logger.Warn("session lookup failed", zap.Error(err))
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithCaller(r.Context(), CallerFromSession(data))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerFromSession turns the stored snapshot into a user. Any role other
// than admin acts as sales.
func CallerFromSession(data *session.Data) *entity.User {
	role := entity.ParseRole(data.Role)
	if !role.IsAdmin() {
		role = entity.RoleSales
	}
	return &entity.User{
		ID:        data.UserID,
		Name:      data.Name,
		Email:     data.Email,
		Role:      role,
		CreatedAt: data.CreatedAt,
	}
}

func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CallerFrom(r.Context()) == nil {
			deny(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin answers 401 without a session and 403 for non-admins.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := usecase.RequireAdmin(CallerFrom(r.Context()))
		switch usecase.ErrorCode(err) {
		case "":
			next.ServeHTTP(w, r)
		case usecase.CodeUnauthorized:
			deny(w, http.StatusUnauthorized, err.Error())
		default:
			deny(w, http.StatusForbidden, err.Error())
		}
	})
}

func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
