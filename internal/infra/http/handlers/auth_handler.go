package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/infra/session"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type SessionUser struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  entity.Role `json:"role"`
}

func newSessionUser(u *entity.User) SessionUser {
	return SessionUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

type LoginResponse struct {
	OK   bool        `json:"ok"`
	User SessionUser `json:"user"`
}

type AuthHandler struct {
	Auth         *usecase.AuthUseCase
	Sessions     session.Store
	Codec        *session.Codec
	Limiter      *RateLimiter
	SecureCookie bool
	Logger       *zap.Logger
}

func NewAuthHandler(auth *usecase.AuthUseCase, sessions session.Store, codec *session.Codec, limiter *RateLimiter, secureCookie bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		Auth:         auth,
		Sessions:     sessions,
		Codec:        codec,
		Limiter:      limiter,
		SecureCookie: secureCookie,
		Logger:       logger,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.Limiter.Allow(clientIP(r)) {
		writeMessage(w, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
		return
	}

	var input usecase.LoginInput
	if !decodeJSON(w, r, &input) {
		return
	}

	user, err := h.Auth.Login(r.Context(), input)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	sid, err := h.Sessions.Create(r.Context(), session.Data{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	token, err := h.Codec.Encode(sid)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	h.setCookie(w, token, int(h.Codec.TTL().Seconds()))
	h.Logger.Info("user logged in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	writeJSON(w, http.StatusOK, LoginResponse{OK: true, User: newSessionUser(user)})
}

// Logout always succeeds, even without a session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(session.CookieName); err == nil {
		if sid, err := h.Codec.Decode(cookie.Value); err == nil {
			if err := h.Sessions.Delete(r.Context(), sid); err != nil {
				h.Logger.Warn("failed to delete session", zap.Error(err))
			}
		}
	}

	h.setCookie(w, "", -1)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())
	if caller == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]SessionUser{"user": newSessionUser(caller)})
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
