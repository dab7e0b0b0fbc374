package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type UserHandler struct {
	Users  *usecase.UserUseCase
	Logger *zap.Logger
}

func NewUserHandler(users *usecase.UserUseCase, logger *zap.Logger) *UserHandler {
	return &UserHandler{Users: users, Logger: logger}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListSales(r.Context())
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateUserInput
	if !decodeJSON(w, r, &input) {
		return
	}

	user, err := h.Users.CreateSales(r.Context(), input)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

type RegisterResponse struct {
	OK     bool   `json:"ok"`
	UserID string `json:"userId"`
}

// Register is the older sign-up endpoint; it always creates a sales user.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateUserInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.Role = ""

	user, err := h.Users.CreateSales(r.Context(), input)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, RegisterResponse{OK: true, UserID: user.ID})
}
