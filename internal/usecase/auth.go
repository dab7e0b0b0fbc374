package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthUseCase struct {
	Users  entity.UserRepository
	Hasher PasswordHasher
}

func NewAuthUseCase(users entity.UserRepository, hasher PasswordHasher) *AuthUseCase {
	return &AuthUseCase{Users: users, Hasher: hasher}
}

// Login checks the credentials and returns the user with its role resolved.
func (uc *AuthUseCase) Login(ctx context.Context, input LoginInput) (*entity.User, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return nil, validationError("Email and password required")
	}

	user, err := uc.Users.FindByEmail(ctx, email)
	if errors.Is(err, entity.ErrUserNotFound) {
		return nil, unauthorizedError("Invalid credentials")
	}
	if err != nil {
		return nil, databaseError(err)
	}

	if err := uc.Hasher.Compare(user.PasswordHash, input.Password); err != nil {
		return nil, unauthorizedError("Invalid credentials")
	}
	// Anything that is not admin behaves as sales once logged in.
	if !user.Role.IsAdmin() {
		user.Role = entity.RoleSales
	}
	return user, nil
}
