package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type CreateUserInput struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role"`
}

type UserOutput struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  entity.Role `json:"role"`
}

func NewUserOutput(u *entity.User) UserOutput {
	return UserOutput{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

type UserUseCase struct {
	Users     entity.UserRepository
	Hasher    PasswordHasher
	Validator *validator.Validate
	Logger    *zap.Logger
}

func NewUserUseCase(users entity.UserRepository, hasher PasswordHasher, logger *zap.Logger) *UserUseCase {
	return &UserUseCase{
		Users:     users,
		Hasher:    hasher,
		Validator: validator.New(),
		Logger:    logger,
	}
}

// CreateSales registers a sales user. Only the sales role can be created
// through this path.
func (uc *UserUseCase) CreateSales(ctx context.Context, input CreateUserInput) (*UserOutput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, validationError("Name, email, and password are required")
	}
	if err := uc.Validator.Struct(input); err != nil {
		return nil, validationError("%s", describeValidation(err))
	}
	if input.Role != "" && entity.ParseRole(input.Role) != entity.RoleSales {
		return nil, validationError("Only sales users can be created here")
	}

	user, err := uc.create(ctx, input.Name, input.Email, input.Password, entity.RoleSales)
	if err != nil {
		return nil, err
	}
	out := NewUserOutput(user)
	return &out, nil
}

// ListSales returns every user whose role resolves to sales.
func (uc *UserUseCase) ListSales(ctx context.Context) ([]UserOutput, error) {
	users, err := uc.Users.ListByRole(ctx, entity.RoleSales)
	if err != nil {
		return nil, databaseError(err)
	}
	out := make([]UserOutput, 0, len(users))
	for _, u := range users {
		if u.ID == "" {
			continue
		}
		out = append(out, NewUserOutput(u))
	}
	return out, nil
}

// EnsureAdmin creates the bootstrap admin unless a user with that email
// already exists.
func (uc *UserUseCase) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	_, err := uc.Users.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, entity.ErrUserNotFound) {
		return false, databaseError(err)
	}
	if name == "" {
		name = "Admin"
	}
	if _, err := uc.create(ctx, name, email, password, entity.RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}

func (uc *UserUseCase) create(ctx context.Context, name, email, password string, role entity.Role) (*entity.User, error) {
	hash, err := uc.Hasher.Hash(password)
	if err != nil {
		return nil, &TechnicalError{Code: "HASH_ERROR", Message: "failed to hash password", Err: err}
	}

	user := entity.NewUser(name, email, hash, role)
	if err := uc.Users.Create(ctx, user); err != nil {
		if errors.Is(err, entity.ErrEmailAlreadyExists) {
			return nil, validationError("A user with this email already exists")
		}
		return nil, databaseError(err)
	}

	uc.Logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request data"
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return field + " must have at least " + fe.Param() + " characters"
	case "max":
		return field + " must not exceed " + fe.Param() + " characters"
	}
	return field + " is invalid"
}
