package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"qquiz-service/internal/auth"
	"qquiz-service/internal/domain"
)

// UserService provisions accounts and resolves identities.
type UserService struct {
	users      UserRepository
	bcryptCost int
	now        func() time.Time
}

func NewUserService(users UserRepository, bcryptCost int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost, now: time.Now}
}

// Register creates an account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, username, email, password string, admin bool) (domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	switch {
	case username == "":
		return domain.User{}, errors.New("register: username is required")
	case !strings.Contains(email, "@"):
		return domain.User{}, fmt.Errorf("register: invalid email %q", email)
	case password == "":
		return domain.User{}, errors.New("register: password is required")
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return domain.User{}, err
	}
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Admin:        admin,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// User looks an account up by ID.
func (s *UserService) User(ctx context.Context, userID string) (domain.User, error) {
	return s.users.GetUser(ctx, userID)
}

// ByUsername looks an account up by username.
func (s *UserService) ByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.users.FindUserByUsername(ctx, strings.TrimSpace(username))
}
