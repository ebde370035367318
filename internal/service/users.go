package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cx-tal-miterani/airport-booking/internal/auth"
	"github.com/cx-tal-miterani/airport-booking/internal/database"
)

// RegisterRequest is the body of POST /api/user/register
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

// TokenRequest is the body of POST /api/user/token
type TokenRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Access string `json:"access"`
}

// UserService defines the account operations
type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*database.User, error)
	Token(ctx context.Context, req TokenRequest) (*TokenResponse, error)
	Me(ctx context.Context) (*database.User, error)
	EnsureAdmin(ctx context.Context, email, password string) error
}

type UserStore interface {
	Create(ctx context.Context, u *database.User) error
	ByEmail(ctx context.Context, email string) (*database.User, error)
	ByID(ctx context.Context, id int64) (*database.User, error)
	Promote(ctx context.Context, id int64, passwordHash string) error
}

type TokenIssuer interface {
	Issue(userID int64, isStaff bool) (string, error)
}

type userServiceImpl struct {
	users  UserStore
	tokens TokenIssuer
	log    *logrus.Logger
}

// NewUserService creates a new UserService
func NewUserService(users UserStore, tokens TokenIssuer, log *logrus.Logger) UserService {
	return &userServiceImpl{users: users, tokens: tokens, log: log}
}

// Register creates a regular user. Staff can only be granted by EnsureAdmin.
func (s *userServiceImpl) Register(ctx context.Context, req RegisterRequest) (*database.User, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &database.User{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.WithField("user_id", u.ID).Info("user registered")
	return u, nil
}

func (s *userServiceImpl) Token(ctx context.Context, req TokenRequest) (*TokenResponse, error) {
	u, err := s.users.ByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, auth.ErrBadCredentials
		}
		return nil, err
	}
	if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(u.ID, u.IsStaff)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{Access: token}, nil
}

func (s *userServiceImpl) Me(ctx context.Context) (*database.User, error) {
	caller, err := auth.CallerFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.users.ByID(ctx, caller.UserID)
}

// EnsureAdmin creates a staff user, or promotes an existing one and resets
// its password.
func (s *userServiceImpl) EnsureAdmin(ctx context.Context, email, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	u, err := s.users.ByEmail(ctx, email)
	switch {
	case errors.Is(err, database.ErrNotFound):
		u = &database.User{Email: email, PasswordHash: hash, IsStaff: true}
		if err := s.users.Create(ctx, u); err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}
		s.log.WithField("user_id", u.ID).Info("admin user created")
		return nil
	case err != nil:
		return err
	}

	if err := s.users.Promote(ctx, u.ID, hash); err != nil {
		return fmt.Errorf("failed to promote admin: %w", err)
	}
	s.log.WithField("user_id", u.ID).Info("admin user promoted")
	return nil
}
