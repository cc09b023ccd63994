package services

import (
	"context"
	"errors"
	"fmt"

	"cartracker/internal/models"
	"cartracker/internal/repositories"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the bcrypt input limit. Longer passwords are truncated,
// so only their first 72 bytes are significant.
const maxPasswordBytes = 72

func passwordBytes(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}

// AuthState is the outcome of a login attempt.
type AuthState int

const (
	Anonymous AuthState = iota
	Authenticated
	Rejected
)

func (s AuthState) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Rejected:
		return "rejected"
	default:
		return "anonymous"
	}
}

// LoginResult describes where a login attempt ended up.
type LoginResult struct {
	State      AuthState
	User       *models.User
	NewAccount bool
}

// AuthService owns user credentials and the login flow.
type AuthService struct {
	userRepo repositories.UserRepository
	hashCost int
	log      *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, log *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hashCost: bcrypt.DefaultCost,
		log:      log,
	}
}

// CreateUser hashes the password and stores a new user.
// It fails with repositories.ErrDuplicateUsername if the username is taken.
func (s *AuthService) CreateUser(ctx context.Context, username, password string) (*models.User, error) {
	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("username '%s': %w", username, repositories.ErrDuplicateUsername)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword(passwordBytes(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{
		Username: username,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// FindUser returns the user with the given username or repositories.ErrNotFound.
func (s *AuthService) FindUser(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

// VerifyUser checks a password against the stored hash. An unknown username
// and a wrong password both yield ErrInvalidCredentials.
func (s *AuthService) VerifyUser(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), passwordBytes(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login verifies the credentials. When verification fails and the username is
// unknown, a new account is created with the supplied password and the caller
// is authenticated as that account.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.VerifyUser(ctx, username, password)
	if err == nil {
		return &LoginResult{State: Authenticated, User: user}, nil
	}
	if !errors.Is(err, ErrInvalidCredentials) {
		return nil, fmt.Errorf("verify user %s: %w", username, err)
	}

	if _, err := s.FindUser(ctx, username); err == nil {
		return &LoginResult{State: Rejected}, nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("find user %s: %w", username, err)
	}

	if _, err := s.CreateUser(ctx, username, password); err != nil {
		return nil, fmt.Errorf("provision user %s: %w", username, err)
	}
	user, err = s.FindUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("reload provisioned user %s: %w", username, err)
	}
	s.log.Info("provisioned new account on login", zap.String("username", username), zap.String("user_id", user.ID))

	return &LoginResult{State: Authenticated, User: user, NewAccount: true}, nil
}
