package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/gatehouse-api/internal/constants"
	"github.com/yukikurage/gatehouse-api/internal/database"
	"github.com/yukikurage/gatehouse-api/internal/models"
	"github.com/yukikurage/gatehouse-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrCheckPassword        = errors.New("email already registered, check password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrInvalidDateOfBirth   = errors.New("invalid date of birth")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create user")
)

// AuthService handles the local account registry.
type AuthService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, logger *zap.Logger, now func() time.Time) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		logger:   logger,
		now:      now,
	}
}

// NormalizeEmail lower-cases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignupInput represents the required information to create a new account.
type SignupInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	DateOfBirth string
}

// Signup creates a new account along with its profile.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	email := NormalizeEmail(input.Email)
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	dob, err := s.parseDateOfBirth(input.DateOfBirth)
	if err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	profile := &models.Profile{
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		DateOfBirth: dob,
	}

	if err := s.userRepo.CreateWithProfile(ctx, user, profile); err != nil {
		if database.IsDuplicateError(err) {
			return nil, ErrEmailTaken
		}
		s.logger.Error("failed to create account", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedToCreateUser, err)
	}

	s.logger.Info("account created", zap.Uint64("user_id", user.ID))
	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// AccountResult is the outcome of ResolveAccount.
type AccountResult struct {
	User    *models.User
	Created bool
}

// ResolveAccount returns the account for the email of input. A missing
// account is created; an existing one is signed in with the submitted
// password, and a wrong password reports ErrCheckPassword.
func (s *AuthService) ResolveAccount(ctx context.Context, input SignupInput) (*AccountResult, error) {
	email := NormalizeEmail(input.Email)

	existing, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if err := bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(input.Password)); err != nil {
			return nil, ErrCheckPassword
		}
		return &AccountResult{User: existing}, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	input.Email = email
	user, err := s.Signup(ctx, input)
	if err != nil {
		// Lost a race with a concurrent signup for the same email.
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrCheckPassword
		}
		return nil, err
	}
	return &AccountResult{User: user, Created: true}, nil
}

// reload re-reads user after a membership change. The stale copy is kept
// when the read fails.
func (s *AuthService) reload(ctx context.Context, user *models.User) *models.User {
	fresh, err := s.userRepo.FindByID(ctx, user.ID)
	if err != nil {
		s.logger.Warn("failed to reload user", zap.Uint64("user_id", user.ID), zap.Error(err))
		return user
	}
	return fresh
}

// parseDateOfBirth accepts an empty value or a past calendar date.
func (s *AuthService) parseDateOfBirth(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	dob, err := time.Parse(constants.DateOfBirthLayout, value)
	if err != nil || dob.After(s.now()) {
		return nil, ErrInvalidDateOfBirth
	}
	return &dob, nil
}
