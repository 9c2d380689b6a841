package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"bolt-api/internal/domain"
	"bolt-api/internal/repository"
	"bolt-api/pkg/auth"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// dummyPassword is hashed once so unknown-email logins still pay for a
// password comparison
const dummyPassword = "bolt-dummy-password"

type CredentialService struct {
	users         repository.UserRepository
	hasher        auth.PasswordHasher
	throttle      *LoginThrottle
	defaultAvatar string
	now           Clock
	logger        *zap.Logger

	dummyOnce   sync.Once
	dummyDigest string
}

func NewCredentialService(users repository.UserRepository, hasher auth.PasswordHasher, throttle *LoginThrottle, defaultAvatar string, logger *zap.Logger) *CredentialService {
	return &CredentialService{
		users:         users,
		hasher:        hasher,
		throttle:      throttle,
		defaultAvatar: defaultAvatar,
		now:           systemClock,
		logger:        logger,
	}
}

// WithClock replaces the clock used for timestamps
func (s *CredentialService) WithClock(now Clock) *CredentialService {
	s.now = now
	return s
}

// Register creates a new account. Only the password digest is stored.
func (s *CredentialService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	verr := domain.NewValidationError()
	if strings.TrimSpace(username) == "" {
		verr.Add("username", "Username is required")
	}
	if strings.TrimSpace(email) == "" {
		verr.Add("email", "Email is required")
	}
	if password == "" {
		verr.Add("password", "Password is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicateEmail
	}

	existing, err = s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicateUsername
	}

	digest, err := s.hasher.Hash(password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		verr.Add("password", "Password must be at most 72 bytes long")
		return nil, verr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:             uuid.NewString(),
		Username:       username,
		Email:          email,
		PasswordDigest: digest,
		Avatar:         s.defaultAvatar,
		CreatedAt:      s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if domain.IsDuplicate(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID))
	return user, nil
}

// Authenticate verifies credentials. Unknown email and wrong password both
// yield domain.ErrInvalidCredentials.
func (s *CredentialService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if !s.throttle.Allow(ctx, email) {
		return nil, &domain.ThrottledError{RetryAfter: s.throttle.RetryAfter(ctx, email)}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if user == nil {
		s.hasher.Verify(password, s.dummy())
		s.throttle.RecordFailure(ctx, email)
		return nil, domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordDigest) {
		s.throttle.RecordFailure(ctx, email)
		s.logger.Debug("Password mismatch", zap.String("user_id", user.ID))
		return nil, domain.ErrInvalidCredentials
	}

	s.throttle.Reset(ctx, email)
	return user, nil
}

// UpdateProfile changes username and bio. Email and password are immutable here.
func (s *CredentialService) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Username != nil && *update.Username != user.Username {
		if strings.TrimSpace(*update.Username) == "" {
			verr := domain.NewValidationError()
			verr.Add("username", "Username is required")
			return nil, verr
		}

		taken, err := s.users.GetByUsername(ctx, *update.Username)
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if taken != nil {
			return nil, domain.ErrDuplicateUsername
		}
		user.Username = *update.Username
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrNotFound) || domain.IsDuplicate(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("Profile updated", zap.String("user_id", user.ID))
	return user, nil
}

// GetUser loads a user by id
func (s *CredentialService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, domain.NotFound("user")
	}
	return user, nil
}

func (s *CredentialService) dummy() string {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.logger.Error("Failed to prepare dummy digest", zap.Error(err))
			return
		}
		s.dummyDigest = digest
	})
	return s.dummyDigest
}
