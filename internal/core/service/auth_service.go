package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/handcrafted-haven/marketplace/internal/core/domain"
	"github.com/handcrafted-haven/marketplace/internal/port"
)

const minPasswordLength = 6

// AuthService handles registration, credential sign-in, and the opaque
// session ids presented on authenticated requests.
type AuthService struct {
	users      port.UserRepository
	sessions   port.SessionStore
	logger     *zap.Logger
	sessionTTL time.Duration
}

func NewAuthService(users port.UserRepository, sessions port.SessionStore, logger *zap.Logger, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		logger:     logger,
		sessionTTL: sessionTTL,
	}
}

type RegisterInput struct {
	Email    string
	Username string
	Password string
	Role     domain.Role
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, &ValidationError{Field: "email", Message: "must be a valid email address"}
	}
	if strings.TrimSpace(input.Username) == "" {
		return nil, &ValidationError{Field: "username", Message: "is required"}
	}
	if len(input.Password) < minPasswordLength {
		return nil, &ValidationError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}

	role := input.Role
	if role == "" {
		role = domain.RoleBuyer
	}
	// Admins are promoted through the admin panel, never self-registered.
	if role != domain.RoleBuyer && role != domain.RoleSeller {
		return nil, &ValidationError{Field: "role", Message: "must be buyer or seller"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     strings.TrimSpace(input.Username),
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, port.ErrAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)
	return &user, nil
}

// Login verifies credentials and issues a session id. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	sessionID, err := s.sessions.Create(ctx, user.ID, user.Role, s.sessionTTL)
	if err != nil {
		return "", nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID))
	return sessionID, user, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// Authenticate resolves a session id to an identity and slides its TTL.
func (s *AuthService) Authenticate(ctx context.Context, sessionID string) (*port.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Refresh(ctx, sessionID, s.sessionTTL); err != nil && !errors.Is(err, port.ErrSessionNotFound) {
		s.logger.Warn("session refresh failed", zap.Error(err))
	}
	return session, nil
}

func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID, username, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return &ValidationError{Field: "email", Message: "must be a valid email address"}
	}
	if strings.TrimSpace(username) == "" {
		return &ValidationError{Field: "username", Message: "is required"}
	}
	return s.users.UpdateProfile(ctx, userID, strings.TrimSpace(username), email)
}

// ChangePassword requires the current password before accepting a new one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return &ValidationError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, string(hash))
}
