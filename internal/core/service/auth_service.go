package service

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/momocakes/commerce-api/internal/core/domain"
	"github.com/momocakes/commerce-api/internal/core/ports"
)

// LoginThrottle limits consecutive failed login attempts per account.
type LoginThrottle interface {
	Allow(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// AuthService orchestrates the directory and the token issuer: registration,
// login, and single-slot refresh rotation.
type AuthService struct {
	directory *UserDirectory
	issuer    *TokenIssuer
	throttle  LoginThrottle // optional; nil disables throttling
	logger    zerolog.Logger
}

func NewAuthService(directory *UserDirectory, issuer *TokenIssuer, throttle LoginThrottle, logger zerolog.Logger) *AuthService {
	return &AuthService{directory: directory, issuer: issuer, throttle: throttle, logger: logger}
}

// Register creates an account and issues its first token pair. Duplicate
// email or phone surfaces as a conflict.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	user, err := s.directory.CreateUser(ctx, input)
	if err != nil {
		return nil, err
	}

	tokens, err := s.issuer.Issue(ctx, user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("user registered")

	return &ports.AuthResult{Tokens: *tokens, User: user.Sanitized()}, nil
}

// Login verifies credentials and issues a fresh pair. An unknown email and a
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, email)
		if err != nil {
			s.logger.Warn().Err(err).Msg("login throttle check failed, proceeding")
		} else if !allowed {
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recordFailure(ctx, email)
		return nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			s.logger.Warn().Err(err).Msg("login throttle reset failed")
		}
	}

	tokens, err := s.issuer.Issue(ctx, user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	return &ports.AuthResult{Tokens: *tokens, User: user.Sanitized()}, nil
}

// RefreshTokens rotates the session. The presented token must exactly match
// the stored slot; a token superseded by a newer issuance is rejected.
func (s *AuthService) RefreshTokens(ctx context.Context, userID, presented string) (*ports.TokenPair, error) {
	user, err := s.directory.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.RefreshToken == "" || user.RefreshToken != presented {
		return nil, domain.ErrInvalidRefreshToken
	}

	tokens, err := s.issuer.Issue(ctx, user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	return tokens, nil
}

// RegisterAdmin registers an account with the admin role. The role gate on
// the caller lives in the HTTP middleware.
func (s *AuthService) RegisterAdmin(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	input.Role = domain.RoleAdmin
	return s.Register(ctx, input)
}

// CreateDistributor registers an account with the distributor role.
func (s *AuthService) CreateDistributor(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	input.Role = domain.RoleDistributor
	return s.Register(ctx, input)
}

// Distributors lists distributor accounts, secrets stripped.
func (s *AuthService) Distributors(ctx context.Context) ([]domain.User, error) {
	return s.directory.FindByRole(ctx, domain.RoleDistributor)
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.logger.Warn().Err(err).Msg("login throttle record failed")
	}
}
