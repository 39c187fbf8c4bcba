package ports

import (
	"context"

	"github.com/momocakes/commerce-api/internal/core/domain"
)

// RegisterInput carries the profile fields accepted at registration.
// Role is optional; when empty the directory defaults to distributor.
type RegisterInput struct {
	FullName              string
	Email                 string
	PhoneNumber           string
	Address               string
	Age                   int
	Password              string
	Role                  string
	AdditionalInformation string
}

// TokenPair is an access/refresh token pair with validity windows in seconds.
type TokenPair struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	AccessExpiresIn  int64  `json:"access_expires_in"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
}

// AuthResult is returned by Register and Login: a fresh token pair plus the
// public view of the account.
type AuthResult struct {
	Tokens TokenPair
	User   domain.User
}

// AuthService orchestrates registration, login and refresh-token rotation.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// RefreshTokens rotates the user's session: the presented token must
	// exactly match the stored slot, and the returned pair supersedes it.
	RefreshTokens(ctx context.Context, userID, presented string) (*TokenPair, error)
	RegisterAdmin(ctx context.Context, input RegisterInput) (*AuthResult, error)
	CreateDistributor(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Distributors(ctx context.Context) ([]domain.User, error)
}
