package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/momocakes/commerce-api/internal/core/ports"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// TokenIssuer mints access/refresh token pairs from a {sub, email, role}
// claim set. Each token is signed with its own secret. Issuing a pair
// persists the new refresh token against the user, superseding any prior one.
type TokenIssuer struct {
	directory     *UserDirectory
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenIssuer(directory *UserDirectory, accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &TokenIssuer{
		directory:     directory,
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// Issue signs a fresh pair and rotates the stored refresh token.
func (t *TokenIssuer) Issue(ctx context.Context, userID, email, role string) (*ports.TokenPair, error) {
	now := time.Now().UTC()

	access, err := t.sign(userID, email, role, t.accessSecret, now.Add(t.accessTTL))
	if err != nil {
		return nil, err
	}

	refresh, err := t.sign(userID, email, role, t.refreshSecret, now.Add(t.refreshTTL))
	if err != nil {
		return nil, err
	}

	if err := t.directory.UpdateRefreshToken(ctx, userID, refresh); err != nil {
		return nil, err
	}

	return &ports.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresIn:  int64(t.accessTTL.Seconds()),
		RefreshExpiresIn: int64(t.refreshTTL.Seconds()),
	}, nil
}

func (t *TokenIssuer) sign(userID, email, role, secret string, expiry time.Time) (string, error) {
	// jti makes every issuance distinct, even within the same second.
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"exp":   expiry.Unix(),
		"jti":   uuid.NewString(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(secret))
}
