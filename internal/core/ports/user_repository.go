package ports

import (
	"context"

	"github.com/momocakes/commerce-api/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
// FindByEmail, FindByPhone and FindByID return (nil, nil) when no user
// matches; absence is not an error at this layer.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// UpdateRefreshToken overwrites the user's single refresh-token slot.
	// An empty token clears the slot.
	UpdateRefreshToken(ctx context.Context, userID, token string) error
	// FindByRole and FindAll return users with password hash and refresh
	// token already stripped.
	FindByRole(ctx context.Context, role string) ([]domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
}
