package ports

import (
	"context"

	"github.com/momocakes/commerce-api/internal/core/domain"
)

// ProductUpdate is a partial merge applied to an existing product. Nil
// fields are left untouched.
type ProductUpdate struct {
	Name        *string
	Price       *float64
	Image       *string
	Description *string
	IsActive    *bool
}

// ProductRepository defines persistence operations for catalog products.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	// FindByName matches the name ignoring case. A non-empty excludeID
	// skips that record (used when renaming). Returns (nil, nil) on no match.
	FindByName(ctx context.Context, name, excludeID string) (*domain.Product, error)
	// ListActive returns active products with quantity above zero, newest first.
	ListActive(ctx context.Context) ([]domain.Product, error)
	// List returns products newest first; includeInactive=false filters on
	// is_active alone.
	List(ctx context.Context, includeInactive bool) ([]domain.Product, error)
	Update(ctx context.Context, id string, update ProductUpdate) (*domain.Product, error)
	SetQuantity(ctx context.Context, id string, quantity int64) (*domain.Product, error)
	// IncrementQuantity applies an atomic $inc. Negative deltas are guarded
	// so the stored quantity never goes below zero.
	IncrementQuantity(ctx context.Context, id string, delta int64) (*domain.Product, error)
	SetActive(ctx context.Context, id string, active bool) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*domain.ProductStats, error)
}
