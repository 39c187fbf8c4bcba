package ports

import (
	"context"

	"github.com/momocakes/commerce-api/internal/core/domain"
)

// CreateProductInput carries the fields accepted when creating a product.
// IsActive defaults to true when nil.
type CreateProductInput struct {
	Name              string
	Price             float64
	Image             string
	Description       string
	QuantityAvailable int64
	IsActive          *bool
}

// ProductService defines the catalog use cases.
type ProductService interface {
	Create(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	// ListActive is the customer-facing view: active and in stock, newest first.
	ListActive(ctx context.Context) ([]domain.Product, error)
	// ListAll is the admin view. includeInactive=false behaves like an
	// is_active filter alone, ignoring quantity.
	ListAll(ctx context.Context, includeInactive bool) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Update(ctx context.Context, id string, update ProductUpdate) (*domain.Product, error)
	SetQuantity(ctx context.Context, id string, quantity int64) (*domain.Product, error)
	Increment(ctx context.Context, id string, amount int64) (*domain.Product, error)
	Decrement(ctx context.Context, id string, amount int64) (*domain.Product, error)
	ToggleActive(ctx context.Context, id string) (*domain.Product, error)
	Remove(ctx context.Context, id string) error
	Stats(ctx context.Context) (*domain.ProductStats, error)
}
