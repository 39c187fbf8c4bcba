package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/momocakes/commerce-api/internal/core/domain"
	"github.com/momocakes/commerce-api/internal/core/ports"
)

// ProductService implements catalog CRUD and the quantity invariants.
type ProductService struct {
	repo   ports.ProductRepository
	logger zerolog.Logger
}

func NewProductService(repo ports.ProductRepository, logger zerolog.Logger) *ProductService {
	return &ProductService{repo: repo, logger: logger}
}

// Create persists a new product after a case-insensitive name check.
// Persistence failures that are not conflicts surface as a generic create
// failure rather than leaking storage detail.
func (s *ProductService) Create(ctx context.Context, input ports.CreateProductInput) (*domain.Product, error) {
	existing, err := s.repo.FindByName(ctx, input.Name, "")
	if err != nil {
		s.logger.Error().Err(err).Str("name", input.Name).Msg("product name check failed")
		return nil, domain.ErrCreateProductFailed
	}
	if existing != nil {
		return nil, domain.ErrDuplicateProductName
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	now := time.Now().UTC()
	product := &domain.Product{
		Name:              input.Name,
		Price:             input.Price,
		Image:             input.Image,
		Description:       input.Description,
		QuantityAvailable: input.QuantityAvailable,
		IsActive:          active,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		// The unique index is the backstop for races past the check above.
		if errors.Is(err, domain.ErrDuplicateProductName) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("name", input.Name).Msg("product insert failed")
		return nil, domain.ErrCreateProductFailed
	}

	s.logger.Info().Str("product_id", created.ID).Str("name", created.Name).Msg("product created")
	return created, nil
}

// ListActive is the customer-facing catalog: active and in stock, newest first.
func (s *ProductService) ListActive(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListActive(ctx)
}

// ListAll is the admin view; includeInactive=false filters on is_active
// alone, ignoring quantity.
func (s *ProductService) ListAll(ctx context.Context, includeInactive bool) ([]domain.Product, error) {
	return s.repo.List(ctx, includeInactive)
}

func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

// Update applies a partial merge. A supplied name is re-checked for a
// case-insensitive collision excluding the record itself.
func (s *ProductService) Update(ctx context.Context, id string, update ports.ProductUpdate) (*domain.Product, error) {
	if update.Name != nil {
		existing, err := s.repo.FindByName(ctx, *update.Name, id)
		if err != nil {
			s.logger.Error().Err(err).Str("name", *update.Name).Msg("product name check failed")
			return nil, domain.ErrUpdateProductFailed
		}
		if existing != nil {
			return nil, domain.ErrDuplicateProductName
		}
	}

	updated, err := s.repo.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) || errors.Is(err, domain.ErrDuplicateProductName) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("product_id", id).Msg("product update failed")
		return nil, domain.ErrUpdateProductFailed
	}
	return updated, nil
}

// SetQuantity overwrites the stored quantity. The caller-facing contract has
// already validated quantity >= 0.
func (s *ProductService) SetQuantity(ctx context.Context, id string, quantity int64) (*domain.Product, error) {
	return s.repo.SetQuantity(ctx, id, quantity)
}

// Increment atomically adds amount to the stored quantity.
func (s *ProductService) Increment(ctx context.Context, id string, amount int64) (*domain.Product, error) {
	return s.repo.IncrementQuantity(ctx, id, amount)
}

// Decrement atomically subtracts amount. It fails before mutation when the
// current quantity is insufficient, and the repository guard re-checks the
// invariant inside the atomic update.
func (s *ProductService) Decrement(ctx context.Context, id string, amount int64) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.QuantityAvailable < amount {
		return nil, domain.ErrInsufficientQuantity
	}

	return s.repo.IncrementQuantity(ctx, id, -amount)
}

// ToggleActive flips the is_active flag; two applications restore the
// original state.
func (s *ProductService) ToggleActive(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.repo.SetActive(ctx, id, !product.IsActive)
}

// Remove hard-deletes the product.
func (s *ProductService) Remove(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Stats reports catalog counts for the admin dashboard.
func (s *ProductService) Stats(ctx context.Context) (*domain.ProductStats, error) {
	return s.repo.Stats(ctx)
}
