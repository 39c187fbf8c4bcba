package domain

import (
	"errors"
	"time"
)

// LowStockThreshold is the quantity at or below which a product counts as
// low stock in catalog statistics.
const LowStockThreshold = 5

var ErrProductNotFound = errors.New("product not found")
var ErrDuplicateProductName = errors.New("a product with this name already exists")
var ErrInsufficientQuantity = errors.New("insufficient product quantity available")
var ErrCreateProductFailed = errors.New("failed to create product")
var ErrUpdateProductFailed = errors.New("failed to update product")

// Product is the catalog aggregate. Name is unique ignoring case;
// QuantityAvailable never goes negative.
type Product struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Price             float64   `json:"price"`
	Image             string    `json:"image,omitempty"`
	Description       string    `json:"description,omitempty"`
	QuantityAvailable int64     `json:"quantity_available"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ProductStats summarises the catalog for the admin dashboard.
type ProductStats struct {
	Total      int64 `json:"total_products"`
	Active     int64 `json:"active_products"`
	OutOfStock int64 `json:"out_of_stock_products"`
	LowStock   int64 `json:"low_stock_products"`
}
