package handler

import (
	"github.com/momocakes/commerce-api/internal/core/domain"
	"github.com/momocakes/commerce-api/internal/core/ports"
)

// --- Request / Response types ---

type createProductRequest struct {
	Name              string  `json:"name"               validate:"required,min=2"`
	Price             float64 `json:"price"              validate:"gte=0"`
	Image             string  `json:"image"              validate:"omitempty,url"`
	Description       string  `json:"description"`
	QuantityAvailable int64   `json:"quantity_available" validate:"gte=0"`
	IsActive          *bool   `json:"is_active"`
}

type updateProductRequest struct {
	Name        *string  `json:"name"        validate:"omitempty,min=2"`
	Price       *float64 `json:"price"       validate:"omitempty,gte=0"`
	Image       *string  `json:"image"       validate:"omitempty,url"`
	Description *string  `json:"description"`
	IsActive    *bool    `json:"is_active"`
}

type setQuantityRequest struct {
	QuantityAvailable int64 `json:"quantity_available" validate:"gte=0"`
}

type quantityDeltaRequest struct {
	Quantity int64 `json:"quantity" validate:"required,gt=0"`
}

type productsResponse struct {
	Products []domain.Product `json:"products"`
}

type uploadImageResponse struct {
	Product  domain.Product `json:"product"`
	ImageURL string         `json:"image_url"`
}

func toCreateProductInput(req createProductRequest) ports.CreateProductInput {
	return ports.CreateProductInput{
		Name:              req.Name,
		Price:             req.Price,
		Image:             req.Image,
		Description:       req.Description,
		QuantityAvailable: req.QuantityAvailable,
		IsActive:          req.IsActive,
	}
}

func toProductUpdate(req updateProductRequest) ports.ProductUpdate {
	return ports.ProductUpdate{
		Name:        req.Name,
		Price:       req.Price,
		Image:       req.Image,
		Description: req.Description,
		IsActive:    req.IsActive,
	}
}
