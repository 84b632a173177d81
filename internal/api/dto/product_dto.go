package dto

import (
	"time"

	"github.com/jvegav/EcoTrade/internal/domain"
)

// ProductRequest is the publish/update payload.
type ProductRequest struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	UseTime     string  `json:"useTime"`
}

// ProductResponse mirrors the backend product shape.
type ProductResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	UseTime     string    `json:"useTime"`
	OwnerID     int64     `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewProductResponse maps a domain product.
func NewProductResponse(product *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID,
		Name:        product.Name,
		Price:       product.Price,
		Description: product.Description,
		UseTime:     product.UseTime,
		OwnerID:     product.OwnerID,
		CreatedAt:   product.CreatedAt,
	}
}

// NewProductResponses maps a catalog slice.
func NewProductResponses(products []domain.Product) []ProductResponse {
	result := make([]ProductResponse, 0, len(products))
	for i := range products {
		result = append(result, NewProductResponse(&products[i]))
	}
	return result
}
