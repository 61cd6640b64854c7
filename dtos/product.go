package dtos

import (
	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required,min=3"`
	Slug        string          `json:"slug"`
	Category    string          `json:"category" binding:"required"`
	Brand       string          `json:"brand"`
	Description string          `json:"description"`
	Images      []string        `json:"images" binding:"required,min=1"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" binding:"min=0"`
	IsFeatured  bool            `json:"isFeatured"`
	Banner      *string         `json:"banner"`
}

type UpdateStockRequest struct {
	Stock *int `json:"stock" binding:"required,min=0"`
}
