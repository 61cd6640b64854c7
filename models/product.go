package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Slug        string          `gorm:"uniqueIndex;not null" json:"slug"`
	Category    string          `gorm:"index;not null" json:"category"`
	Brand       string          `json:"brand"`
	Description string          `json:"description"`
	Images      []string        `gorm:"serializer:json" json:"images"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	Rating      decimal.Decimal `gorm:"type:decimal(3,2);not null;default:0" json:"rating"`
	NumReviews  int             `gorm:"not null;default:0" json:"numReviews"`
	IsFeatured  bool            `gorm:"default:false" json:"isFeatured"`
	Banner      *string         `json:"banner,omitempty"`
	CreatedAt   time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Image returns the primary image, or "" when the product has none.
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
