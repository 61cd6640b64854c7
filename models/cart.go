package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrInvalidOwner is returned when an Owner has neither or both identities set.
var ErrInvalidOwner = errors.New("cart owner must be exactly one of session cart id or user id")

// Owner identifies whose cart is being addressed: an anonymous session
// token or a signed-in user, never both.
type Owner struct {
	SessionCartID string
	UserID        uuid.UUID
}

func SessionOwner(sessionCartID string) Owner {
	return Owner{SessionCartID: sessionCartID}
}

func UserOwner(userID uuid.UUID) Owner {
	return Owner{UserID: userID}
}

func (o Owner) IsUser() bool {
	return o.UserID != uuid.Nil
}

func (o Owner) Validate() error {
	hasSession := o.SessionCartID != ""
	if hasSession == o.IsUser() {
		return ErrInvalidOwner
	}
	return nil
}

func (o Owner) String() string {
	if o.IsUser() {
		return "user:" + o.UserID.String()
	}
	return "session:" + o.SessionCartID
}

type Cart struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SessionCartID *string         `gorm:"uniqueIndex" json:"sessionCartId,omitempty"`
	UserID        *uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"userId,omitempty"`
	Items         []CartItem      `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	ItemsPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"itemsPrice"`
	ShippingPrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"shippingPrice"`
	TaxPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"taxPrice"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"totalPrice"`
	Version       int             `gorm:"not null;default:0" json:"-"`
	CreatedAt     time.Time       `gorm:"<-:create" json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// NewCart returns an unsaved, empty cart owned by owner.
func NewCart(owner Owner) *Cart {
	c := &Cart{Items: []CartItem{}}
	c.SetOwner(owner)
	return c
}

// SetOwner replaces the cart's identity, clearing the other kind.
func (c *Cart) SetOwner(owner Owner) {
	c.SessionCartID = nil
	c.UserID = nil
	if owner.IsUser() {
		id := owner.UserID
		c.UserID = &id
		return
	}
	token := owner.SessionCartID
	c.SessionCartID = &token
}

func (c *Cart) Owner() Owner {
	if c.UserID != nil {
		return UserOwner(*c.UserID)
	}
	if c.SessionCartID != nil {
		return SessionOwner(*c.SessionCartID)
	}
	return Owner{}
}

// IsPersisted reports whether the cart has a stored row.
func (c *Cart) IsPersisted() bool {
	return c.ID != uuid.Nil
}

// FindItem returns the index of the line for productID, or -1.
func (c *Cart) FindItem(productID uuid.UUID) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// ItemCount is the total number of units across all lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Qty
	}
	return n
}

type CartItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"-"`
	CartID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product" json:"-"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product" json:"productId"`
	Name      string          `gorm:"not null" json:"name"`
	Slug      string          `gorm:"not null" json:"slug"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Qty       int             `gorm:"not null" json:"qty"`
	Position  int             `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time       `json:"-"`
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Subtotal is price × qty for the line.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Qty)))
}
