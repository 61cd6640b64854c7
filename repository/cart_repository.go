package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prostore-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository persists carts and their ordered line items.
type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *CartRepository) WithTx(tx *gorm.DB) *CartRepository {
	return &CartRepository{db: tx}
}

// FindByOwner loads the owner's cart with items in position order.
func (r *CartRepository) FindByOwner(ctx context.Context, owner models.Owner) (*models.Cart, error) {
	return r.findByOwner(ctx, r.db.WithContext(ctx), owner)
}

// LockByOwner is FindByOwner plus a row lock held until the surrounding
// transaction ends. SQLite has no row locks; database.Connect limits it to a
// single connection so its transactions run one at a time.
func (r *CartRepository) LockByOwner(ctx context.Context, owner models.Owner) (*models.Cart, error) {
	q := r.db.WithContext(ctx)
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.findByOwner(ctx, q, owner)
}

func (r *CartRepository) findByOwner(ctx context.Context, q *gorm.DB, owner models.Owner) (*models.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	if owner.IsUser() {
		q = q.Where("user_id = ?", owner.UserID)
	} else {
		q = q.Where("session_cart_id = ?", owner.SessionCartID)
	}

	var cart models.Cart
	if err := q.First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cart.ID).
		Order("position ASC").
		Find(&cart.Items).Error; err != nil {
		return nil, fmt.Errorf("load cart items: %w", err)
	}
	return &cart, nil
}

// Create inserts a new cart with its items. A cart already existing for the
// same owner yields ErrConflict.
func (r *CartRepository) Create(ctx context.Context, cart *models.Cart) error {
	cart.Version = 0
	renumber(cart)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(cart).Error; err != nil {
			return err
		}
		return insertItems(tx, cart.ID, cart.Items)
	})
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// Save writes owner, totals and items back, guarded by the version the cart
// was read at. On success cart.Version is advanced.
func (r *CartRepository) Save(ctx context.Context, cart *models.Cart) error {
	renumber(cart)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Cart{}).
			Where("id = ? AND version = ?", cart.ID, cart.Version).
			Updates(map[string]interface{}{
				"session_cart_id": cart.SessionCartID,
				"user_id":         cart.UserID,
				"items_price":     cart.ItemsPrice,
				"shipping_price":  cart.ShippingPrice,
				"tax_price":       cart.TaxPrice,
				"total_price":     cart.TotalPrice,
				"version":         cart.Version + 1,
				"updated_at":      time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return insertItems(tx, cart.ID, cart.Items)
	})
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return err
	}

	cart.Version++
	return nil
}

// Delete removes the cart and its items if it is still at the version read.
func (r *CartRepository) Delete(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND version = ?", cart.ID, cart.Version).Delete(&models.Cart{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		return nil
	})
}

func insertItems(tx *gorm.DB, cartID uuid.UUID, items []models.CartItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].CartID = cartID
		items[i].ID = uuid.Nil
	}
	return tx.Create(&items).Error
}

func renumber(cart *models.Cart) {
	for i := range cart.Items {
		cart.Items[i].Position = i
		cart.Items[i].CartID = cart.ID
	}
}
