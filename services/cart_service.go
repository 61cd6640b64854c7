package services

import (
	"context"
	"errors"

	"prostore-backend/metrics"
	"prostore-backend/models"
	"prostore-backend/repository"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const defaultMaxAttempts = 3

// Catalog is the read-only product source the cart consults.
type Catalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type CartService struct {
	db          *gorm.DB
	carts       *repository.CartRepository
	catalog     Catalog
	pricing     PricingPolicy
	maxAttempts int
}

type CartOption func(*CartService)

func WithPricing(p PricingPolicy) CartOption {
	return func(s *CartService) {
		if p != nil {
			s.pricing = p
		}
	}
}

// WithMaxAttempts bounds how often a conflicting write is retried.
func WithMaxAttempts(n int) CartOption {
	return func(s *CartService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func NewCartService(db *gorm.DB, catalog Catalog, opts ...CartOption) *CartService {
	s := &CartService{
		db:          db,
		carts:       repository.NewCartRepository(db),
		catalog:     catalog,
		pricing:     DefaultPricing(),
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetCart returns the owner's cart, or an unsaved empty cart when there is none.
func (s *CartService) GetCart(ctx context.Context, owner models.Owner) (*models.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, cartError(ErrValidation, "Invalid cart owner")
	}

	cart, err := s.carts.FindByOwner(ctx, owner)
	if errors.Is(err, repository.ErrNotFound) {
		return models.NewCart(owner), nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem puts qty units of productID into the owner's cart, creating the
// cart on first use.
func (s *CartService) AddItem(ctx context.Context, owner models.Owner, productID uuid.UUID, qty int) (res Result, err error) {
	defer func() { metrics.RecordCartOperation("add", outcome(err)) }()

	if err := owner.Validate(); err != nil {
		return Result{}, cartError(ErrValidation, "Invalid cart owner")
	}
	if productID == uuid.Nil {
		return Result{}, cartError(ErrValidation, "Product id is required")
	}
	if qty < 1 {
		return Result{}, cartError(ErrValidation, "Quantity must be at least 1")
	}

	product, err := s.catalog.FindByID(ctx, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return Result{}, cartError(ErrNotFound, "Product not found")
	}
	if err != nil {
		return Result{}, err
	}

	res, err = s.mutate(ctx, "add", owner, func(cart *models.Cart, _ bool) (Result, error) {
		idx := cart.FindItem(product.ID)
		existing := 0
		if idx >= 0 {
			existing = cart.Items[idx].Qty
		}
		if qty > product.Stock-existing {
			return Result{}, cartError(ErrOutOfStock, "Not enough stock")
		}

		if idx >= 0 {
			cart.Items[idx].Qty += qty
			return success("%s updated in cart", product.Name), nil
		}

		cart.Items = append(cart.Items, models.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Slug:      product.Slug,
			Image:     product.Image(),
			Price:     product.Price,
			Qty:       qty,
		})
		return success("%s added to cart", product.Name), nil
	})

	entry := log.WithFields(log.Fields{"owner": owner.String(), "product_id": productID, "qty": qty})
	if err != nil {
		entry.WithError(err).Info("add to cart rejected")
		return Result{}, err
	}
	entry.Debug("item added to cart")
	return res, nil
}

// RemoveItem takes qty units of productID out of the owner's cart. The line
// disappears once its quantity reaches zero.
func (s *CartService) RemoveItem(ctx context.Context, owner models.Owner, productID uuid.UUID, qty int) (res Result, err error) {
	defer func() { metrics.RecordCartOperation("remove", outcome(err)) }()

	if err := owner.Validate(); err != nil {
		return Result{}, cartError(ErrValidation, "Invalid cart owner")
	}
	if qty < 1 {
		return Result{}, cartError(ErrValidation, "Quantity must be at least 1")
	}

	res, err = s.mutate(ctx, "remove", owner, func(cart *models.Cart, exists bool) (Result, error) {
		if !exists {
			return Result{}, cartError(ErrNotFound, "Cart not found")
		}
		idx := cart.FindItem(productID)
		if idx < 0 {
			return Result{}, cartError(ErrNotFound, "Item not found")
		}

		name := cart.Items[idx].Name
		cart.Items[idx].Qty -= qty
		if cart.Items[idx].Qty <= 0 {
			cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
			return success("%s was removed from cart", name), nil
		}
		return success("%s updated in cart", name), nil
	})

	if err != nil {
		log.WithFields(log.Fields{"owner": owner.String(), "product_id": productID}).
			WithError(err).Info("remove from cart rejected")
		return Result{}, err
	}
	return res, nil
}

type mutation func(cart *models.Cart, exists bool) (Result, error)

// mutate runs read-modify-write on the owner's cart inside one transaction,
// retrying when a concurrent writer wins the version check.
func (s *CartService) mutate(ctx context.Context, op string, owner models.Owner, fn mutation) (Result, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		var res Result
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			carts := s.carts.WithTx(tx)

			cart, err := carts.LockByOwner(ctx, owner)
			exists := true
			if errors.Is(err, repository.ErrNotFound) {
				cart, exists = models.NewCart(owner), false
			} else if err != nil {
				return err
			}

			res, err = fn(cart, exists)
			if err != nil {
				return err
			}

			applyTotals(cart, s.pricing)
			if exists {
				return carts.Save(ctx, cart)
			}
			return carts.Create(ctx, cart)
		})

		if errors.Is(err, repository.ErrConflict) || repository.IsLockContention(err) {
			metrics.RecordCartConflict(op)
			log.WithFields(log.Fields{"owner": owner.String(), "op": op, "attempt": attempt}).
				Debug("cart write conflict, retrying")
			continue
		}
		return res, err
	}
	return Result{}, cartError(ErrStoreConflict, "Cart was modified concurrently, please try again")
}
