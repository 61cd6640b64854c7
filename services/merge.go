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

// MergeOnLogin folds the anonymous session cart into the user's cart at
// sign-in. Without a user cart the anonymous cart simply changes owner.
// Otherwise quantities of shared products are summed and capped at stock,
// remaining anonymous lines are appended, and the anonymous cart is deleted.
func (s *CartService) MergeOnLogin(ctx context.Context, anonymous, user models.Owner) (err error) {
	defer func() { metrics.RecordCartOperation("merge", outcome(err)) }()

	if anonymous.Validate() != nil || anonymous.IsUser() {
		return cartError(ErrValidation, "Anonymous owner must be a session cart")
	}
	if user.Validate() != nil || !user.IsUser() {
		return cartError(ErrValidation, "Merge target must be a user")
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err = s.mergeOnce(ctx, anonymous, user)
		if errors.Is(err, repository.ErrConflict) {
			metrics.RecordCartConflict("merge")
			continue
		}
		if err != nil {
			return err
		}
		return nil
	}
	return cartError(ErrStoreConflict, "Cart was modified concurrently, please try again")
}

func (s *CartService) mergeOnce(ctx context.Context, anonymous, user models.Owner) error {
	// Snapshot both carts and the stock of shared products outside the
	// transaction; the locked re-read below must still see the same versions.
	anonSnap, err := s.carts.FindByOwner(ctx, anonymous)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	userSnap, err := s.carts.FindByOwner(ctx, user)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	stock := map[uuid.UUID]int{}
	if userSnap != nil {
		for _, item := range anonSnap.Items {
			if userSnap.FindItem(item.ProductID) < 0 {
				continue
			}
			product, err := s.catalog.FindByID(ctx, item.ProductID)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				stock[item.ProductID] = 0
			case err != nil:
				return err
			default:
				stock[item.ProductID] = product.Stock
			}
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)

		userCart, err := carts.LockByOwner(ctx, user)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		anonCart, err := carts.LockByOwner(ctx, anonymous)
		if errors.Is(err, repository.ErrNotFound) {
			return repository.ErrConflict
		}
		if err != nil {
			return err
		}
		if anonCart.Version != anonSnap.Version || (userCart == nil) != (userSnap == nil) ||
			(userCart != nil && userCart.Version != userSnap.Version) {
			return repository.ErrConflict
		}

		entry := log.WithFields(log.Fields{"session_cart": anonCart.ID, "user_id": user.UserID})

		if userCart == nil {
			anonCart.SetOwner(user)
			applyTotals(anonCart, s.pricing)
			if err := carts.Save(ctx, anonCart); err != nil {
				return err
			}
			entry.Info("session cart reassigned to user")
			return nil
		}

		mergeItems(userCart, anonCart.Items, stock)
		applyTotals(userCart, s.pricing)
		if err := carts.Save(ctx, userCart); err != nil {
			return err
		}
		if err := carts.Delete(ctx, anonCart); err != nil {
			return err
		}
		entry.WithField("items", len(userCart.Items)).Info("session cart merged into user cart")
		return nil
	})
}

// mergeItems adds incoming lines to dst. Shared products get summed
// quantities capped at stock; lines left with no units are dropped.
func mergeItems(dst *models.Cart, incoming []models.CartItem, stock map[uuid.UUID]int) {
	for _, item := range incoming {
		idx := dst.FindItem(item.ProductID)
		if idx < 0 {
			dst.Items = append(dst.Items, item)
			continue
		}

		qty := dst.Items[idx].Qty + item.Qty
		if available, ok := stock[item.ProductID]; ok && qty > available {
			qty = available
		}
		dst.Items[idx].Qty = qty
	}

	kept := dst.Items[:0]
	for _, item := range dst.Items {
		if item.Qty >= 1 {
			kept = append(kept, item)
		}
	}
	dst.Items = kept
}
