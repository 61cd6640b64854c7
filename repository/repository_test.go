package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"prostore-backend/database"
	"prostore-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect("sqlite:file:"+uuid.NewString()+"?mode=memory&cache=shared", database.PoolConfig{MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	require.NoError(t, database.Migrate(db))
	return db
}

func newProduct(name, category string, stock int) *models.Product {
	return &models.Product{
		Name:     name,
		Slug:     uuid.NewString(),
		Category: category,
		Images:   []string{"/images/" + name + ".jpg"},
		Price:    decimal.NewFromInt(10),
		Stock:    stock,
	}
}

func line(productID uuid.UUID, qty int) models.CartItem {
	return models.CartItem{
		ProductID: productID,
		Name:      "item",
		Slug:      "item",
		Price:     decimal.NewFromInt(5),
		Qty:       qty,
	}
}

func TestCartCreateAndFind(t *testing.T) {
	repo := NewCartRepository(setupTestDB(t))
	ctx := context.Background()
	owner := models.SessionOwner("token")
	a, b := uuid.New(), uuid.New()

	cart := models.NewCart(owner)
	cart.Items = []models.CartItem{line(a, 1), line(b, 2)}
	require.NoError(t, repo.Create(ctx, cart))
	assert.True(t, cart.IsPersisted())

	found, err := repo.FindByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, found.ID)
	assert.Equal(t, 0, found.Version)
	require.Len(t, found.Items, 2)
	assert.Equal(t, a, found.Items[0].ProductID)
	assert.Equal(t, b, found.Items[1].ProductID)
	assert.Equal(t, 1, found.Items[1].Position)
}

func TestCartFindMissing(t *testing.T) {
	repo := NewCartRepository(setupTestDB(t))

	_, err := repo.FindByOwner(context.Background(), models.UserOwner(uuid.New()))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.FindByOwner(context.Background(), models.Owner{})
	assert.ErrorIs(t, err, models.ErrInvalidOwner)
}

func TestCartCreateDuplicateOwnerConflicts(t *testing.T) {
	repo := NewCartRepository(setupTestDB(t))
	ctx := context.Background()
	owner := models.UserOwner(uuid.New())

	require.NoError(t, repo.Create(ctx, models.NewCart(owner)))
	err := repo.Create(ctx, models.NewCart(owner))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCartSaveAdvancesVersion(t *testing.T) {
	repo := NewCartRepository(setupTestDB(t))
	ctx := context.Background()
	owner := models.SessionOwner("token")
	a, b := uuid.New(), uuid.New()

	cart := models.NewCart(owner)
	cart.Items = []models.CartItem{line(a, 1)}
	require.NoError(t, repo.Create(ctx, cart))

	cart.Items = append(cart.Items, line(b, 4))
	cart.Items[0].Qty = 3
	cart.ItemsPrice = decimal.NewFromInt(35)
	require.NoError(t, repo.Save(ctx, cart))
	assert.Equal(t, 1, cart.Version)

	found, err := repo.FindByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, found.Version)
	assert.True(t, decimal.NewFromInt(35).Equal(found.ItemsPrice))
	require.Len(t, found.Items, 2)
	assert.Equal(t, 3, found.Items[0].Qty)
	assert.Equal(t, 4, found.Items[1].Qty)
}

func TestCartSaveStaleVersionConflicts(t *testing.T) {
	repo := NewCartRepository(setupTestDB(t))
	ctx := context.Background()
	owner := models.SessionOwner("token")

	require.NoError(t, repo.Create(ctx, models.NewCart(owner)))

	first, err := repo.FindByOwner(ctx, owner)
	require.NoError(t, err)
	second, err := repo.FindByOwner(ctx, owner)
	require.NoError(t, err)

	first.Items = []models.CartItem{line(uuid.New(), 1)}
	require.NoError(t, repo.Save(ctx, first))

	second.Items = []models.CartItem{line(uuid.New(), 2)}
	assert.ErrorIs(t, repo.Save(ctx, second), ErrConflict)

	found, err := repo.FindByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, 1, found.Items[0].Qty)
}

func TestCartSaveReassignsOwner(t *testing.T) {
	repo := NewCartRepository(setupTestDB(t))
	ctx := context.Background()
	anon := models.SessionOwner("token")
	user := models.UserOwner(uuid.New())

	cart := models.NewCart(anon)
	cart.Items = []models.CartItem{line(uuid.New(), 1)}
	require.NoError(t, repo.Create(ctx, cart))

	cart.SetOwner(user)
	require.NoError(t, repo.Save(ctx, cart))

	_, err := repo.FindByOwner(ctx, anon)
	assert.ErrorIs(t, err, ErrNotFound)

	found, err := repo.FindByOwner(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, found.ID)
	assert.Len(t, found.Items, 1)
}

func TestCartDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()
	owner := models.SessionOwner("token")

	cart := models.NewCart(owner)
	cart.Items = []models.CartItem{line(uuid.New(), 1)}
	require.NoError(t, repo.Create(ctx, cart))

	stale := *cart
	stale.Version = 7
	assert.ErrorIs(t, repo.Delete(ctx, &stale), ErrConflict)

	require.NoError(t, repo.Delete(ctx, cart))
	_, err := repo.FindByOwner(ctx, owner)
	assert.ErrorIs(t, err, ErrNotFound)

	var items int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&items).Error)
	assert.Equal(t, int64(0), items)
}

func TestCartWithTxRollsBack(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()
	owner := models.SessionOwner("token")

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := repo.WithTx(tx).Create(ctx, models.NewCart(owner)); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	require.Error(t, err)

	_, err = repo.FindByOwner(ctx, owner)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductFindLatest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 6; i++ {
		p := newProduct(fmt.Sprintf("product-%d", i), "Shirts", 5)
		p.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, p))
	}

	latest, err := repo.FindLatest(ctx, 0)
	require.NoError(t, err)
	require.Len(t, latest, DefaultLatestLimit)
	assert.Equal(t, "product-5", latest[0].Name)
	assert.Equal(t, "product-2", latest[3].Name)

	all, err := repo.FindLatest(ctx, 1000)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestProductFindByIDAndSlug(t *testing.T) {
	repo := NewProductRepository(setupTestDB(t))
	ctx := context.Background()

	p := newProduct("polo", "Shirts", 5)
	p.Slug = "polo-shirt"
	require.NoError(t, repo.Create(ctx, p))

	byID, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "polo-shirt", byID.Slug)
	assert.Equal(t, []string{"/images/polo.jpg"}, byID.Images)

	bySlug, err := repo.FindBySlug(ctx, "polo-shirt")
	require.NoError(t, err)
	assert.Equal(t, p.ID, bySlug.ID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductCreateDuplicateSlug(t *testing.T) {
	repo := NewProductRepository(setupTestDB(t))
	ctx := context.Background()

	first := newProduct("a", "Shirts", 1)
	first.Slug = "same"
	require.NoError(t, repo.Create(ctx, first))

	second := newProduct("b", "Shirts", 1)
	second.Slug = "same"
	assert.ErrorIs(t, repo.Create(ctx, second), ErrConflict)
}

func TestProductListFiltersAndPages(t *testing.T) {
	repo := NewProductRepository(setupTestDB(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, newProduct(fmt.Sprintf("Shirt %d", i), "Shirts", 1)))
	}
	require.NoError(t, repo.Create(ctx, newProduct("Jeans", "Pants", 1)))

	page, total, err := repo.List(ctx, ProductQuery{Category: "Shirts", Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, page, 2)

	found, total, err := repo.List(ctx, ProductQuery{Search: "jean"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, found, 1)
	assert.Equal(t, "Jeans", found[0].Name)
}

func TestProductUpdateStock(t *testing.T) {
	repo := NewProductRepository(setupTestDB(t))
	ctx := context.Background()

	p := newProduct("polo", "Shirts", 5)
	require.NoError(t, repo.Create(ctx, p))

	updated, err := repo.UpdateStock(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Stock)

	_, err = repo.UpdateStock(ctx, uuid.New(), 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsLockContention(t *testing.T) {
	assert.True(t, IsLockContention(fmt.Errorf("save cart: %s", "database is locked")))
	assert.True(t, IsLockContention(fmt.Errorf("ERROR: deadlock detected (SQLSTATE 40P01)")))
	assert.False(t, IsLockContention(fmt.Errorf("no such table: carts")))
	assert.False(t, IsLockContention(nil))
}
