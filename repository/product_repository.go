package repository

import (
	"context"
	"errors"
	"strings"

	"prostore-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultLatestLimit = 4
	MaxLatestLimit     = 50
	DefaultPageSize    = 12
)

type ProductQuery struct {
	Category string
	Search   string
	Page     int
	PageSize int
}

// ProductRepository is the read side of the catalog plus the admin writes.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindLatest returns up to limit products, newest first.
func (r *ProductRepository) FindLatest(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = DefaultLatestLimit
	}
	if limit > MaxLatestLimit {
		limit = MaxLatestLimit
	}

	var products []models.Product
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *ProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *ProductRepository) first(ctx context.Context, query string, args ...interface{}) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where(query, args...).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// List returns one page of products matching q and the total match count.
func (r *ProductRepository) List(ctx context.Context, q ProductQuery) ([]models.Product, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > MaxLatestLimit {
		q.PageSize = DefaultPageSize
	}

	query := r.db.WithContext(ctx).Model(&models.Product{})
	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	err := query.Order("created_at DESC").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&products).Error
	return products, total, err
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	err := r.db.WithContext(ctx).Create(product).Error
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (r *ProductRepository) UpdateStock(ctx context.Context, id uuid.UUID, stock int) (*models.Product, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("stock", stock)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, id)
}
