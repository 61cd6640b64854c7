package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"prostore-backend/dtos"
	"prostore-backend/models"
	"prostore-backend/repository"
	"prostore-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type ProductHandler struct {
	Products *repository.ProductRepository
}

// GetLatestProducts feeds the home page product list.
func (h *ProductHandler) GetLatestProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(repository.DefaultLatestLimit)))

	products, err := h.Products.FindLatest(c.Request.Context(), limit)
	if err != nil {
		log.WithError(err).Error("failed to fetch latest products")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(repository.DefaultPageSize)))

	q := repository.ProductQuery{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     page,
		PageSize: limit,
	}
	products, total, err := h.Products.List(c.Request.Context(), q)
	if err != nil {
		log.WithError(err).Error("failed to list products")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    total,
		"page":     max(page, 1),
		"limit":    limit,
	})
}

func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	product, err := h.Products.FindBySlug(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req dtos.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	if !req.Price.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be greater than 0"})
		return
	}

	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = utils.Slugify(req.Name)
	}

	product := models.Product{
		Name:        req.Name,
		Slug:        slug,
		Category:    req.Category,
		Brand:       req.Brand,
		Description: req.Description,
		Images:      req.Images,
		Price:       req.Price.Round(2),
		Stock:       req.Stock,
		IsFeatured:  req.IsFeatured,
		Banner:      req.Banner,
	}
	if err := h.Products.Create(c.Request.Context(), &product); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "A product with this slug already exists"})
			return
		}
		log.WithError(err).Error("failed to create product")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	log.WithFields(log.Fields{"product_id": product.ID, "slug": product.Slug}).Info("product created")
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) UpdateStock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req dtos.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	product, err := h.Products.UpdateStock(c.Request.Context(), id, *req.Stock)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update stock"})
		return
	}
	c.JSON(http.StatusOK, product)
}
