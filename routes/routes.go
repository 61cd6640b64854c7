package routes

import (
	"context"
	"net/http"
	"time"

	"prostore-backend/config"
	"prostore-backend/database"
	"prostore-backend/handlers"
	"prostore-backend/metrics"
	"prostore-backend/middleware"
	"prostore-backend/models"
	"prostore-backend/repository"
	"prostore-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	products := repository.NewProductRepository(db)
	cartService := services.NewCartService(db, products,
		services.WithPricing(services.StandardPricing{
			FlatShipping:          cfg.FlatShipping,
			FreeShippingThreshold: cfg.FreeShippingThreshold,
			TaxRate:               cfg.TaxRate,
		}),
		services.WithMaxAttempts(cfg.CartMaxAttempts),
	)

	// Initialize handlers
	authHandler := &handlers.AuthHandler{
		DB:           db,
		Carts:        cartService,
		SecureCookie: cfg.SecureCookie,
		OnSignIn: func(ctx context.Context, sessionCartID string, userID uuid.UUID) error {
			return cartService.MergeOnLogin(ctx, models.SessionOwner(sessionCartID), models.UserOwner(userID))
		},
	}
	productHandler := &handlers.ProductHandler{Products: products}
	cartHandler := &handlers.CartHandler{Carts: cartService}

	r.Use(middleware.Metrics())

	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Every storefront request carries a cart token and, when signed in, a user.
	api := r.Group("/api")
	api.Use(middleware.SessionCart(cfg.SecureCookie), middleware.OptionalAuth())
	{
		// Auth routes
		api.POST("/auth/sign-up", authLimiter.Middleware(), authHandler.SignUp)
		api.POST("/auth/sign-in", authLimiter.Middleware(), authHandler.SignIn)
		api.POST("/auth/sign-out", authHandler.SignOut)
		api.GET("/auth/session", authHandler.Session)

		// Public product routes
		api.GET("/products", productHandler.GetProducts)
		api.GET("/products/latest", productHandler.GetLatestProducts)
		api.GET("/products/:slug", productHandler.GetProductBySlug)

		// Cart routes, open to anonymous sessions
		api.GET("/cart", cartHandler.GetCart)
		api.POST("/cart/add", cartHandler.AddItem)
		api.POST("/cart/remove", cartHandler.RemoveItem)
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/auth/profile", authHandler.GetProfile)
	}

	// Admin routes (require admin role)
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		admin.POST("/products", productHandler.CreateProduct)
		admin.PUT("/products/:id/stock", productHandler.UpdateStock)
	}

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = database.Ping(c.Request.Context(), sqlDB, 2*time.Second)
		}
		if err != nil {
			log.WithError(err).Warn("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
