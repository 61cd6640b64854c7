package handlers

import (
	"context"
	"errors"
	"net/http"

	"prostore-backend/dtos"
	"prostore-backend/middleware"
	"prostore-backend/models"
	"prostore-backend/services"
	"prostore-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type CartHandler struct {
	Carts *services.CartService
}

func (h *CartHandler) GetCart(c *gin.Context) {
	owner, ok := middleware.CartOwner(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No cart session"})
		return
	}

	cart, err := h.Carts.GetCart(c.Request.Context(), owner)
	if err != nil {
		log.WithError(err).WithField("owner", owner.String()).Error("failed to fetch cart")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
		return
	}

	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	h.change(c, h.Carts.AddItem)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	h.change(c, h.Carts.RemoveItem)
}

type cartChange func(ctx context.Context, owner models.Owner, productID uuid.UUID, qty int) (services.Result, error)

func (h *CartHandler) change(c *gin.Context, apply cartChange) {
	owner, ok := middleware.CartOwner(c)
	if !ok {
		c.JSON(http.StatusBadRequest, services.Result{Success: false, Message: "No cart session"})
		return
	}

	var req dtos.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, services.Result{Success: false, Message: utils.SanitizeValidationError(err)})
		return
	}

	res, err := apply(c.Request.Context(), owner, req.ProductID, req.Quantity())
	if err != nil {
		c.JSON(cartErrorStatus(err), services.ResultFromError(err))
		return
	}

	resp := dtos.CartActionResponse{Result: res}
	if cart, err := h.Carts.GetCart(c.Request.Context(), owner); err == nil {
		resp.Cart = cart
	}
	c.JSON(http.StatusOK, resp)
}

func cartErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrOutOfStock):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrStoreConflict):
		return http.StatusConflict
	default:
		log.WithError(err).Error("cart operation failed")
		return http.StatusInternalServerError
	}
}
