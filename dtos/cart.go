package dtos

import (
	"prostore-backend/models"
	"prostore-backend/services"

	"github.com/google/uuid"
)

// CartItemRequest is the body of add and remove calls. Qty defaults to 1.
type CartItemRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
	Qty       int       `json:"qty" binding:"omitempty,min=1,max=1000"`
}

func (r CartItemRequest) Quantity() int {
	if r.Qty == 0 {
		return 1
	}
	return r.Qty
}

// CartActionResponse is the {success, message} result, plus the cart after
// a successful change.
type CartActionResponse struct {
	services.Result
	Cart *models.Cart `json:"cart,omitempty"`
}
