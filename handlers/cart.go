package handlers

import (
	"errors"
	"net/http"
	"sync"

	"delivery-agent/cart"
	"delivery-agent/models"

	"github.com/gin-gonic/gin"
)

// The cart lives on the device until checkout; the guard keeps the
// single-cook policy while items are added.
var (
	cartMu    sync.Mutex
	cartState models.Cart
)

// GetCart returns the current cart
func GetCart(c *gin.Context) {
	cartMu.Lock()
	current := cartState
	cartMu.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"count": len(current.Items),
		"items": current.Items,
		"total": current.Total(),
	})
}

type AddCartItemRequest struct {
	ID        uint    `json:"id" binding:"required"`
	CookID    uint    `json:"cook_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	UnitPrice float64 `json:"unit_price" binding:"min=0"`
}

// AddCartItem adds an item, enforcing the single-cook policy. A cook conflict
// is surfaced as a choice for the user (clear cart or cancel), never resolved
// automatically.
func AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := models.CartItem{
		ID:        req.ID,
		CookID:    req.CookID,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	}

	cartMu.Lock()
	defer cartMu.Unlock()
	updated, err := cart.Add(cartState, item)
	if err != nil {
		var conflict *cart.CookConflictError
		if errors.As(err, &conflict) {
			c.JSON(http.StatusConflict, gin.H{
				"error":             "Cart holds items from another cook",
				"existing_cook_id":  conflict.ExistingCookID,
				"attempted_cook_id": conflict.AttemptedCookID,
				"choices":           []string{"clear_cart", "cancel"},
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cartState = updated

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart",
		"count":   len(updated.Items),
		"total":   updated.Total(),
	})
}

// ClearCart empties the cart, e.g. after the user chooses to switch cooks
func ClearCart(c *gin.Context) {
	cartMu.Lock()
	cartState = models.Cart{}
	cartMu.Unlock()
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
