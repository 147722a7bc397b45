package cart

import (
	"errors"
	"fmt"

	"delivery-agent/models"
)

// ErrBadQuantity is returned when an item arrives with quantity below one.
var ErrBadQuantity = errors.New("cart item quantity must be at least 1")

// CookConflictError is returned when an item from a different cook is added
// to a non-empty cart. The caller must present this as a user choice (clear
// cart or cancel), never resolve it automatically.
type CookConflictError struct {
	ExistingCookID  uint
	AttemptedCookID uint
}

func (e *CookConflictError) Error() string {
	return fmt.Sprintf("cart holds items from cook %d; cannot add item from cook %d",
		e.ExistingCookID, e.AttemptedCookID)
}

// Add enforces the single-cook policy. An empty cart accepts any item; a
// non-empty cart only accepts items from its cook. Adding an item already in
// the cart merges quantities. The returned cart is a new value — on error the
// input cart's item list is untouched.
func Add(c models.Cart, item models.CartItem) (models.Cart, error) {
	if item.Quantity < 1 {
		return c, ErrBadQuantity
	}
	if existing, ok := c.CookID(); ok && existing != item.CookID {
		return c, &CookConflictError{ExistingCookID: existing, AttemptedCookID: item.CookID}
	}

	items := make([]models.CartItem, len(c.Items))
	copy(items, c.Items)
	merged := false
	for i := range items {
		if items[i].ID == item.ID {
			items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, item)
	}
	return models.Cart{Items: items}, nil
}
