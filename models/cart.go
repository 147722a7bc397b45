package models

// CartItem is one line of the customer cart.
type CartItem struct {
	ID        uint    `json:"id"`
	CookID    uint    `json:"cook_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Cart holds the customer's pending items. Invariant: every item in a
// non-empty cart shares the same CookID (single-cook policy).
type Cart struct {
	Items []CartItem `json:"items"`
}

// IsEmpty reports whether the cart holds no items.
func (c Cart) IsEmpty() bool { return len(c.Items) == 0 }

// CookID returns the cook the cart is bound to, false when the cart is empty.
func (c Cart) CookID() (uint, bool) {
	if c.IsEmpty() {
		return 0, false
	}
	return c.Items[0].CookID, true
}

// Total returns the cart's price total.
func (c Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}
