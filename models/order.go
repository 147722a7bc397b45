package models

import "time"

// OrderStatus represents all possible states of a food delivery order
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusReady          OrderStatus = "ready"
	StatusPickedUp       OrderStatus = "picked_up"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusInTransit      OrderStatus = "in_transit"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
	StatusRefunded       OrderStatus = "refunded"

	// StatusUnknown is the fallback for backend status strings this client
	// does not recognize, so a typo on the wire cannot corrupt the machine.
	StatusUnknown OrderStatus = "unknown"
)

// IsTerminal reports whether no further transition is permitted from s.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusRefunded
}

// ParseStatus maps a raw backend status string onto the closed enumeration.
func ParseStatus(raw string) OrderStatus {
	switch OrderStatus(raw) {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady,
		StatusPickedUp, StatusOutForDelivery, StatusInTransit,
		StatusDelivered, StatusCancelled, StatusRefunded:
		return OrderStatus(raw)
	}
	return StatusUnknown
}

// Order is the client-side projection of a backend order. The backend owns
// the record; this copy is updated by polling and by local transitions, and
// is never written back except through explicit status pushes.
type Order struct {
	ID                uint        `json:"id"`
	Status            OrderStatus `json:"status"`
	CustomerName      string      `json:"customer_name"`
	DeliveryPartnerID *uint       `json:"delivery_partner_id,omitempty"`
	DeliveryAddress   string      `json:"delivery_address"`
	CurrentLocation   *Location   `json:"current_location,omitempty"`
	EstimatedTime     int         `json:"estimated_time_minutes,omitempty"` // ETA in minutes
	OpenIssueCount    int         `json:"open_issue_count"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}
