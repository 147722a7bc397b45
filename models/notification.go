package models

import "time"

// Notification mirrors one entry of the backend's recent-notification window.
// Identity is stable across polls: the same ID always refers to the same
// notification.
type Notification struct {
	ID             uint      `json:"id"`
	Subject        string    `json:"subject"`
	Message        string    `json:"message"`
	IsUnread       bool      `json:"is_unread"`
	RelatedOrderID *uint     `json:"related_order_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NotificationBatch is the server's view of the recent window. UnreadCount is
// server-reported rather than recomputed from Items, so a partial window
// cannot drift the unread badge.
type NotificationBatch struct {
	Items       []Notification `json:"items"`
	UnreadCount int            `json:"unread_count"`
}
