package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"delivery-agent/models"

	"github.com/google/uuid"
)

// Client talks to the platform backend over REST. It holds a pooled transport
// and attaches the agent's bearer token plus a request id to every call;
// per-call deadlines come from the caller's context.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a backend client for the given base URL. The token may be empty
// during local development against an unauthenticated backend.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
			},
		},
	}
}

// orderWire is the backend's order shape. Status arrives as a free-form
// string and is normalized before it reaches the projection layer.
type orderWire struct {
	ID                uint             `json:"id"`
	Status            string           `json:"status"`
	CustomerName      string           `json:"customer_name"`
	DeliveryPartnerID *uint            `json:"delivery_partner_id"`
	DeliveryAddress   string           `json:"delivery_address"`
	CurrentLocation   *models.Location `json:"current_location"`
	EstimatedTime     int              `json:"estimated_time_minutes"`
	OpenIssueCount    int              `json:"open_issue_count"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

func (w orderWire) toOrder() models.Order {
	return models.Order{
		ID:                w.ID,
		Status:            models.ParseStatus(w.Status),
		CustomerName:      w.CustomerName,
		DeliveryPartnerID: w.DeliveryPartnerID,
		DeliveryAddress:   w.DeliveryAddress,
		CurrentLocation:   w.CurrentLocation,
		EstimatedTime:     w.EstimatedTime,
		OpenIssueCount:    w.OpenIssueCount,
		CreatedAt:         w.CreatedAt,
		UpdatedAt:         w.UpdatedAt,
	}
}

// RecentNotifications fetches the authoritative recent window.
func (c *Client) RecentNotifications(ctx context.Context) (models.NotificationBatch, error) {
	var batch models.NotificationBatch
	err := c.do(ctx, http.MethodGet, "/notifications/recent", nil, &batch)
	return batch, err
}

// MarkNotificationRead confirms a single read flip with the server.
func (c *Client) MarkNotificationRead(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/notifications/%d/read", id), nil, nil)
}

// MarkAllNotificationsRead confirms a bulk read flip with the server.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/notifications/read-all", nil, nil)
}

// ClearNotifications asks the server to destroy the recent window.
func (c *Client) ClearNotifications(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/notifications/clear", nil, nil)
}

// ForwardLocation pushes one position fix to the delivery location sink.
func (c *Client) ForwardLocation(ctx context.Context, loc models.Location) error {
	return c.do(ctx, http.MethodPost, "/delivery/location", loc, nil)
}

// AvailableOrders lists unassigned orders ready for pickup.
func (c *Client) AvailableOrders(ctx context.Context) ([]models.Order, error) {
	return c.fetchOrders(ctx, "/delivery/available-orders")
}

// AssignedOrders lists the orders assigned to this agent.
func (c *Client) AssignedOrders(ctx context.Context) ([]models.Order, error) {
	return c.fetchOrders(ctx, "/delivery/assigned-orders")
}

func (c *Client) fetchOrders(ctx context.Context, path string) ([]models.Order, error) {
	var wire []orderWire
	if err := c.do(ctx, http.MethodGet, path, nil, &wire); err != nil {
		return nil, err
	}
	orders := make([]models.Order, 0, len(wire))
	for _, w := range wire {
		orders = append(orders, w.toOrder())
	}
	return orders, nil
}

// OptimizeRoute asks the backend optimizer for a visiting order. The backend
// is an opaque black box; preconditions and fallback live in the route
// package, not here.
func (c *Client) OptimizeRoute(ctx context.Context, orderIDs []uint) (models.RouteResult, error) {
	body := map[string][]uint{"orderIds": orderIDs}
	var result models.RouteResult
	err := c.do(ctx, http.MethodPost, "/delivery/route/optimize", body, &result)
	return result, err
}

// PushOrderStatus reports a locally performed transition to the backend.
func (c *Client) PushOrderStatus(ctx context.Context, orderID uint, status models.OrderStatus) error {
	body := map[string]string{"status": string(status)}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/orders/%d/status", orderID), body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	op := method + " " + path

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServerError{Op: op, StatusCode: resp.StatusCode}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s: decode response: %w", op, err)
		}
	}
	return nil
}
