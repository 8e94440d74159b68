package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rbarroso/comanda/internal/domain"
)

// Error is a non-success response from the backend. Message carries the
// server's own wording when the response body had one; callers surface it
// to the user verbatim.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned status %d", e.StatusCode)
}

// Client talks to the food-delivery REST API. Wrap the http.Client's
// transport with otelhttp to trace outbound calls.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func New(baseURL string, client *http.Client, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger,
	}
}

func (c *Client) ListRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	var payload []restaurantPayload
	if err := c.get(ctx, "/restaurants", &payload); err != nil {
		return nil, err
	}

	restaurants := make([]domain.Restaurant, 0, len(payload))
	for _, r := range payload {
		restaurants = append(restaurants, r.toDomain())
	}
	return restaurants, nil
}

func (c *Client) Menu(ctx context.Context, restaurantID int64) ([]domain.MenuItem, error) {
	var payload []menuItemPayload
	if err := c.get(ctx, fmt.Sprintf("/menu/%d", restaurantID), &payload); err != nil {
		return nil, err
	}

	items := make([]domain.MenuItem, 0, len(payload))
	for _, m := range payload {
		items = append(items, m.toDomain())
	}
	return items, nil
}

func (c *Client) Orders(ctx context.Context, userID int64) ([]domain.Order, error) {
	var payload []orderPayload
	if err := c.get(ctx, fmt.Sprintf("/orders/%d", userID), &payload); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(payload))
	for _, o := range payload {
		orders = append(orders, o.toDomain())
	}
	return orders, nil
}

// OrderRequest is the submission payload for a new order. Prices are not
// part of it; the server is the source of truth for pricing.
type OrderRequest struct {
	UserID       int64                 `json:"user_id"`
	RestaurantID int64                 `json:"restaurant_id"`
	Items        []domain.ItemQuantity `json:"items"`
}

// CreateOrder submits an order and returns the server's receipt. Each
// submission carries a fresh X-Request-Id so retries are distinguishable
// server-side.
func (c *Client) CreateOrder(ctx context.Context, order OrderRequest) (domain.Receipt, error) {
	data, err := json.Marshal(order)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(data))
	if err != nil {
		return domain.Receipt{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.New().String())

	var payload receiptPayload
	if err := c.do(req, &payload); err != nil {
		return domain.Receipt{}, err
	}

	c.logger.Info("order submitted", "order_id", payload.OrderID, "user_id", order.UserID)
	return payload.toDomain(), nil
}

// CancelOrder asks the backend to cancel a pending order.
func (c *Client) CancelOrder(ctx context.Context, orderID int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/orders/%d", c.baseURL, orderID), nil)
	if err != nil {
		return err
	}
	if err := c.do(req, nil); err != nil {
		return err
	}

	c.logger.Info("order cancelled", "order_id", orderID)
	return nil
}

// Register creates a new user account.
func (c *Client) Register(ctx context.Context, name, email, phone string) (domain.User, error) {
	data, err := json.Marshal(map[string]string{
		"name":  name,
		"email": email,
		"phone": phone,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("marshal register request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/register", bytes.NewReader(data))
	if err != nil {
		return domain.User{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var payload userPayload
	if err := c.do(req, &payload); err != nil {
		return domain.User{}, err
	}

	c.logger.Info("user registered", "user_id", payload.ID, "email", payload.Email)
	return payload.toDomain(), nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil {
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &payload) == nil {
			apiErr.Message = payload.Error
		}
	}
	return apiErr
}
