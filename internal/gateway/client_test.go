package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rbarroso/comanda/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(server *httptest.Server) *Client {
	return New(server.URL+"/api", server.Client(), testLogger())
}

func TestClient_ListRestaurants(t *testing.T) {
	t.Run("decodes the restaurant list", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/restaurants" {
				t.Errorf("expected /api/restaurants, got %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"id": 1, "name": "Bella Italia", "cuisine_type": "Italian", "address": "12 High St", "phone": "555-0101"},
				{"id": 2, "name": "Dragon Wok", "cuisine_type": "Chinese", "address": "4 Low Rd", "phone": "555-0102"}
			]`))
		}))
		defer server.Close()

		restaurants, err := newTestClient(server).ListRestaurants(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(restaurants) != 2 {
			t.Fatalf("expected 2 restaurants, got %d", len(restaurants))
		}
		want := domain.Restaurant{ID: 1, Name: "Bella Italia", CuisineType: "Italian", Address: "12 High St", Phone: "555-0101"}
		if restaurants[0] != want {
			t.Errorf("restaurants[0] = %+v, want %+v", restaurants[0], want)
		}
	})

	t.Run("wraps transport failures", func(t *testing.T) {
		client := New("http://127.0.0.1:1", &http.Client{Timeout: time.Second}, testLogger())

		_, err := client.ListRestaurants(context.Background())
		if err == nil {
			t.Fatal("expected error for unreachable server")
		}
		var apiErr *Error
		if errors.As(err, &apiErr) {
			t.Errorf("transport failure should not be an *Error, got %v", apiErr)
		}
	})
}

func TestClient_Menu(t *testing.T) {
	t.Run("converts dollar prices to cents", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/menu/7" {
				t.Errorf("expected /api/menu/7, got %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"id": 10, "restaurant_id": 7, "name": "Margherita", "description": "Tomato and mozzarella", "price": 9.99},
				{"id": 11, "restaurant_id": 7, "name": "Tiramisu", "description": "", "price": 5.1}
			]`))
		}))
		defer server.Close()

		items, err := newTestClient(server).Menu(context.Background(), 7)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if items[0].Price != 999 {
			t.Errorf("expected 999 cents, got %d", items[0].Price)
		}
		if items[1].Price != 510 {
			t.Errorf("expected 510 cents, got %d", items[1].Price)
		}
	})

	t.Run("surfaces the server error message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error": "Restaurant not found or no menu items"}`))
		}))
		defer server.Close()

		_, err := newTestClient(server).Menu(context.Background(), 99)

		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *Error, got %v", err)
		}
		if apiErr.StatusCode != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", apiErr.StatusCode)
		}
		if apiErr.Message != "Restaurant not found or no menu items" {
			t.Errorf("unexpected message: %q", apiErr.Message)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := newTestClient(server).Menu(ctx, 7); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}

func TestClient_Orders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/orders/1" {
			t.Errorf("expected /api/orders/1, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{
			"id": 42,
			"user_id": 1,
			"restaurant_id": 7,
			"restaurant_name": "Bella Italia",
			"total_price": 13.5,
			"status": "confirmed",
			"created_at": "2026-08-29 12:30:05",
			"items": [
				{"order_id": 42, "item_id": 10, "item_name": "Margherita", "quantity": 2, "price": 5.0}
			]
		}]`))
	}))
	defer server.Close()

	orders, err := newTestClient(server).Orders(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}

	order := orders[0]
	if order.ID != 42 || order.RestaurantName != "Bella Italia" {
		t.Errorf("unexpected order: %+v", order)
	}
	if order.Total != 1350 {
		t.Errorf("expected total 1350 cents, got %d", order.Total)
	}
	if order.Status != domain.OrderStatusConfirmed {
		t.Errorf("expected confirmed, got %s", order.Status)
	}
	wantTime := time.Date(2026, 8, 29, 12, 30, 5, 0, time.UTC)
	if !order.CreatedAt.Equal(wantTime) {
		t.Errorf("expected created_at %v, got %v", wantTime, order.CreatedAt)
	}
	if len(order.Items) != 1 || order.Items[0].Name != "Margherita" || order.Items[0].Price != 500 {
		t.Errorf("unexpected items: %+v", order.Items)
	}
}

func TestClient_CreateOrder(t *testing.T) {
	t.Run("sends the submission payload without prices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/api/orders" {
				t.Errorf("expected POST /api/orders, got %s %s", r.Method, r.URL.Path)
			}
			if r.Header.Get("Content-Type") != "application/json" {
				t.Errorf("expected application/json, got %s", r.Header.Get("Content-Type"))
			}
			if r.Header.Get("X-Request-Id") == "" {
				t.Error("expected an X-Request-Id header")
			}

			body, _ := io.ReadAll(r.Body)
			var raw map[string]json.RawMessage
			if err := json.Unmarshal(body, &raw); err != nil {
				t.Fatalf("invalid request body: %v", err)
			}
			var items []map[string]json.RawMessage
			if err := json.Unmarshal(raw["items"], &items); err != nil {
				t.Fatalf("invalid items: %v", err)
			}
			for _, item := range items {
				if _, ok := item["price"]; ok {
					t.Error("submission must not carry prices")
				}
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"order_id": 42, "total_price": 13.5, "status": "pending"}`))
		}))
		defer server.Close()

		receipt, err := newTestClient(server).CreateOrder(context.Background(), OrderRequest{
			UserID:       1,
			RestaurantID: 7,
			Items: []domain.ItemQuantity{
				{ItemID: 10, Quantity: 2},
				{ItemID: 11, Quantity: 1},
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if receipt.OrderID != 42 {
			t.Errorf("expected order id 42, got %d", receipt.OrderID)
		}
		if receipt.Total != 1350 {
			t.Errorf("expected total 1350 cents, got %d", receipt.Total)
		}
		if receipt.Status != domain.OrderStatusPending {
			t.Errorf("expected pending, got %s", receipt.Status)
		}
	})

	t.Run("returns the server rejection verbatim", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error": "Menu item 10 not found for this restaurant"}`))
		}))
		defer server.Close()

		_, err := newTestClient(server).CreateOrder(context.Background(), OrderRequest{
			UserID:       1,
			RestaurantID: 7,
			Items:        []domain.ItemQuantity{{ItemID: 10, Quantity: 1}},
		})

		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *Error, got %v", err)
		}
		if apiErr.Message != "Menu item 10 not found for this restaurant" {
			t.Errorf("unexpected message: %q", apiErr.Message)
		}
	})
}

func TestClient_CancelOrder(t *testing.T) {
	t.Run("issues a delete", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete || r.URL.Path != "/api/orders/42" {
				t.Errorf("expected DELETE /api/orders/42, got %s %s", r.Method, r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"message": "Order cancelled successfully", "id": 42}`))
		}))
		defer server.Close()

		if err := newTestClient(server).CancelOrder(context.Background(), 42); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("rejects non-pending orders with the server message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error": "Cannot cancel order with status 'delivered'"}`))
		}))
		defer server.Close()

		err := newTestClient(server).CancelOrder(context.Background(), 42)

		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *Error, got %v", err)
		}
		if apiErr.StatusCode != http.StatusConflict {
			t.Errorf("expected 409, got %d", apiErr.StatusCode)
		}
	})
}

func TestClient_Register(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/register" {
			t.Errorf("expected POST /api/register, got %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var req map[string]string
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("invalid request body: %v", err)
		}
		if req["name"] != "Dana" || req["email"] != "dana@example.com" || req["phone"] != "555-0199" {
			t.Errorf("unexpected request: %v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 4, "name": "Dana", "email": "dana@example.com", "phone": "555-0199"}`))
	}))
	defer server.Close()

	user, err := newTestClient(server).Register(context.Background(), "Dana", "dana@example.com", "555-0199")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.User{ID: 4, Name: "Dana", Email: "dana@example.com", Phone: "555-0199"}
	if user != want {
		t.Errorf("user = %+v, want %+v", user, want)
	}
}

func TestErrorMessage(t *testing.T) {
	withMessage := &Error{StatusCode: 409, Message: "Email already registered"}
	if withMessage.Error() != "Email already registered" {
		t.Errorf("unexpected error string: %q", withMessage.Error())
	}

	withoutMessage := &Error{StatusCode: 500}
	if withoutMessage.Error() != "server returned status 500" {
		t.Errorf("unexpected error string: %q", withoutMessage.Error())
	}
}

func TestWireTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"sqlite layout", `"2026-08-29 12:30:05"`, time.Date(2026, 8, 29, 12, 30, 5, 0, time.UTC)},
		{"rfc3339", `"2026-08-29T12:30:05Z"`, time.Date(2026, 8, 29, 12, 30, 5, 0, time.UTC)},
		{"empty string", `""`, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var wt wireTime
			if err := json.Unmarshal([]byte(tt.input), &wt); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !wt.Time.Equal(tt.want) {
				t.Errorf("got %v, want %v", wt.Time, tt.want)
			}
		})
	}

	t.Run("rejects garbage", func(t *testing.T) {
		var wt wireTime
		if err := json.Unmarshal([]byte(`"yesterday"`), &wt); err == nil {
			t.Error("expected error for unrecognized layout")
		}
	})
}
