package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rbarroso/comanda/internal/domain"
)

// The backend speaks decimal dollars and SQLite-style timestamps. These
// payload types keep that wire shape out of the domain model: prices become
// Cents and timestamps become time.Time at this boundary.

type restaurantPayload struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CuisineType string `json:"cuisine_type"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
}

func (p restaurantPayload) toDomain() domain.Restaurant {
	return domain.Restaurant{
		ID:          p.ID,
		Name:        p.Name,
		CuisineType: p.CuisineType,
		Address:     p.Address,
		Phone:       p.Phone,
	}
}

type menuItemPayload struct {
	ID           int64   `json:"id"`
	RestaurantID int64   `json:"restaurant_id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
}

func (p menuItemPayload) toDomain() domain.MenuItem {
	return domain.MenuItem{
		ID:           p.ID,
		RestaurantID: p.RestaurantID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        domain.CentsFromDollars(p.Price),
	}
}

type orderItemPayload struct {
	ItemID   int64   `json:"item_id"`
	ItemName string  `json:"item_name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type orderPayload struct {
	ID             int64              `json:"id"`
	UserID         int64              `json:"user_id"`
	RestaurantID   int64              `json:"restaurant_id"`
	RestaurantName string             `json:"restaurant_name"`
	TotalPrice     float64            `json:"total_price"`
	Status         string             `json:"status"`
	CreatedAt      wireTime           `json:"created_at"`
	Items          []orderItemPayload `json:"items"`
}

func (p orderPayload) toDomain() domain.Order {
	items := make([]domain.OrderItem, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, domain.OrderItem{
			ItemID:   it.ItemID,
			Name:     it.ItemName,
			Quantity: it.Quantity,
			Price:    domain.CentsFromDollars(it.Price),
		})
	}
	return domain.Order{
		ID:             p.ID,
		UserID:         p.UserID,
		RestaurantID:   p.RestaurantID,
		RestaurantName: p.RestaurantName,
		Items:          items,
		Total:          domain.CentsFromDollars(p.TotalPrice),
		Status:         domain.OrderStatus(p.Status),
		CreatedAt:      p.CreatedAt.Time,
	}
}

type receiptPayload struct {
	OrderID    int64   `json:"order_id"`
	TotalPrice float64 `json:"total_price"`
	Status     string  `json:"status"`
}

func (p receiptPayload) toDomain() domain.Receipt {
	return domain.Receipt{
		OrderID: p.OrderID,
		Total:   domain.CentsFromDollars(p.TotalPrice),
		Status:  domain.OrderStatus(p.Status),
	}
}

type userPayload struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (p userPayload) toDomain() domain.User {
	return domain.User{
		ID:    p.ID,
		Name:  p.Name,
		Email: p.Email,
		Phone: p.Phone,
	}
}

// wireTime accepts both RFC 3339 and the "2006-01-02 15:04:05" layout
// SQLite's CURRENT_TIMESTAMP produces.
type wireTime struct {
	time.Time
}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05"}

func (t *wireTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}
