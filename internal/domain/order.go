package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Cancellable reports whether the backend still accepts a cancellation for
// an order in this status. Only pending orders can be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending
}

type OrderItem struct {
	ItemID   int64
	Name     string
	Quantity int
	Price    Cents
}

// Order is owned by the backend. The client never assigns the id or the
// total and only ever reads the status.
type Order struct {
	ID             int64
	UserID         int64
	RestaurantID   int64
	RestaurantName string
	Items          []OrderItem
	Total          Cents
	Status         OrderStatus
	CreatedAt      time.Time
}

// ItemQuantity is the {item id, quantity} pair an order submission carries.
// Prices are deliberately absent; the server prices orders from its own
// menu.
type ItemQuantity struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

// Receipt is the server's acknowledgement of a submitted order. OrderID and
// Total are authoritative.
type Receipt struct {
	OrderID int64
	Total   Cents
	Status  OrderStatus
}
