package app

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rbarroso/comanda/internal/domain"
	"github.com/rbarroso/comanda/internal/gateway"
)

var checkoutTracer = otel.Tracer("app/checkout")

// Checkout submits the current cart as an order. On success the cart is
// cleared, the server's receipt becomes the confirmation banner and the
// view stays on home. On any failure the cart is left exactly as it was.
// The cart is frozen while the submission is in flight; a concurrent call
// is rejected with ErrCheckoutInFlight, not queued.
func (c *Controller) Checkout(ctx context.Context) (domain.Receipt, error) {
	c.mu.Lock()
	switch {
	case c.submitting:
		c.mu.Unlock()
		return domain.Receipt{}, ErrCheckoutInFlight
	case c.state.User == nil:
		c.mu.Unlock()
		return domain.Receipt{}, ErrNotSignedIn
	case c.state.Selected == nil:
		c.mu.Unlock()
		return domain.Receipt{}, ErrNoRestaurant
	case c.cart.Empty():
		c.mu.Unlock()
		c.apply(func(s State) State { return failed(s, "Cart is empty!") })
		return domain.Receipt{}, ErrEmptyCart
	}

	req := gateway.OrderRequest{
		UserID:       c.state.User.ID,
		RestaurantID: c.state.Selected.ID,
		Items:        c.cart.Items(),
	}
	c.submitting = true
	c.mu.Unlock()
	c.signal()

	ctx, span := checkoutTracer.Start(ctx, "checkout",
		trace.WithAttributes(
			attribute.Int64("restaurant.id", req.RestaurantID),
			attribute.Int("cart.lines", len(req.Items)),
		),
	)
	defer span.End()

	start := time.Now()
	receipt, err := c.gw.CreateOrder(ctx, req)
	c.checkoutTime.Record(ctx, time.Since(start).Seconds())

	c.mu.Lock()
	c.submitting = false
	if err != nil {
		c.state = failed(c.state, userMessage(err, "Failed to place order"))
		c.mu.Unlock()
		c.signal()

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error("checkout failed", "restaurant_id", req.RestaurantID, "error", err)
		return domain.Receipt{}, err
	}
	c.cart.Clear()
	c.state = receiptArrived(c.state, receipt)
	c.mu.Unlock()
	c.signal()

	c.ordersPlaced.Add(ctx, 1)
	span.SetAttributes(attribute.Int64("order.id", receipt.OrderID))
	c.logger.Info("order placed", "order_id", receipt.OrderID, "total", receipt.Total.String())
	return receipt, nil
}
