package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/rbarroso/comanda/internal/cart"
	"github.com/rbarroso/comanda/internal/domain"
	"github.com/rbarroso/comanda/internal/gateway"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrNotSignedIn      = errors.New("no user is signed in")
	ErrNoRestaurant     = errors.New("no restaurant is selected")
	ErrCheckoutInFlight = errors.New("an order submission is already in flight")
	ErrItemNotOnMenu    = errors.New("item is not on the current menu")
)

// Gateway is the remote service boundary the controller drives. It is
// satisfied by *gateway.Client.
type Gateway interface {
	ListRestaurants(ctx context.Context) ([]domain.Restaurant, error)
	Menu(ctx context.Context, restaurantID int64) ([]domain.MenuItem, error)
	Orders(ctx context.Context, userID int64) ([]domain.Order, error)
	CreateOrder(ctx context.Context, order gateway.OrderRequest) (domain.Receipt, error)
	CancelOrder(ctx context.Context, orderID int64) error
	Register(ctx context.Context, name, email, phone string) (domain.User, error)
}

// Controller owns the session state and the cart. Every mutation funnels
// through its mutex, so the state moves in atomic steps no matter how many
// goroutines the host UI runs.
type Controller struct {
	gw     Gateway
	logger *slog.Logger

	mu         sync.Mutex
	state      State
	cart       *cart.Cart
	submitting bool
	cancelMenu context.CancelFunc

	fetches sync.WaitGroup
	updates chan struct{}

	ordersPlaced metric.Int64Counter
	checkoutTime metric.Float64Histogram
}

func New(gw Gateway, logger *slog.Logger) (*Controller, error) {
	meter := otel.Meter("comanda/app")

	ordersPlaced, err := meter.Int64Counter("comanda.orders.placed",
		metric.WithDescription("Orders accepted by the backend."))
	if err != nil {
		return nil, err
	}
	checkoutTime, err := meter.Float64Histogram("comanda.checkout.duration",
		metric.WithDescription("Time spent submitting an order."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &Controller{
		gw:           gw,
		logger:       logger,
		state:        initialState(),
		cart:         cart.New(),
		updates:      make(chan struct{}, 1),
		ordersPlaced: ordersPlaced,
		checkoutTime: checkoutTime,
	}, nil
}

// Updates signals that the state changed and the current frame should be
// re-rendered. Signals coalesce; one receive may cover several transitions.
func (c *Controller) Updates() <-chan struct{} {
	return c.updates
}

// State returns a snapshot of the current view state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close cancels any in-flight menu fetch and waits for background fetches
// to settle.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.cancelMenu != nil {
		c.cancelMenu()
		c.cancelMenu = nil
	}
	c.mu.Unlock()
	c.fetches.Wait()
}

func (c *Controller) apply(next func(State) State) {
	c.mu.Lock()
	c.state = next(c.state)
	c.mu.Unlock()
	c.signal()
}

func (c *Controller) signal() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}

// SignIn establishes the session. The backend has no login endpoint, so any
// email is accepted once the restaurant list is reachable and the session
// runs as the seeded demo user.
func (c *Controller) SignIn(ctx context.Context, email string) error {
	restaurants, err := c.gw.ListRestaurants(ctx)
	if err != nil {
		c.apply(func(s State) State { return failed(s, "Failed to connect to server") })
		return err
	}

	user := domain.User{ID: 1, Name: "Alice Johnson", Email: email}
	c.apply(func(s State) State { return signedIn(s, user, restaurants) })
	c.logger.Info("signed in", "email", email)
	return nil
}

// SignUp registers a new account and signs in as it.
func (c *Controller) SignUp(ctx context.Context, name, email, phone string) error {
	user, err := c.gw.Register(ctx, name, email, phone)
	if err != nil {
		c.apply(func(s State) State { return failed(s, userMessage(err, "Failed to register")) })
		return err
	}

	restaurants, err := c.gw.ListRestaurants(ctx)
	if err != nil {
		c.apply(func(s State) State { return failed(s, "Failed to connect to server") })
		return err
	}

	c.apply(func(s State) State { return signedIn(s, user, restaurants) })
	c.logger.Info("registered and signed in", "user_id", user.ID, "email", email)
	return nil
}

// SignOut ends the session: user, cart, selection, menu and banners are all
// cleared and the view returns to login.
func (c *Controller) SignOut() {
	c.mu.Lock()
	if c.cancelMenu != nil {
		c.cancelMenu()
		c.cancelMenu = nil
	}
	c.cart.Clear()
	c.state = signedOut(c.state)
	c.mu.Unlock()
	c.signal()
	c.logger.Info("signed out")
}

// SelectRestaurant sets the selection and starts the menu fetch in the
// background; Updates fires again when the menu arrives. Picking a
// different restaurant than the current one starts a fresh cart: a cart
// holds items from exactly one restaurant.
func (c *Controller) SelectRestaurant(ctx context.Context, id int64) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrCheckoutInFlight
	}

	var target *domain.Restaurant
	for i := range c.state.Restaurants {
		if c.state.Restaurants[i].ID == id {
			target = &c.state.Restaurants[i]
			break
		}
	}
	if target == nil {
		c.mu.Unlock()
		return fmt.Errorf("unknown restaurant %d", id)
	}

	if c.state.Selected != nil && c.state.Selected.ID != id {
		c.cart.Clear()
	}
	if c.cancelMenu != nil {
		c.cancelMenu()
	}

	c.state = restaurantSelected(c.state, *target)
	gen := c.state.menuGen

	// The fetch outlives the triggering UI event; it is cancelled by a
	// later selection change or Close, not by the caller's context.
	fetchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancelMenu = cancel
	c.mu.Unlock()
	c.signal()

	c.fetches.Add(1)
	go func() {
		defer c.fetches.Done()
		items, err := c.gw.Menu(fetchCtx, id)
		if err != nil {
			if fetchCtx.Err() == nil {
				c.logger.Error("menu fetch failed", "restaurant_id", id, "error", err)
			}
			c.apply(func(s State) State { return menuFailed(s, gen, userMessage(err, "Failed to fetch menu")) })
			return
		}
		c.apply(func(s State) State { return menuLoaded(s, gen, items) })
	}()
	return nil
}

// Deselect returns to the restaurant list. An outstanding menu fetch is
// cancelled and its late response discarded. The cart is kept; only
// switching to a different restaurant clears it.
func (c *Controller) Deselect() {
	c.mu.Lock()
	if c.cancelMenu != nil {
		c.cancelMenu()
		c.cancelMenu = nil
	}
	c.state = restaurantDeselected(c.state)
	c.mu.Unlock()
	c.signal()
}

// GoHome switches to the home view with no side effects.
func (c *Controller) GoHome() {
	c.apply(wentHome)
}

// OpenOrders fetches the signed-in user's order history and shows it.
func (c *Controller) OpenOrders(ctx context.Context) error {
	c.mu.Lock()
	user := c.state.User
	c.mu.Unlock()
	if user == nil {
		return ErrNotSignedIn
	}

	orders, err := c.gw.Orders(ctx, user.ID)
	if err != nil {
		c.apply(func(s State) State { return failed(s, userMessage(err, "Failed to fetch orders")) })
		return err
	}

	c.apply(func(s State) State { return ordersLoaded(s, orders) })
	return nil
}

// CancelOrder cancels a pending order and refreshes the history in place.
func (c *Controller) CancelOrder(ctx context.Context, orderID int64) error {
	c.mu.Lock()
	user := c.state.User
	c.mu.Unlock()
	if user == nil {
		return ErrNotSignedIn
	}

	if err := c.gw.CancelOrder(ctx, orderID); err != nil {
		c.apply(func(s State) State { return failed(s, userMessage(err, "Failed to cancel order")) })
		return err
	}
	c.logger.Info("order cancelled", "order_id", orderID)

	orders, err := c.gw.Orders(ctx, user.ID)
	if err != nil {
		c.apply(func(s State) State { return failed(s, userMessage(err, "Failed to fetch orders")) })
		return err
	}

	c.apply(func(s State) State { return ordersLoaded(s, orders) })
	return nil
}

// AddToCart puts one unit of a currently listed menu item in the cart.
func (c *Controller) AddToCart(itemID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return ErrCheckoutInFlight
	}
	for _, item := range c.state.Menu {
		if item.ID == itemID {
			c.cart.Add(item)
			c.signal()
			return nil
		}
	}
	return ErrItemNotOnMenu
}

func (c *Controller) RemoveFromCart(itemID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return ErrCheckoutInFlight
	}
	c.cart.Remove(itemID)
	c.signal()
	return nil
}

func (c *Controller) AdjustQuantity(itemID int64, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return ErrCheckoutInFlight
	}
	c.cart.Adjust(itemID, delta)
	c.signal()
	return nil
}

// CartLines returns the cart contents in insertion order.
func (c *Controller) CartLines() []cart.Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.Lines()
}

func (c *Controller) CartTotal() domain.Cents {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.Total()
}

func (c *Controller) DismissReceipt() {
	c.apply(receiptDismissed)
}

func (c *Controller) DismissError() {
	c.apply(errorDismissed)
}

// userMessage prefers the server's own wording for a failure and falls back
// to a generic message for transport-level errors.
func userMessage(err error, fallback string) string {
	var apiErr *gateway.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
