package app

import "github.com/rbarroso/comanda/internal/domain"

// View selects which screen the client renders.
type View string

const (
	ViewLogin    View = "login"
	ViewHome     View = "home"
	ViewMyOrders View = "my-orders"
)

// State is everything the presentation layer needs to render a frame. It is
// only ever replaced wholesale: the transition functions below take a State
// and return the next one, and the Controller swaps them in under its lock.
// Slices inside a State are treated as immutable once installed.
type State struct {
	View        View
	User        *domain.User
	Restaurants []domain.Restaurant
	Selected    *domain.Restaurant
	Menu        []domain.MenuItem
	MenuLoading bool
	Orders      []domain.Order

	// Receipt and Err are the dismissible confirmation and error banners.
	Receipt *domain.Receipt
	Err     string

	// menuGen tags the in-flight menu fetch; a completion carrying a stale
	// generation is discarded instead of overwriting the current menu.
	menuGen uint64
}

func initialState() State {
	return State{View: ViewLogin}
}

func signedIn(s State, user domain.User, restaurants []domain.Restaurant) State {
	s.View = ViewHome
	s.User = &user
	s.Restaurants = restaurants
	s.Err = ""
	return s
}

// signedOut resets everything except the menu generation, which keeps
// advancing so that fetches started before logout can never land.
func signedOut(s State) State {
	return State{View: ViewLogin, menuGen: s.menuGen + 1}
}

func restaurantSelected(s State, r domain.Restaurant) State {
	s.Selected = &r
	s.Menu = nil
	s.MenuLoading = true
	s.Err = ""
	s.menuGen++
	return s
}

func restaurantDeselected(s State) State {
	s.Selected = nil
	s.Menu = nil
	s.MenuLoading = false
	s.menuGen++
	return s
}

func menuLoaded(s State, gen uint64, items []domain.MenuItem) State {
	if gen != s.menuGen {
		return s
	}
	s.Menu = items
	s.MenuLoading = false
	return s
}

func menuFailed(s State, gen uint64, msg string) State {
	if gen != s.menuGen {
		return s
	}
	s.MenuLoading = false
	s.Err = msg
	return s
}

func ordersLoaded(s State, orders []domain.Order) State {
	s.View = ViewMyOrders
	s.Orders = orders
	s.Err = ""
	return s
}

func wentHome(s State) State {
	s.View = ViewHome
	return s
}

func receiptArrived(s State, r domain.Receipt) State {
	s.Receipt = &r
	s.Err = ""
	return s
}

func failed(s State, msg string) State {
	s.Err = msg
	return s
}

func receiptDismissed(s State) State {
	s.Receipt = nil
	return s
}

func errorDismissed(s State) State {
	s.Err = ""
	return s
}
