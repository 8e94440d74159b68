package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rbarroso/comanda/internal/app"
)

// ui is a line-oriented terminal front end. It holds no state of its own:
// every frame is rendered from a fresh controller snapshot, and every
// command maps onto exactly one controller operation.
type ui struct {
	ctrl *app.Controller
	in   *bufio.Scanner
	out  io.Writer
}

func newUI(ctrl *app.Controller, in io.Reader, out io.Writer) *ui {
	return &ui{
		ctrl: ctrl,
		in:   bufio.NewScanner(in),
		out:  out,
	}
}

func (u *ui) Run(ctx context.Context) error {
	fmt.Fprintln(u.out, "comanda — food delivery client (type 'help' for commands)")
	u.render()

	for {
		fmt.Fprint(u.out, "> ")
		if !u.in.Scan() {
			return u.in.Err()
		}
		line := strings.TrimSpace(u.in.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]
		if cmd == "quit" || cmd == "exit" {
			return nil
		}

		u.dispatch(ctx, cmd, args)
		u.render()
	}
}

func (u *ui) dispatch(ctx context.Context, cmd string, args []string) {
	var err error
	switch cmd {
	case "help":
		u.printHelp()
	case "login":
		if len(args) != 1 {
			u.usage("login <email>")
			return
		}
		err = u.ctrl.SignIn(ctx, args[0])
	case "register":
		if len(args) != 3 {
			u.usage("register <name> <email> <phone>")
			return
		}
		err = u.ctrl.SignUp(ctx, args[0], args[1], args[2])
	case "logout":
		u.ctrl.SignOut()
	case "menu":
		var id int64
		if id, err = parseID(args, "menu <restaurant-id>"); err == nil {
			if err = u.ctrl.SelectRestaurant(ctx, id); err == nil {
				u.awaitMenu()
			}
		}
	case "back":
		u.ctrl.Deselect()
	case "add":
		var id int64
		if id, err = parseID(args, "add <item-id>"); err == nil {
			err = u.ctrl.AddToCart(id)
		}
	case "rm":
		var id int64
		if id, err = parseID(args, "rm <item-id>"); err == nil {
			err = u.ctrl.RemoveFromCart(id)
		}
	case "qty":
		if len(args) != 2 {
			u.usage("qty <item-id> <delta>")
			return
		}
		id, idErr := strconv.ParseInt(args[0], 10, 64)
		delta, deltaErr := strconv.Atoi(args[1])
		if idErr != nil || deltaErr != nil {
			u.usage("qty <item-id> <delta>")
			return
		}
		err = u.ctrl.AdjustQuantity(id, delta)
	case "checkout":
		_, err = u.ctrl.Checkout(ctx)
	case "orders":
		err = u.ctrl.OpenOrders(ctx)
	case "cancel":
		var id int64
		if id, err = parseID(args, "cancel <order-id>"); err == nil {
			err = u.ctrl.CancelOrder(ctx, id)
		}
	case "home":
		u.ctrl.GoHome()
	case "dismiss":
		u.ctrl.DismissReceipt()
		u.ctrl.DismissError()
	default:
		fmt.Fprintf(u.out, "unknown command %q, type 'help'\n", cmd)
	}

	if err != nil {
		fmt.Fprintf(u.out, "! %v\n", err)
	}
}

// awaitMenu blocks until the in-flight menu fetch settles, so the next
// rendered frame already has the menu (or its error banner).
func (u *ui) awaitMenu() {
	for u.ctrl.State().MenuLoading {
		<-u.ctrl.Updates()
	}
}

func parseID(args []string, usage string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: %s", usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("usage: %s", usage)
	}
	return id, nil
}

func (u *ui) usage(s string) {
	fmt.Fprintf(u.out, "usage: %s\n", s)
}

func (u *ui) printHelp() {
	fmt.Fprint(u.out, `commands:
  login <email>                  sign in
  register <name> <email> <phone>  create an account and sign in
  menu <restaurant-id>           open a restaurant's menu
  back                           return to the restaurant list
  add <item-id>                  add one unit to the cart
  rm <item-id>                   remove a cart line
  qty <item-id> <delta>          change a line's quantity
  checkout                       place the order
  orders                         show order history
  cancel <order-id>              cancel a pending order
  home                           back to the home screen
  dismiss                        clear banners
  logout                         end the session
  quit                           exit
`)
}

func (u *ui) render() {
	s := u.ctrl.State()

	if s.Err != "" {
		fmt.Fprintf(u.out, "[error] %s\n", s.Err)
	}
	if s.Receipt != nil {
		fmt.Fprintf(u.out, "[success] Order #%d placed! Total: %s\n", s.Receipt.OrderID, s.Receipt.Total)
	}

	switch s.View {
	case app.ViewLogin:
		fmt.Fprintln(u.out, "-- login: 'login <email>' or 'register <name> <email> <phone>'")
	case app.ViewMyOrders:
		u.renderOrders(s)
	default:
		u.renderHome(s)
	}
}

func (u *ui) renderHome(s app.State) {
	if s.Selected == nil {
		fmt.Fprintln(u.out, "-- restaurants")
		for _, r := range s.Restaurants {
			fmt.Fprintf(u.out, "  [%d] %s (%s) %s\n", r.ID, r.Name, r.CuisineType, r.Address)
		}
	} else {
		fmt.Fprintf(u.out, "-- %s, menu\n", s.Selected.Name)
		if s.MenuLoading {
			fmt.Fprintln(u.out, "  loading...")
		}
		for _, m := range s.Menu {
			fmt.Fprintf(u.out, "  [%d] %s %s  %s\n", m.ID, m.Name, m.Price, m.Description)
		}
	}

	lines := u.ctrl.CartLines()
	if len(lines) == 0 {
		fmt.Fprintln(u.out, "-- cart: empty")
		return
	}
	fmt.Fprintln(u.out, "-- cart")
	for _, l := range lines {
		fmt.Fprintf(u.out, "  [%d] %s  %s x %d = %s\n", l.ItemID, l.Name, l.Price, l.Quantity, l.Subtotal())
	}
	fmt.Fprintf(u.out, "  total: %s\n", u.ctrl.CartTotal())
}

func (u *ui) renderOrders(s app.State) {
	fmt.Fprintln(u.out, "-- my orders")
	if len(s.Orders) == 0 {
		fmt.Fprintln(u.out, "  no orders yet")
		return
	}
	for _, o := range s.Orders {
		fmt.Fprintf(u.out, "  Order #%d [%s] %s  total %s  %s\n",
			o.ID, strings.ToUpper(string(o.Status)), o.RestaurantName, o.Total,
			o.CreatedAt.Format("2006-01-02 15:04"))
		for _, it := range o.Items {
			fmt.Fprintf(u.out, "    %s x %d\n", it.Name, it.Quantity)
		}
	}
}
