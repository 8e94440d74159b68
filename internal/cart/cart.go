package cart

import "github.com/rbarroso/comanda/internal/domain"

// Line binds a menu item to a quantity. Name and price are snapshotted when
// the item first enters the cart and are not refreshed by later adds.
type Line struct {
	ItemID   int64
	Name     string
	Price    domain.Cents
	Quantity int
}

func (l Line) Subtotal() domain.Cents {
	return l.Price * domain.Cents(l.Quantity)
}

// Cart is an insertion-ordered sequence of lines, at most one per item id,
// every stored line with quantity >= 1. It is not safe for concurrent use;
// the owning controller serializes access.
type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add puts one unit of item in the cart, merging into the existing line
// when the item is already present.
func (c *Cart) Add(item domain.MenuItem) {
	for i := range c.lines {
		if c.lines[i].ItemID == item.ID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, Line{
		ItemID:   item.ID,
		Name:     item.Name,
		Price:    item.Price,
		Quantity: 1,
	})
}

// Remove deletes the line for itemID. Removing an absent item is a no-op.
func (c *Cart) Remove(itemID int64) {
	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Adjust changes a line's quantity by delta, which may be any integer. A
// resulting quantity of zero or below removes the line entirely; adjusting
// an absent item is a no-op.
func (c *Cart) Adjust(itemID int64, delta int) {
	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			if c.lines[i].Quantity+delta <= 0 {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
			} else {
				c.lines[i].Quantity += delta
			}
			return
		}
	}
}

// Total recomputes the cart total on every call.
func (c *Cart) Total() domain.Cents {
	var total domain.Cents
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

// Lines returns a copy of the cart in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Items flattens the cart into the pairs an order submission carries.
func (c *Cart) Items() []domain.ItemQuantity {
	items := make([]domain.ItemQuantity, 0, len(c.lines))
	for _, l := range c.lines {
		items = append(items, domain.ItemQuantity{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	return items
}
