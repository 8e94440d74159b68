package domain

type Restaurant struct {
	ID          int64
	Name        string
	CuisineType string
	Address     string
	Phone       string
}

// MenuItem is immutable once fetched; the cart snapshots the fields it
// needs instead of holding a reference.
type MenuItem struct {
	ID           int64
	RestaurantID int64
	Name         string
	Description  string
	Price        Cents
}
