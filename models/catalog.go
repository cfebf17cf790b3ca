package models

// Customer places orders.
type Customer struct {
	ID       int64  `db:"id" json:"CustomerID"`
	Name     string `db:"name" json:"Name"`
	Phone    string `db:"phone" json:"Phone"`
	Email    string `db:"email" json:"Email"`
	Address  string `db:"address" json:"Address"`
	Username string `db:"username" json:"Username"`
	// PasswordHash is a bcrypt hash; empty for customers created without credentials.
	PasswordHash string `db:"password_hash" json:"-"`
}

// Restaurant is where orders are prepared and drones take off from.
type Restaurant struct {
	ID       int64   `db:"id" json:"RestaurantID"`
	Name     string  `db:"name" json:"Name"`
	Location string  `db:"location" json:"Location"`
	Contact  string  `db:"contact" json:"Contact"`
	Lat      float64 `db:"lat" json:"Lat"`
	Lng      float64 `db:"lng" json:"Lng"`
}

// Location is a delivery address.
type Location struct {
	ID         int64   `db:"id" json:"LocationID"`
	CustomerID *int64  `db:"customer_id" json:"CustomerID,omitempty"`
	Label      string  `db:"label" json:"Label"`
	Address    string  `db:"address" json:"Address"`
	Lat        float64 `db:"lat" json:"Lat"`
	Lng        float64 `db:"lng" json:"Lng"`
}

// MenuItemStatus tells whether an item can be ordered.
type MenuItemStatus string

const (
	MenuItemActive   MenuItemStatus = "Active"
	MenuItemInactive MenuItemStatus = "Inactive"
)

// MenuItem is something a restaurant sells.
type MenuItem struct {
	ID           int64          `db:"id" json:"ItemID"`
	RestaurantID int64          `db:"restaurant_id" json:"RestaurantID"`
	Name         string         `db:"name" json:"Name"`
	Description  string         `db:"description" json:"Description"`
	Price        float64        `db:"price" json:"Price"`
	WeightKg     float64        `db:"weight_kg" json:"WeightKg"`
	Status       MenuItemStatus `db:"status" json:"Status"`
}
