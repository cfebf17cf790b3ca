package models

import "time"

// OrderStatus represents the lifecycle stage of an order.
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "Placed"
	OrderStatusPaid      OrderStatus = "Paid"
	OrderStatusInTransit OrderStatus = "InTransit"
	OrderStatusDelivered OrderStatus = "Delivered"
)

// Rank returns the position of the status in the lifecycle, or -1 when the
// status is unknown. Later stages have higher ranks.
func (s OrderStatus) Rank() int {
	switch s {
	case OrderStatusPlaced:
		return 0
	case OrderStatusPaid:
		return 1
	case OrderStatusInTransit:
		return 2
	case OrderStatusDelivered:
		return 3
	default:
		return -1
	}
}

// Valid reports whether s is one of the lifecycle statuses.
func (s OrderStatus) Valid() bool { return s.Rank() >= 0 }

// Order is one customer's purchase from one restaurant.
type Order struct {
	ID            int64       `db:"id" json:"OrderID"`
	CustomerID    int64       `db:"customer_id" json:"CustomerID"`
	RestaurantID  int64       `db:"restaurant_id" json:"RestaurantID"`
	LocationID    int64       `db:"location_id" json:"LocationID"`
	OrderDate     time.Time   `db:"order_date" json:"OrderDate"`
	TotalAmount   float64     `db:"total_amount" json:"TotalAmount"`
	TotalWeightKg float64     `db:"total_weight_kg" json:"TotalWeightKg"`
	Status        OrderStatus `db:"status" json:"Status"`
	Version       int64       `db:"version" json:"-"`
	Items         []OrderItem `json:"Items,omitempty"`
}

// OrderItem binds a menu item to an order. Unit price and weight are copied
// from the menu at the time the line is added.
type OrderItem struct {
	ID           int64   `db:"id" json:"OrderItemID"`
	OrderID      int64   `db:"order_id" json:"OrderID"`
	ItemID       int64   `db:"item_id" json:"ItemID"`
	Quantity     int     `db:"quantity" json:"Quantity"`
	UnitPrice    float64 `db:"unit_price" json:"UnitPrice"`
	UnitWeightKg float64 `db:"unit_weight_kg" json:"UnitWeightKg"`
}

// OrderSummary is an order joined with its restaurant name, as listed in a
// customer's history.
type OrderSummary struct {
	OrderID        int64       `json:"OrderID"`
	RestaurantID   int64       `json:"RestaurantID"`
	RestaurantName string      `json:"RestaurantName"`
	OrderDate      time.Time   `json:"OrderDate"`
	TotalAmount    float64     `json:"TotalAmount"`
	TotalWeightKg  float64     `json:"TotalWeightKg"`
	Status         OrderStatus `json:"Status"`
}

// Payment records how an order was paid.
type Payment struct {
	ID      int64     `db:"id" json:"PaymentID"`
	OrderID int64     `db:"order_id" json:"OrderID"`
	Method  string    `db:"method" json:"Method"`
	Amount  float64   `db:"amount" json:"Amount"`
	PaidAt  time.Time `db:"paid_at" json:"PaidAt"`
}
