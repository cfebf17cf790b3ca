package models

import "time"

// Notification is an append-only status message for a customer.
type Notification struct {
	ID         int64     `db:"id" json:"NotificationID"`
	CustomerID int64     `db:"customer_id" json:"CustomerID"`
	OrderID    int64     `db:"order_id" json:"OrderID"`
	Message    string    `db:"message" json:"Message"`
	CreatedAt  time.Time `db:"created_at" json:"CreatedAt"`
	IsRead     bool      `db:"is_read" json:"IsRead"`
}
