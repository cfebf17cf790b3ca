package models

import "time"

// DroneStatus represents the availability of a drone.
type DroneStatus string

const (
	DroneStatusAvailable DroneStatus = "Available"
	DroneStatusAssigned  DroneStatus = "Assigned"
	DroneStatusRetired   DroneStatus = "Retired"
)

// Drone represents a delivery drone.
type Drone struct {
	ID           int64       `db:"id" json:"DroneID"`
	SerialNumber string      `db:"serial_number" json:"SerialNumber"`
	Name         string      `db:"name" json:"Name"`
	CapacityKg   float64     `db:"capacity_kg" json:"Capacity"`
	MaxHeightM   float64     `db:"max_height_m" json:"MaxHeight"`
	RangeKm      float64     `db:"range_km" json:"RangeKm"`
	Status       DroneStatus `db:"status" json:"Status"`
}

// DeliveryStatus represents the progress of a delivery.
type DeliveryStatus string

const (
	DeliveryStatusAssigned  DeliveryStatus = "Assigned"
	DeliveryStatusInTransit DeliveryStatus = "InTransit"
	DeliveryStatusCompleted DeliveryStatus = "Completed"
)

// Delivery tracks one drone's fulfillment of one order.
// EndTime is non-nil exactly when Status is Completed.
type Delivery struct {
	ID        int64          `db:"id" json:"DeliveryID"`
	OrderID   int64          `db:"order_id" json:"OrderID"`
	DroneID   int64          `db:"drone_id" json:"DroneID"`
	Status    DeliveryStatus `db:"status" json:"Status"`
	StartTime time.Time      `db:"start_time" json:"StartTime"`
	EndTime   *time.Time     `db:"end_time" json:"EndTime,omitempty"`
}
