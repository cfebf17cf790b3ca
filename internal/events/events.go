// Package events publishes order lifecycle events to message brokers.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"droneFoodDelivery/models"
)

// Type names an order event. It doubles as the broker routing key.
type Type string

const (
	TypeOrderPlaced    Type = "order.placed"
	TypeOrderPaid      Type = "order.paid"
	TypeDroneAssigned  Type = "order.drone_assigned"
	TypeOrderDelivered Type = "order.delivered"
)

// OrderEvent is published after a lifecycle transition has been committed.
type OrderEvent struct {
	Type        Type               `json:"type"`
	OrderID     int64              `json:"order_id"`
	CustomerID  int64              `json:"customer_id"`
	Status      models.OrderStatus `json:"status"`
	TotalAmount float64            `json:"total_amount"`
	DroneID     int64              `json:"drone_id,omitempty"`
	Occurred    time.Time          `json:"occurred"`
}

func (e OrderEvent) encode() ([]byte, error) { return json.Marshal(e) }

// Publisher delivers a batch of events to one destination.
type Publisher interface {
	Publish(ctx context.Context, batch []OrderEvent) error
}

// Sink accepts events without blocking the caller.
type Sink interface {
	Send(e OrderEvent)
}

// Discard is a Sink that drops every event.
type Discard struct{}

func (Discard) Send(OrderEvent) {}

// LogPublisher writes events to a logger.
type LogPublisher struct {
	Logger *slog.Logger
}

func (p *LogPublisher) Publish(ctx context.Context, batch []OrderEvent) error {
	for _, e := range batch {
		p.Logger.LogAttrs(ctx, slog.LevelInfo, "order event",
			slog.String("type", string(e.Type)),
			slog.Int64("order_id", e.OrderID),
			slog.String("status", string(e.Status)),
		)
	}
	return nil
}
