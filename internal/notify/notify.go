// Package notify keeps the per-customer log of order status messages.
package notify

import (
	"context"
	"time"

	"droneFoodDelivery/internal/apperr"
	"droneFoodDelivery/models"
	"droneFoodDelivery/repository"
)

// DefaultLimit is how many notifications ForCustomer returns when no limit is given.
const DefaultLimit = 20

// Messages emitted by the order lifecycle.
const (
	MsgOrderPlaced      = "Order placed"
	MsgPaymentConfirmed = "Payment confirmed"
	MsgDroneAssigned    = "Drone assigned"
	MsgOrderDelivered   = "Order delivered"
)

// Emitter appends and reads notifications.
type Emitter struct {
	repo *repository.NotificationRepository
	now  func() time.Time
}

// NewEmitter creates an Emitter. A nil clock uses time.Now.
func NewEmitter(repo *repository.NotificationRepository, now func() time.Time) *Emitter {
	if now == nil {
		now = time.Now
	}
	return &Emitter{repo: repo, now: now}
}

// Emit appends an unread notification for the customer.
func (e *Emitter) Emit(ctx context.Context, customerID, orderID int64, message string) (*models.Notification, error) {
	n, err := e.repo.Create(ctx, &models.Notification{
		CustomerID: customerID,
		OrderID:    orderID,
		Message:    message,
		CreatedAt:  e.now(),
	})
	if err != nil {
		return nil, apperr.Persistence("Emit", err)
	}
	return n, nil
}

// MarkRead flags a notification as read. Marking twice is not an error.
func (e *Emitter) MarkRead(ctx context.Context, notificationID int64) error {
	const op = "MarkRead"
	ok, err := e.repo.MarkRead(ctx, notificationID)
	if err != nil {
		return apperr.Persistence(op, err)
	}
	if !ok {
		return apperr.New(apperr.KindNotFound, op, "notification %d not found", notificationID)
	}
	return nil
}

// ForOrder lists a customer's notifications about one order, newest first.
func (e *Emitter) ForOrder(ctx context.Context, orderID, customerID int64) ([]models.Notification, error) {
	out, err := e.repo.ListForOrder(ctx, orderID, customerID)
	if err != nil {
		return nil, apperr.Persistence("ForOrder", err)
	}
	return out, nil
}

// ForCustomer lists a customer's newest notifications.
func (e *Emitter) ForCustomer(ctx context.Context, customerID int64, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	out, err := e.repo.ListForCustomer(ctx, customerID, limit)
	if err != nil {
		return nil, apperr.Persistence("ForCustomer", err)
	}
	return out, nil
}
