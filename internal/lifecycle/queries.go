package lifecycle

import (
	"context"

	"droneFoodDelivery/internal/apperr"
	"droneFoodDelivery/models"
)

// GetStatus returns the current status of an order.
func (s *Service) GetStatus(ctx context.Context, orderID int64) (models.OrderStatus, error) {
	o, err := s.store.Repos().Orders.GetByID(ctx, orderID)
	if err != nil {
		return "", apperr.Persistence("GetStatus", err)
	}
	if o == nil {
		return "", apperr.New(apperr.KindNotFound, "GetStatus", "order %d not found", orderID)
	}
	return o.Status, nil
}

// GetOrder returns an order with its lines.
func (s *Service) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	const op = "GetOrder"
	repos := s.store.Repos()
	o, err := repos.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperr.Persistence(op, err)
	}
	if o == nil {
		return nil, apperr.New(apperr.KindNotFound, op, "order %d not found", orderID)
	}
	if o.Items, err = repos.Orders.ListLines(ctx, o.ID); err != nil {
		return nil, apperr.Persistence(op, err)
	}
	return o, nil
}

// GetHistory lists a customer's orders, most recent first. An unknown
// customer has an empty history.
func (s *Service) GetHistory(ctx context.Context, customerID int64) ([]models.OrderSummary, error) {
	out, err := s.store.Repos().Orders.ListHistory(ctx, customerID)
	if err != nil {
		return nil, apperr.Persistence("GetHistory", err)
	}
	return out, nil
}

// LatestOrder returns the customer's most recent order.
func (s *Service) LatestOrder(ctx context.Context, customerID int64) (*models.Order, error) {
	const op = "LatestOrder"
	o, err := s.store.Repos().Orders.Latest(ctx, customerID)
	if err != nil {
		return nil, apperr.Persistence(op, err)
	}
	if o == nil {
		return nil, apperr.New(apperr.KindNotFound, op, "customer %d has no orders", customerID)
	}
	return o, nil
}

// GetDelivery returns the delivery of an order.
func (s *Service) GetDelivery(ctx context.Context, orderID int64) (*models.Delivery, error) {
	const op = "GetDelivery"
	d, err := s.store.Repos().Deliveries.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, apperr.Persistence(op, err)
	}
	if d == nil {
		return nil, apperr.New(apperr.KindNotFound, op, "order %d has no delivery", orderID)
	}
	return d, nil
}
