package lifecycle

import (
	"context"
	"time"

	"droneFoodDelivery/internal/apperr"
	"droneFoodDelivery/internal/events"
	"droneFoodDelivery/internal/geo"
	"droneFoodDelivery/internal/notify"
	"droneFoodDelivery/models"
	"droneFoodDelivery/repository"
)

// AssignDrone picks the lowest-numbered Available drone that can carry the
// order's weight and reach its delivery location, claims it and starts the
// delivery. A drone claimed by a concurrent caller is skipped.
func (s *Service) AssignDrone(ctx context.Context, orderID int64) (d *models.Delivery, err error) {
	const op = "AssignDrone"
	defer s.observe(op, time.Now(), &err)

	var o *models.Order
	err = s.store.InTx(ctx, func(r *repository.Repos) error {
		var err error
		if o, err = loadOrder(ctx, r, op, orderID); err != nil {
			return err
		}
		if err := requireStatus(op, o, models.OrderStatusPaid); err != nil {
			return err
		}
		distKm, err := deliveryDistance(ctx, r, op, o)
		if err != nil {
			return err
		}

		candidates, err := r.Drones.ListAvailable(ctx, o.TotalWeightKg)
		if err != nil {
			return apperr.Persistence(op, err)
		}
		var drone *models.Drone
		for i := range candidates {
			if candidates[i].RangeKm < distKm {
				continue
			}
			ok, err := r.Drones.Claim(ctx, candidates[i].ID)
			if err != nil {
				return apperr.Persistence(op, err)
			}
			if ok {
				drone = &candidates[i]
				break
			}
		}
		if drone == nil {
			return apperr.New(apperr.KindNoDroneAvailable, op, "no available drone for %.3f kg over %.2f km", o.TotalWeightKg, distKm)
		}
		drone.Status = models.DroneStatusAssigned

		if d, err = r.Deliveries.Create(ctx, &models.Delivery{
			OrderID:   o.ID,
			DroneID:   drone.ID,
			Status:    models.DeliveryStatusInTransit,
			StartTime: s.now(),
		}); err != nil {
			return apperr.Persistence(op, err)
		}
		ok, err := r.Orders.Transition(ctx, o.ID, models.OrderStatusPaid, models.OrderStatusInTransit)
		if err != nil {
			return apperr.Persistence(op, err)
		}
		if !ok {
			return lostRace(op, o.ID)
		}
		o.Status = models.OrderStatusInTransit
		o.Version++
		return nil
	})
	if err != nil {
		return nil, apperr.Persistence(op, err)
	}
	s.afterCommit(ctx, o, notify.MsgDroneAssigned, events.TypeDroneAssigned, d.DroneID)
	return d, nil
}

// deliveryDistance is the one-way distance in km from the order's restaurant
// to its delivery location.
func deliveryDistance(ctx context.Context, r *repository.Repos, op string, o *models.Order) (float64, error) {
	rs, err := r.Restaurants.GetByID(ctx, o.RestaurantID)
	if err != nil {
		return 0, apperr.Persistence(op, err)
	}
	if rs == nil {
		return 0, apperr.New(apperr.KindInvalidReference, op, "restaurant %d does not exist", o.RestaurantID)
	}
	loc, err := r.Locations.GetByID(ctx, o.LocationID)
	if err != nil {
		return 0, apperr.Persistence(op, err)
	}
	if loc == nil {
		return 0, apperr.New(apperr.KindInvalidReference, op, "location %d does not exist", o.LocationID)
	}
	return geo.HaversineKm(rs.Lat, rs.Lng, loc.Lat, loc.Lng), nil
}

// CompleteDelivery closes the order's delivery, frees the drone and marks the
// order Delivered.
func (s *Service) CompleteDelivery(ctx context.Context, orderID int64) (d *models.Delivery, err error) {
	const op = "CompleteDelivery"
	defer s.observe(op, time.Now(), &err)

	var o *models.Order
	err = s.store.InTx(ctx, func(r *repository.Repos) error {
		var err error
		if o, err = loadOrder(ctx, r, op, orderID); err != nil {
			return err
		}
		if err := requireStatus(op, o, models.OrderStatusInTransit); err != nil {
			return err
		}
		if d, err = r.Deliveries.GetByOrderID(ctx, o.ID); err != nil {
			return apperr.Persistence(op, err)
		}
		if d == nil || d.Status == models.DeliveryStatusCompleted {
			return apperr.New(apperr.KindInvalidState, op, "order %d has no open delivery", o.ID)
		}

		end := s.now()
		if end.Before(d.StartTime) {
			end = d.StartTime
		}
		ok, err := r.Deliveries.Complete(ctx, d.ID, end)
		if err != nil {
			return apperr.Persistence(op, err)
		}
		if !ok {
			return lostRace(op, o.ID)
		}
		d.Status = models.DeliveryStatusCompleted
		d.EndTime = &end

		released, err := r.Drones.Release(ctx, d.DroneID)
		if err != nil {
			return apperr.Persistence(op, err)
		}
		if !released {
			// Retired mid-flight; keep the operator's status.
			s.log.Warn("drone was not Assigned at delivery completion", "drone_id", d.DroneID, "order_id", o.ID)
		}

		ok, err = r.Orders.Transition(ctx, o.ID, models.OrderStatusInTransit, models.OrderStatusDelivered)
		if err != nil {
			return apperr.Persistence(op, err)
		}
		if !ok {
			return lostRace(op, o.ID)
		}
		o.Status = models.OrderStatusDelivered
		o.Version++
		return nil
	})
	if err != nil {
		return nil, apperr.Persistence(op, err)
	}
	s.afterCommit(ctx, o, notify.MsgOrderDelivered, events.TypeOrderDelivered, d.DroneID)
	return d, nil
}
