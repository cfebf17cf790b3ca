package lifecycle

import (
	"context"
	"strings"
	"time"

	"droneFoodDelivery/internal/apperr"
	"droneFoodDelivery/internal/events"
	"droneFoodDelivery/internal/notify"
	"droneFoodDelivery/models"
	"droneFoodDelivery/repository"
)

// PlaceOrder creates an empty order in Placed.
func (s *Service) PlaceOrder(ctx context.Context, customerID, restaurantID, locationID int64) (o *models.Order, err error) {
	const op = "PlaceOrder"
	defer s.observe(op, time.Now(), &err)

	err = s.store.InTx(ctx, func(r *repository.Repos) error {
		if err := checkReferences(ctx, r, op, customerID, restaurantID, locationID); err != nil {
			return err
		}
		var err error
		o, err = r.Orders.Create(ctx, &models.Order{
			CustomerID:   customerID,
			RestaurantID: restaurantID,
			LocationID:   locationID,
			OrderDate:    s.now(),
			Status:       models.OrderStatusPlaced,
		})
		return apperr.Persistence(op, err)
	})
	if err != nil {
		return nil, apperr.Persistence(op, err)
	}
	s.afterCommit(ctx, o, notify.MsgOrderPlaced, events.TypeOrderPlaced, 0)
	return o, nil
}

func checkReferences(ctx context.Context, r *repository.Repos, op string, customerID, restaurantID, locationID int64) error {
	c, err := r.Customers.GetByID(ctx, customerID)
	if err != nil {
		return apperr.Persistence(op, err)
	}
	if c == nil {
		return apperr.New(apperr.KindInvalidReference, op, "customer %d does not exist", customerID)
	}
	rs, err := r.Restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		return apperr.Persistence(op, err)
	}
	if rs == nil {
		return apperr.New(apperr.KindInvalidReference, op, "restaurant %d does not exist", restaurantID)
	}
	loc, err := r.Locations.GetByID(ctx, locationID)
	if err != nil {
		return apperr.Persistence(op, err)
	}
	if loc == nil {
		return apperr.New(apperr.KindInvalidReference, op, "location %d does not exist", locationID)
	}
	if loc.CustomerID != nil && *loc.CustomerID != customerID {
		return apperr.New(apperr.KindInvalidReference, op, "location %d belongs to another customer", locationID)
	}
	return nil
}

// AddItem appends a line to a Placed order and recomputes its totals.
func (s *Service) AddItem(ctx context.Context, orderID, itemID int64, quantity int) (o *models.Order, err error) {
	const op = "AddItem"
	defer s.observe(op, time.Now(), &err)

	err = s.store.InTx(ctx, func(r *repository.Repos) error {
		var err error
		if o, err = loadOrder(ctx, r, op, orderID); err != nil {
			return err
		}
		if err := requireStatus(op, o, models.OrderStatusPlaced); err != nil {
			return err
		}
		return addLines(ctx, r, op, o, []CartLine{{ItemID: itemID, Quantity: quantity}})
	})
	if err != nil {
		return nil, apperr.Persistence(op, err)
	}
	return o, nil
}

// addLines validates and stores lines for o, then writes the recomputed
// totals back to the order. o is updated in place.
func addLines(ctx context.Context, r *repository.Repos, op string, o *models.Order, lines []CartLine) error {
	for _, l := range lines {
		if l.Quantity < 1 {
			return apperr.New(apperr.KindInvalidItem, op, "quantity must be at least 1, got %d", l.Quantity)
		}
		item, err := r.Menu.GetByID(ctx, l.ItemID)
		if err != nil {
			return apperr.Persistence(op, err)
		}
		switch {
		case item == nil:
			return apperr.New(apperr.KindInvalidItem, op, "menu item %d does not exist", l.ItemID)
		case item.Status != models.MenuItemActive:
			return apperr.New(apperr.KindInvalidItem, op, "menu item %d is not active", l.ItemID)
		case item.RestaurantID != o.RestaurantID:
			return apperr.New(apperr.KindInvalidItem, op, "menu item %d is not sold by restaurant %d", l.ItemID, o.RestaurantID)
		}
		if _, err := r.Orders.AddLine(ctx, &models.OrderItem{
			OrderID:      o.ID,
			ItemID:       item.ID,
			Quantity:     l.Quantity,
			UnitPrice:    item.Price,
			UnitWeightKg: item.WeightKg,
		}); err != nil {
			return apperr.Persistence(op, err)
		}
	}

	all, err := r.Orders.ListLines(ctx, o.ID)
	if err != nil {
		return apperr.Persistence(op, err)
	}
	amount, weight := lineTotals(all)
	ok, err := r.Orders.SetTotals(ctx, o.ID, amount, weight)
	if err != nil {
		return apperr.Persistence(op, err)
	}
	if !ok {
		return lostRace(op, o.ID)
	}
	o.TotalAmount, o.TotalWeightKg, o.Items = amount, weight, all
	o.Version++
	return nil
}

// Pay records the payment of a Placed, non-empty order and moves it to Paid.
func (s *Service) Pay(ctx context.Context, orderID int64, method string) (o *models.Order, err error) {
	const op = "Pay"
	defer s.observe(op, time.Now(), &err)

	method = strings.TrimSpace(method)
	if method == "" {
		method = "Unspecified"
	}
	err = s.store.InTx(ctx, func(r *repository.Repos) error {
		var err error
		if o, err = loadOrder(ctx, r, op, orderID); err != nil {
			return err
		}
		if err := requireStatus(op, o, models.OrderStatusPlaced); err != nil {
			return err
		}
		if o.TotalAmount <= 0 {
			return apperr.New(apperr.KindEmptyOrder, op, "order %d has no items", o.ID)
		}
		ok, err := r.Orders.Transition(ctx, o.ID, models.OrderStatusPlaced, models.OrderStatusPaid)
		if err != nil {
			return apperr.Persistence(op, err)
		}
		if !ok {
			return lostRace(op, o.ID)
		}
		if _, err := r.Payments.Create(ctx, &models.Payment{
			OrderID: o.ID,
			Method:  method,
			Amount:  o.TotalAmount,
			PaidAt:  s.now(),
		}); err != nil {
			return apperr.Persistence(op, err)
		}
		o.Status = models.OrderStatusPaid
		o.Version++
		return nil
	})
	if err != nil {
		return nil, apperr.Persistence(op, err)
	}
	s.afterCommit(ctx, o, notify.MsgPaymentConfirmed, events.TypeOrderPaid, 0)
	return o, nil
}

// CartLine is one menu item and quantity in a Cart.
type CartLine struct {
	ItemID   int64 `json:"ItemID"`
	Quantity int   `json:"Quantity"`
}

// Cart is a customer's pending order at one restaurant. It is a plain value
// owned by the caller until Checkout.
type Cart struct {
	CustomerID   int64
	RestaurantID int64
	LocationID   int64
	Lines        []CartLine
}

// Add merges quantity into the line for itemID.
func (c *Cart) Add(itemID int64, quantity int) {
	for i := range c.Lines {
		if c.Lines[i].ItemID == itemID {
			c.Lines[i].Quantity += quantity
			return
		}
	}
	c.Lines = append(c.Lines, CartLine{ItemID: itemID, Quantity: quantity})
}

// Checkout places an order for the whole cart in one transaction. Nothing is
// stored if any line is rejected.
func (s *Service) Checkout(ctx context.Context, cart Cart) (o *models.Order, err error) {
	const op = "Checkout"
	defer s.observe(op, time.Now(), &err)

	if len(cart.Lines) == 0 {
		return nil, apperr.New(apperr.KindEmptyOrder, op, "cart is empty")
	}
	err = s.store.InTx(ctx, func(r *repository.Repos) error {
		if err := checkReferences(ctx, r, op, cart.CustomerID, cart.RestaurantID, cart.LocationID); err != nil {
			return err
		}
		var err error
		o, err = r.Orders.Create(ctx, &models.Order{
			CustomerID:   cart.CustomerID,
			RestaurantID: cart.RestaurantID,
			LocationID:   cart.LocationID,
			OrderDate:    s.now(),
			Status:       models.OrderStatusPlaced,
		})
		if err != nil {
			return apperr.Persistence(op, err)
		}
		return addLines(ctx, r, op, o, cart.Lines)
	})
	if err != nil {
		return nil, apperr.Persistence(op, err)
	}
	s.afterCommit(ctx, o, notify.MsgOrderPlaced, events.TypeOrderPlaced, 0)
	return o, nil
}
