// Package lifecycle owns the order state machine:
//
//	Placed -> Paid -> InTransit -> Delivered
//
// Every write runs in one store transaction. Status changes are conditional
// updates, so two callers racing on the same order cannot both win; the loser
// gets apperr.KindInvalidState. Notifications and events are emitted after
// commit and never undo a transition.
package lifecycle

import (
	"context"
	"log/slog"
	"math"
	"time"

	"droneFoodDelivery/internal/apperr"
	"droneFoodDelivery/internal/events"
	"droneFoodDelivery/internal/notify"
	"droneFoodDelivery/models"
	"droneFoodDelivery/repository"
)

// Observer is told about every finished operation.
type Observer interface {
	ObserveOperation(op string, err error, d time.Duration)
}

type Service struct {
	store    *repository.Store
	notes    *notify.Emitter
	events   events.Sink
	observer Observer
	log      *slog.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.log = l } }

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithEvents(sink events.Sink) Option { return func(s *Service) { s.events = sink } }

func WithObserver(o Observer) Option { return func(s *Service) { s.observer = o } }

func New(store *repository.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		events: events.Discard{},
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.notes = notify.NewEmitter(store.Repos().Notifications, s.now)
	return s
}

// Notifications exposes the emitter used for status messages.
func (s *Service) Notifications() *notify.Emitter { return s.notes }

func (s *Service) observe(op string, start time.Time, err *error) {
	if s.observer != nil {
		s.observer.ObserveOperation(op, *err, time.Since(start))
	}
}

// afterCommit records the notification and publishes the event for a
// committed transition. Failures are logged only.
func (s *Service) afterCommit(ctx context.Context, o *models.Order, msg string, typ events.Type, droneID int64) {
	ctx = context.WithoutCancel(ctx)
	if _, err := s.notes.Emit(ctx, o.CustomerID, o.ID, msg); err != nil {
		s.log.Error("emit notification", "order_id", o.ID, "message", msg, "err", err)
	}
	s.events.Send(events.OrderEvent{
		Type:        typ,
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		DroneID:     droneID,
		Occurred:    s.now().UTC(),
	})
	s.log.Info("order transition", "order_id", o.ID, "status", o.Status, "event", typ)
}

// loadOrder fetches an order inside a transaction, mapping a missing row to
// NotFound.
func loadOrder(ctx context.Context, r *repository.Repos, op string, id int64) (*models.Order, error) {
	o, err := r.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(op, err)
	}
	if o == nil {
		return nil, apperr.New(apperr.KindNotFound, op, "order %d not found", id)
	}
	return o, nil
}

func requireStatus(op string, o *models.Order, want models.OrderStatus) error {
	if o.Status != want {
		return apperr.New(apperr.KindInvalidState, op, "order %d is %s, want %s", o.ID, o.Status, want)
	}
	return nil
}

// lostRace is returned when a conditional update matched no row because
// another caller moved the order first.
func lostRace(op string, id int64) error {
	return apperr.New(apperr.KindInvalidState, op, "order %d changed concurrently", id)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

// lineTotals sums the amount and weight of order lines.
func lineTotals(lines []models.OrderItem) (amount, weightKg float64) {
	for _, l := range lines {
		amount += l.UnitPrice * float64(l.Quantity)
		weightKg += l.UnitWeightKg * float64(l.Quantity)
	}
	return round2(amount), round3(weightKg)
}
