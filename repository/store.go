package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout bounds every single repository call.
const DefaultTimeout = 3 * time.Second

// Repos groups the repositories bound to one DBTX.
type Repos struct {
	Customers     *CustomerRepository
	Restaurants   *RestaurantRepository
	Locations     *LocationRepository
	Menu          *MenuRepository
	Orders        *OrderRepository
	Payments      *PaymentRepository
	Drones        *DroneRepository
	Deliveries    *DeliveryRepository
	Notifications *NotificationRepository
}

func newRepos(q DBTX, timeout time.Duration) *Repos {
	return &Repos{
		Customers:     &CustomerRepository{db: q, timeout: timeout},
		Restaurants:   &RestaurantRepository{db: q, timeout: timeout},
		Locations:     &LocationRepository{db: q, timeout: timeout},
		Menu:          &MenuRepository{db: q, timeout: timeout},
		Orders:        &OrderRepository{db: q, timeout: timeout},
		Payments:      &PaymentRepository{db: q, timeout: timeout},
		Drones:        &DroneRepository{db: q, timeout: timeout},
		Deliveries:    &DeliveryRepository{db: q, timeout: timeout},
		Notifications: &NotificationRepository{db: q, timeout: timeout},
	}
}

// Store owns the database handle and hands out repositories, either bound to
// the pool or to a transaction.
type Store struct {
	db      *sql.DB
	timeout time.Duration
	repos   *Repos
}

// NewStore creates a Store. A non-positive timeout selects DefaultTimeout.
func NewStore(db *sql.DB, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store{db: db, timeout: timeout, repos: newRepos(db, timeout)}
}

// Repos returns repositories that run each call on the pool.
func (s *Store) Repos() *Repos { return s.repos }

// Timeout returns the per-call timeout.
func (s *Store) Timeout() time.Duration { return s.timeout }

// InTx runs fn inside a transaction. The transaction commits when fn returns
// nil and rolls back otherwise. fn must only use the Repos it is given.
func (s *Store) InTx(ctx context.Context, fn func(r *Repos) error) error {
	// Waiting for the connection counts against the budget too.
	ctx, cancel := context.WithTimeout(ctx, 2*s.timeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(newRepos(tx, s.timeout)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultTimeout
	}
	return context.WithTimeout(ctx, d)
}

// affected reports whether the statement changed at least one row.
func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
