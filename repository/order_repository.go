package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"droneFoodDelivery/models"
)

// OrderRepository is the core repository for Order entities and their lines.
// Status changes go through Transition, which only succeeds from the expected
// status.
type OrderRepository struct {
	db      DBTX
	timeout time.Duration
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db, timeout: DefaultTimeout}
}

const orderColumns = `id, customer_id, restaurant_id, location_id, order_date, total_amount, total_weight_kg, status, version`

// Create inserts a new order. Status defaults to 'Placed' if empty and
// OrderDate to now.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) (*models.Order, error) {
	if o == nil {
		return nil, errors.New("order is nil")
	}
	if o.Status == "" {
		o.Status = models.OrderStatusPlaced
	}
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now()
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO orders (customer_id, restaurant_id, location_id, order_date, total_amount, total_weight_kg, status) VALUES (?,?,?,?,?,?,?)`,
		o.CustomerID, o.RestaurantID, o.LocationID, o.OrderDate.UTC(), o.TotalAmount, o.TotalWeightKg, string(o.Status))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	o2, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o2 == nil {
		return nil, fmt.Errorf("created order not found: id=%d", id)
	}
	return o2, nil
}

// GetByID fetches an order by its ID, without its lines.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	return scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
}

// Latest returns the most recent order for the given customer (by order_date desc).
func (r *OrderRepository) Latest(ctx context.Context, customerID int64) (*models.Order, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	return scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE customer_id = ? ORDER BY order_date DESC, id DESC LIMIT 1`, customerID))
}

// AddLine stores an order line. It does not touch the order totals.
func (r *OrderRepository) AddLine(ctx context.Context, it *models.OrderItem) (*models.OrderItem, error) {
	if it == nil {
		return nil, errors.New("order item is nil")
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO order_items (order_id, item_id, quantity, unit_price, unit_weight_kg) VALUES (?,?,?,?,?)`,
		it.OrderID, it.ItemID, it.Quantity, it.UnitPrice, it.UnitWeightKg)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	it.ID = id
	return it, nil
}

// ListLines returns the lines of an order in insertion order.
func (r *OrderRepository) ListLines(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, order_id, item_id, quantity, unit_price, unit_weight_kg FROM order_items WHERE order_id = ? ORDER BY id ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.OrderItem{}
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ItemID, &it.Quantity, &it.UnitPrice, &it.UnitWeightKg); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SetTotals overwrites the totals of an order that is still Placed. It reports
// false when the order has left Placed.
func (r *OrderRepository) SetTotals(ctx context.Context, id int64, amount, weightKg float64) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET total_amount = ?, total_weight_kg = ?, version = version + 1 WHERE id = ? AND status = 'Placed'`,
		amount, weightKg, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// Transition moves an order from one status to another. It reports false when
// the order was not in the expected status.
func (r *OrderRepository) Transition(ctx context.Context, id int64, from, to models.OrderStatus) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ?, version = version + 1 WHERE id = ? AND status = ?`,
		string(to), id, string(from))
	if err != nil {
		return false, err
	}
	return affected(res)
}

// ListHistory returns a customer's orders with restaurant names, most recent
// first.
func (r *OrderRepository) ListHistory(ctx context.Context, customerID int64) ([]models.OrderSummary, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.restaurant_id, r.name, o.order_date, o.total_amount, o.total_weight_kg, o.status
		FROM orders o
		JOIN restaurants r ON r.id = o.restaurant_id
		WHERE o.customer_id = ?
		ORDER BY o.order_date DESC, o.id DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.OrderSummary{}
	for rows.Next() {
		var s models.OrderSummary
		var status string
		if err := rows.Scan(&s.OrderID, &s.RestaurantID, &s.RestaurantName, &s.OrderDate, &s.TotalAmount, &s.TotalWeightKg, &status); err != nil {
			return nil, err
		}
		s.Status = models.OrderStatus(status)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	var status string
	if err := row.Scan(&o.ID, &o.CustomerID, &o.RestaurantID, &o.LocationID, &o.OrderDate, &o.TotalAmount, &o.TotalWeightKg, &status, &o.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	o.Status = models.OrderStatus(status)
	return &o, nil
}

type PaymentRepository struct {
	db      DBTX
	timeout time.Duration
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db, timeout: DefaultTimeout}
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	if p == nil {
		return nil, errors.New("payment is nil")
	}
	if p.PaidAt.IsZero() {
		p.PaidAt = time.Now()
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO payments (order_id, method, amount, paid_at) VALUES (?,?,?,?)`,
		p.OrderID, p.Method, p.Amount, p.PaidAt.UTC())
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	p.ID = id
	return p, nil
}

func (r *PaymentRepository) GetByOrderID(ctx context.Context, orderID int64) (*models.Payment, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	var p models.Payment
	err := r.db.QueryRowContext(ctx, `SELECT id, order_id, method, amount, paid_at FROM payments WHERE order_id = ?`, orderID).
		Scan(&p.ID, &p.OrderID, &p.Method, &p.Amount, &p.PaidAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
