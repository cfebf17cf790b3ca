package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"droneFoodDelivery/models"
)

type NotificationRepository struct {
	db      DBTX
	timeout time.Duration
}

func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db, timeout: DefaultTimeout}
}

const notificationColumns = `id, customer_id, order_id, message, created_at, is_read`

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if n == nil {
		return nil, errors.New("notification is nil")
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO notifications (customer_id, order_id, message, created_at, is_read) VALUES (?,?,?,?,0)`,
		n.CustomerID, n.OrderID, n.Message, n.CreatedAt.UTC())
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	n.ID = id
	n.IsRead = false
	return n, nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*models.Notification, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	return scanNotification(r.db.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id))
}

// MarkRead sets is_read. It reports false when no notification has the id.
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// ListForOrder returns a customer's notifications about one order, newest first.
func (r *NotificationRepository) ListForOrder(ctx context.Context, orderID, customerID int64) ([]models.Notification, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE order_id = ? AND customer_id = ? ORDER BY created_at DESC, id DESC`, orderID, customerID)
	if err != nil {
		return nil, err
	}
	return collectNotifications(rows)
}

// ListForCustomer returns the newest limit notifications of a customer.
func (r *NotificationRepository) ListForCustomer(ctx context.Context, customerID int64, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE customer_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, customerID, limit)
	if err != nil {
		return nil, err
	}
	return collectNotifications(rows)
}

func collectNotifications(rows *sql.Rows) ([]models.Notification, error) {
	defer rows.Close()
	out := []models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanNotification(row rowScanner) (*models.Notification, error) {
	var n models.Notification
	var isRead int
	if err := row.Scan(&n.ID, &n.CustomerID, &n.OrderID, &n.Message, &n.CreatedAt, &isRead); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	n.IsRead = isRead != 0
	return &n, nil
}
