package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"droneFoodDelivery/models"
)

type DeliveryRepository struct {
	db      DBTX
	timeout time.Duration
}

func NewDeliveryRepository(db DBTX) *DeliveryRepository {
	return &DeliveryRepository{db: db, timeout: DefaultTimeout}
}

const deliveryColumns = `id, order_id, drone_id, status, start_time, end_time`

// Create inserts an open delivery. EndTime is ignored.
func (r *DeliveryRepository) Create(ctx context.Context, d *models.Delivery) (*models.Delivery, error) {
	if d == nil {
		return nil, errors.New("delivery is nil")
	}
	if d.Status == "" {
		d.Status = models.DeliveryStatusInTransit
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO deliveries (order_id, drone_id, status, start_time) VALUES (?,?,?,?)`,
		d.OrderID, d.DroneID, string(d.Status), d.StartTime.UTC())
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	d.ID = id
	d.EndTime = nil
	return d, nil
}

func (r *DeliveryRepository) GetByOrderID(ctx context.Context, orderID int64) (*models.Delivery, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	return scanDelivery(r.db.QueryRowContext(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE order_id = ?`, orderID))
}

// GetOpenByDrone returns the delivery the drone is currently flying, if any.
func (r *DeliveryRepository) GetOpenByDrone(ctx context.Context, droneID int64) (*models.Delivery, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	return scanDelivery(r.db.QueryRowContext(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE drone_id = ? AND status <> 'Completed'`, droneID))
}

// Complete closes an open delivery with the given end time. It reports false
// when the delivery was already completed.
func (r *DeliveryRepository) Complete(ctx context.Context, id int64, end time.Time) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE deliveries SET status = 'Completed', end_time = ? WHERE id = ? AND status <> 'Completed'`, end.UTC(), id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// ListByDrone returns the delivery log of a drone, newest first.
func (r *DeliveryRepository) ListByDrone(ctx context.Context, droneID int64) ([]models.Delivery, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE drone_id = ? ORDER BY start_time DESC, id DESC`, droneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanDelivery(row rowScanner) (*models.Delivery, error) {
	var d models.Delivery
	var status string
	var end sql.NullTime
	if err := row.Scan(&d.ID, &d.OrderID, &d.DroneID, &status, &d.StartTime, &end); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	d.Status = models.DeliveryStatus(status)
	if end.Valid {
		v := end.Time
		d.EndTime = &v
	}
	return &d, nil
}
