package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"droneFoodDelivery/models"
)

type LocationRepository struct {
	db      DBTX
	timeout time.Duration
}

func NewLocationRepository(db DBTX) *LocationRepository {
	return &LocationRepository{db: db, timeout: DefaultTimeout}
}

func (r *LocationRepository) Create(ctx context.Context, l *models.Location) (*models.Location, error) {
	if l == nil {
		return nil, errors.New("location is nil")
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO locations (customer_id, label, address, lat, lng) VALUES (?,?,?,?,?)`,
		l.CustomerID, l.Label, l.Address, l.Lat, l.Lng)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	l.ID = id
	return l, nil
}

func (r *LocationRepository) GetByID(ctx context.Context, id int64) (*models.Location, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	var l models.Location
	var customerID sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT id, customer_id, label, address, lat, lng FROM locations WHERE id = ?`, id).
		Scan(&l.ID, &customerID, &l.Label, &l.Address, &l.Lat, &l.Lng)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if customerID.Valid {
		v := customerID.Int64
		l.CustomerID = &v
	}
	return &l, nil
}
