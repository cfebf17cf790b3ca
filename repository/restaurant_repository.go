package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"droneFoodDelivery/models"
)

type RestaurantRepository struct {
	db      DBTX
	timeout time.Duration
}

func NewRestaurantRepository(db DBTX) *RestaurantRepository {
	return &RestaurantRepository{db: db, timeout: DefaultTimeout}
}

func (r *RestaurantRepository) Create(ctx context.Context, rs *models.Restaurant) (*models.Restaurant, error) {
	if rs == nil {
		return nil, errors.New("restaurant is nil")
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO restaurants (name, location, contact, lat, lng) VALUES (?,?,?,?,?)`,
		rs.Name, rs.Location, rs.Contact, rs.Lat, rs.Lng)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	rs.ID = id
	return rs, nil
}

func (r *RestaurantRepository) GetByID(ctx context.Context, id int64) (*models.Restaurant, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	return scanRestaurant(r.db.QueryRowContext(ctx, `SELECT id, name, location, contact, lat, lng FROM restaurants WHERE id = ?`, id))
}

// List returns all restaurants, newest first.
func (r *RestaurantRepository) List(ctx context.Context) ([]models.Restaurant, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, name, location, contact, lat, lng FROM restaurants ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Restaurant{}
	for rows.Next() {
		rs, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanRestaurant(row rowScanner) (*models.Restaurant, error) {
	var rs models.Restaurant
	if err := row.Scan(&rs.ID, &rs.Name, &rs.Location, &rs.Contact, &rs.Lat, &rs.Lng); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rs, nil
}

type MenuRepository struct {
	db      DBTX
	timeout time.Duration
}

func NewMenuRepository(db DBTX) *MenuRepository {
	return &MenuRepository{db: db, timeout: DefaultTimeout}
}

// Create inserts a menu item. Status defaults to 'Active' if empty.
func (r *MenuRepository) Create(ctx context.Context, m *models.MenuItem) (*models.MenuItem, error) {
	if m == nil {
		return nil, errors.New("menu item is nil")
	}
	if m.Status == "" {
		m.Status = models.MenuItemActive
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO menu_items (restaurant_id, name, description, price, weight_kg, status) VALUES (?,?,?,?,?,?)`,
		m.RestaurantID, m.Name, m.Description, m.Price, m.WeightKg, string(m.Status))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	m.ID = id
	return m, nil
}

func (r *MenuRepository) GetByID(ctx context.Context, id int64) (*models.MenuItem, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	return scanMenuItem(r.db.QueryRowContext(ctx, `SELECT id, restaurant_id, name, description, price, weight_kg, status FROM menu_items WHERE id = ?`, id))
}

// ListActive returns the orderable items of a restaurant, newest first.
func (r *MenuRepository) ListActive(ctx context.Context, restaurantID int64) ([]models.MenuItem, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, restaurant_id, name, description, price, weight_kg, status FROM menu_items WHERE restaurant_id = ? AND status = 'Active' ORDER BY id DESC`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.MenuItem{}
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MenuRepository) UpdateStatus(ctx context.Context, id int64, status models.MenuItemStatus) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `UPDATE menu_items SET status = ? WHERE id = ?`, string(status), id)
	return err
}

func scanMenuItem(row rowScanner) (*models.MenuItem, error) {
	var m models.MenuItem
	var status string
	if err := row.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Description, &m.Price, &m.WeightKg, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	m.Status = models.MenuItemStatus(status)
	return &m, nil
}
