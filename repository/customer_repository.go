package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"droneFoodDelivery/models"
)

const customerColumns = "id, name, phone, email, address, username, password_hash"

type CustomerRepository struct {
	db      DBTX
	timeout time.Duration
}

func NewCustomerRepository(db DBTX) *CustomerRepository {
	return &CustomerRepository{db: db, timeout: DefaultTimeout}
}

// Create inserts a new customer and returns it with its generated ID.
func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) (*models.Customer, error) {
	if c == nil {
		return nil, errors.New("customer is nil")
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO customers (name, phone, email, address, username, password_hash) VALUES (?,?,?,?,?,?)`,
		c.Name, c.Phone, c.Email, c.Address, c.Username, c.PasswordHash)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	return scanCustomer(r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id))
}

func (r *CustomerRepository) GetByUsername(ctx context.Context, username string) (*models.Customer, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	return scanCustomer(r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE username = ?`, username))
}

func (r *CustomerRepository) List(ctx context.Context, limit, offset int) ([]models.Customer, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanCustomer(row rowScanner) (*models.Customer, error) {
	var c models.Customer
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.Username, &c.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
