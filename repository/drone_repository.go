package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"droneFoodDelivery/models"
)

type DroneRepository struct {
	db      DBTX
	timeout time.Duration
}

func NewDroneRepository(db DBTX) *DroneRepository {
	return &DroneRepository{db: db, timeout: DefaultTimeout}
}

const droneColumns = `id, serial_number, name, capacity_kg, max_height_m, range_km, status`

// Create inserts a new drone. Status defaults to 'Available' if empty.
func (r *DroneRepository) Create(ctx context.Context, d *models.Drone) (*models.Drone, error) {
	if d == nil {
		return nil, errors.New("drone is nil")
	}
	if d.Status == "" {
		d.Status = models.DroneStatusAvailable
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO drones (serial_number, name, capacity_kg, max_height_m, range_km, status) VALUES (?,?,?,?,?,?)`,
		d.SerialNumber, d.Name, d.CapacityKg, d.MaxHeightM, d.RangeKm, string(d.Status))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	d.ID = id
	return d, nil
}

func (r *DroneRepository) GetByID(ctx context.Context, id int64) (*models.Drone, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	return scanDrone(r.db.QueryRowContext(ctx, `SELECT `+droneColumns+` FROM drones WHERE id = ?`, id))
}

func (r *DroneRepository) GetBySerial(ctx context.Context, serial string) (*models.Drone, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	return scanDrone(r.db.QueryRowContext(ctx, `SELECT `+droneColumns+` FROM drones WHERE serial_number = ?`, serial))
}

// ListAvailable returns Available drones that can lift minCapacityKg, lowest
// id first. Range is checked by the caller.
func (r *DroneRepository) ListAvailable(ctx context.Context, minCapacityKg float64) ([]models.Drone, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+droneColumns+` FROM drones WHERE status = 'Available' AND capacity_kg >= ? ORDER BY id ASC`, minCapacityKg)
	if err != nil {
		return nil, err
	}
	return collectDrones(rows)
}

// Claim moves a drone from Available to Assigned. It reports false when the
// drone was not Available.
func (r *DroneRepository) Claim(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE drones SET status = 'Assigned' WHERE id = ? AND status = 'Available'`, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// Release moves a drone from Assigned back to Available.
func (r *DroneRepository) Release(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE drones SET status = 'Available' WHERE id = ? AND status = 'Assigned'`, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *DroneRepository) UpdateStatus(ctx context.Context, id int64, status models.DroneStatus) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `UPDATE drones SET status = ? WHERE id = ?`, string(status), id)
	return err
}

// ListDronesParams contains filters and pagination for List.
type ListDronesParams struct {
	Status               *models.DroneStatus
	NameOrSerialContains *string
	PageSize             int
	AfterID              int64
}

// List returns drones matching filters ordered by id asc with keyset pagination by id.
func (r *DroneRepository) List(ctx context.Context, p ListDronesParams) ([]models.Drone, error) {
	if p.PageSize <= 0 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	where := make([]string, 0, 3)
	args := make([]any, 0, 5)

	if p.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*p.Status))
	}
	if p.NameOrSerialContains != nil && strings.TrimSpace(*p.NameOrSerialContains) != "" {
		like := "%" + strings.TrimSpace(*p.NameOrSerialContains) + "%"
		where = append(where, "(name LIKE ? OR serial_number LIKE ?)")
		args = append(args, like, like)
	}
	if p.AfterID > 0 {
		where = append(where, "id > ?")
		args = append(args, p.AfterID)
	}

	query := "SELECT " + droneColumns + " FROM drones"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id ASC LIMIT ?"
	args = append(args, p.PageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectDrones(rows)
}

func collectDrones(rows *sql.Rows) ([]models.Drone, error) {
	defer rows.Close()
	var out []models.Drone
	for rows.Next() {
		d, err := scanDrone(rows)
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

func scanDrone(row rowScanner) (*models.Drone, error) {
	var d models.Drone
	var status string
	if err := row.Scan(&d.ID, &d.SerialNumber, &d.Name, &d.CapacityKg, &d.MaxHeightM, &d.RangeKm, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	d.Status = models.DroneStatus(status)
	return &d, nil
}
