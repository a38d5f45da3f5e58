package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

type vehicleRepository struct {
	db dbtx
}

func NewVehicleRepository(db dbtx) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

const vehicleColumns = `id, owner_id, brand, model, year, plate_number, category, seats, city, rate_per_day, deposit, mileage_limit_per_day, extra_mileage_rate, status, is_active, version, created_on, updated_on`

func (r *vehicleRepository) GetByID(ctx context.Context, id int32) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.OwnerID, &v.Brand, &v.Model, &v.Year, &v.PlateNumber, &v.Category, &v.Seats, &v.City,
		&v.RatePerDay, &v.Deposit, &v.MileageLimitPerDay, &v.ExtraMileageRate,
		&v.Status, &v.IsActive, &v.Version, &v.CreatedOn, &v.UpdatedOn,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError("vehicle %d not found", id)
		}
		return nil, domain.PersistenceError("get vehicle", err)
	}
	return v, nil
}

// SetStatus applies the status only when the stored version still
// matches, incrementing it on success. Zero rows affected means another
// request updated the vehicle first.
func (r *vehicleRepository) SetStatus(ctx context.Context, id int32, status domain.VehicleStatus, version int32) error {
	query := `UPDATE vehicles SET status = $1, version = version + 1, updated_on = $2 WHERE id = $3 AND version = $4`
	res, err := r.db.ExecContext(ctx, query, status, time.Now(), id, version)
	if err != nil {
		return domain.PersistenceError("set vehicle status", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.PersistenceError("set vehicle status", err)
	}
	if affected == 0 {
		return domain.ConflictError("vehicle %d was modified concurrently", id)
	}
	return nil
}

func (r *vehicleRepository) ListByStatus(ctx context.Context, status domain.VehicleStatus, page, pageSize int32) ([]domain.Vehicle, int32, error) {
	offset := (page - 1) * pageSize

	var count int32
	countQuery := `SELECT count(*) FROM vehicles WHERE status = $1 AND is_active = true`
	if err := r.db.QueryRowContext(ctx, countQuery, status).Scan(&count); err != nil {
		return nil, 0, domain.PersistenceError("count vehicles", err)
	}

	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE status = $1 AND is_active = true ORDER BY id LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, status, pageSize, offset)
	if err != nil {
		return nil, 0, domain.PersistenceError("list vehicles", err)
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(
			&v.ID, &v.OwnerID, &v.Brand, &v.Model, &v.Year, &v.PlateNumber, &v.Category, &v.Seats, &v.City,
			&v.RatePerDay, &v.Deposit, &v.MileageLimitPerDay, &v.ExtraMileageRate,
			&v.Status, &v.IsActive, &v.Version, &v.CreatedOn, &v.UpdatedOn,
		); err != nil {
			return nil, 0, domain.PersistenceError("scan vehicle", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.PersistenceError("iterate vehicles", err)
	}
	return vehicles, count, nil
}
