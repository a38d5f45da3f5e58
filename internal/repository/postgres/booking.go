package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"

	"github.com/lib/pq"
)

type bookingRepository struct {
	db dbtx
}

func NewBookingRepository(db dbtx) repository.BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `id, reference, vehicle_id, renter_id, start_date, end_date, actual_start_date, actual_end_date,
	pickup_location, dropoff_location, mileage_start, mileage_end, mileage_driven,
	base_price, weekend_surcharge, discount, insurance_fee, service_fee, extra_mileage_fee, deposit, total_price, refund_amount,
	payment_status, payment_method, paid_at, status, cancellation_reason, cancelled_at, cancelled_by, notes, created_on, updated_on`

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `INSERT INTO bookings (reference, vehicle_id, renter_id, start_date, end_date,
		pickup_location, dropoff_location,
		base_price, weekend_surcharge, discount, insurance_fee, service_fee, extra_mileage_fee, deposit, total_price,
		payment_status, status, notes, created_on, updated_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id`
	now := time.Now()
	b.CreatedOn = now
	b.UpdatedOn = now
	err := r.db.QueryRowContext(ctx, query,
		b.Reference, b.VehicleID, b.RenterID, b.StartDate, b.EndDate,
		b.PickupLocation, b.DropoffLocation,
		b.BasePrice, b.WeekendSurcharge, b.Discount, b.InsuranceFee, b.ServiceFee, b.ExtraMileageFee, b.Deposit, b.TotalPrice,
		b.PaymentStatus, b.Status, b.Notes, b.CreatedOn, b.UpdatedOn,
	).Scan(&b.ID)
	if err != nil {
		return domain.PersistenceError("create booking", err)
	}
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id int32) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError("booking %d not found", id)
		}
		return nil, domain.PersistenceError("get booking", err)
	}
	return b, nil
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	query := `UPDATE bookings SET status=$1, payment_status=$2, payment_method=$3, paid_at=$4,
		actual_start_date=$5, actual_end_date=$6, mileage_start=$7, mileage_end=$8, mileage_driven=$9,
		extra_mileage_fee=$10, total_price=$11, refund_amount=$12,
		cancellation_reason=$13, cancelled_at=$14, cancelled_by=$15, notes=$16, updated_on=$17
		WHERE id=$18`
	b.UpdatedOn = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		b.Status, b.PaymentStatus, nullString(string(b.PaymentMethod)), nullTime(b.PaidAt),
		nullTime(b.ActualStartDate), nullTime(b.ActualEndDate), nullInt64(b.MileageStart), nullInt64(b.MileageEnd), b.MileageDriven,
		b.ExtraMileageFee, b.TotalPrice, b.RefundAmount,
		b.CancellationReason, nullTime(b.CancelledAt), nullInt32(b.CancelledBy), b.Notes, b.UpdatedOn,
		b.ID,
	)
	if err != nil {
		return domain.PersistenceError("update booking", err)
	}
	return nil
}

func (r *bookingRepository) ListByVehicle(ctx context.Context, vehicleID int32, statuses []domain.BookingStatus) ([]domain.Booking, error) {
	statusStrs := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrs[i] = string(s)
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE vehicle_id = $1 AND status = ANY($2) ORDER BY start_date`
	rows, err := r.db.QueryContext(ctx, query, vehicleID, pq.Array(statusStrs))
	if err != nil {
		return nil, domain.PersistenceError("list bookings by vehicle", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (r *bookingRepository) ListByRenter(ctx context.Context, renterID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	offset := (page - 1) * pageSize
	base := `FROM bookings WHERE renter_id = $1`
	args := []interface{}{renterID}
	argIdx := 2
	if status != "" {
		base += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) "+base, args...).Scan(&count); err != nil {
		return nil, 0, domain.PersistenceError("count bookings", err)
	}

	query := `SELECT ` + bookingColumns + ` ` + base + fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, domain.PersistenceError("list bookings by renter", err)
	}
	defer rows.Close()

	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, 0, err
	}
	return bookings, count, nil
}

func (r *bookingRepository) CountPendingPaymentSince(ctx context.Context, renterID int32, since time.Time) (int32, error) {
	var count int32
	query := `SELECT count(*) FROM bookings WHERE renter_id = $1 AND payment_status = $2 AND created_on >= $3`
	err := r.db.QueryRowContext(ctx, query, renterID, domain.PaymentStatusPending, since).Scan(&count)
	if err != nil {
		return 0, domain.PersistenceError("count pending-payment bookings", err)
	}
	return count, nil
}

func (r *bookingRepository) CountCancelledSince(ctx context.Context, renterID int32, since time.Time) (int32, error) {
	var count int32
	query := `SELECT count(*) FROM bookings WHERE renter_id = $1 AND status = $2 AND cancelled_at >= $3`
	err := r.db.QueryRowContext(ctx, query, renterID, domain.BookingStatusCancelled, since).Scan(&count)
	if err != nil {
		return 0, domain.PersistenceError("count cancelled bookings", err)
	}
	return count, nil
}

func (r *bookingRepository) DeleteCancelledBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM bookings WHERE status = $1 AND cancelled_at < $2`
	res, err := r.db.ExecContext(ctx, query, domain.BookingStatusCancelled, cutoff)
	if err != nil {
		return 0, domain.PersistenceError("purge cancelled bookings", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, domain.PersistenceError("purge cancelled bookings", err)
	}
	return affected, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	b := &domain.Booking{}
	var (
		actualStart, actualEnd, paidAt, cancelledAt sql.NullTime
		mileageStart, mileageEnd                    sql.NullInt64
		paymentMethod                               sql.NullString
		cancelledBy                                 sql.NullInt32
	)
	err := row.Scan(
		&b.ID, &b.Reference, &b.VehicleID, &b.RenterID, &b.StartDate, &b.EndDate, &actualStart, &actualEnd,
		&b.PickupLocation, &b.DropoffLocation, &mileageStart, &mileageEnd, &b.MileageDriven,
		&b.BasePrice, &b.WeekendSurcharge, &b.Discount, &b.InsuranceFee, &b.ServiceFee, &b.ExtraMileageFee, &b.Deposit, &b.TotalPrice, &b.RefundAmount,
		&b.PaymentStatus, &paymentMethod, &paidAt, &b.Status, &b.CancellationReason, &cancelledAt, &cancelledBy, &b.Notes, &b.CreatedOn, &b.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	if actualStart.Valid {
		b.ActualStartDate = &actualStart.Time
	}
	if actualEnd.Valid {
		b.ActualEndDate = &actualEnd.Time
	}
	if paidAt.Valid {
		b.PaidAt = &paidAt.Time
	}
	if cancelledAt.Valid {
		b.CancelledAt = &cancelledAt.Time
	}
	if mileageStart.Valid {
		b.MileageStart = &mileageStart.Int64
	}
	if mileageEnd.Valid {
		b.MileageEnd = &mileageEnd.Int64
	}
	if paymentMethod.Valid {
		b.PaymentMethod = domain.PaymentMethod(paymentMethod.String)
	}
	if cancelledBy.Valid {
		b.CancelledBy = &cancelledBy.Int32
	}
	return b, nil
}

func collectBookings(rows *sql.Rows) ([]domain.Booking, error) {
	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, domain.PersistenceError("scan booking", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.PersistenceError("iterate bookings", err)
	}
	return bookings, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullInt32(v *int32) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: *v, Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
