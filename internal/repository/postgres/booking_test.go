package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
	"carrental-backend/internal/repository/postgres"
)

func bookingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "reference", "vehicle_id", "renter_id", "start_date", "end_date", "actual_start_date", "actual_end_date",
		"pickup_location", "dropoff_location", "mileage_start", "mileage_end", "mileage_driven",
		"base_price", "weekend_surcharge", "discount", "insurance_fee", "service_fee", "extra_mileage_fee", "deposit", "total_price", "refund_amount",
		"payment_status", "payment_method", "paid_at", "status", "cancellation_reason", "cancelled_at", "cancelled_by", "notes", "created_on", "updated_on",
	})
}

func addPendingBookingRow(rows *sqlmock.Rows, id int32) *sqlmock.Rows {
	return rows.AddRow(
		id, "ref-100", 7, 42, time.Now(), time.Now().Add(96*time.Hour), nil, nil,
		"Airport", "Airport", nil, nil, 0,
		2075000, 75000, 0, 0, 207500, 0, 1500000, 2282500, 0,
		"PENDING", nil, nil, "PAYMENT_PENDING", "", nil, nil, "", time.Now(), time.Now(),
	)
}

func TestBookingRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()

	booking := &domain.Booking{
		Reference:        "ref-100",
		VehicleID:        7,
		RenterID:         42,
		StartDate:        time.Now(),
		EndDate:          time.Now().Add(96 * time.Hour),
		PickupLocation:   "Airport",
		DropoffLocation:  "Airport",
		BasePrice:        2075000,
		WeekendSurcharge: 75000,
		ServiceFee:       207500,
		Deposit:          1500000,
		TotalPrice:       2282500,
		PaymentStatus:    domain.PaymentStatusPending,
		Status:           domain.BookingStatusPaymentPending,
	}

	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs(
			booking.Reference, booking.VehicleID, booking.RenterID, booking.StartDate, booking.EndDate,
			booking.PickupLocation, booking.DropoffLocation,
			booking.BasePrice, booking.WeekendSurcharge, booking.Discount, booking.InsuranceFee,
			booking.ServiceFee, booking.ExtraMileageFee, booking.Deposit, booking.TotalPrice,
			booking.PaymentStatus, booking.Status, booking.Notes, sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100))

	err = repo.Create(ctx, booking)
	assert.NoError(t, err)
	assert.Equal(t, int32(100), booking.ID)
	assert.False(t, booking.CreatedOn.IsZero())
}

func TestBookingRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = \\$1").
			WithArgs(int32(100)).
			WillReturnRows(addPendingBookingRow(bookingRows(), 100))

		booking, err := repo.GetByID(ctx, 100)
		assert.NoError(t, err)
		assert.NotNil(t, booking)
		assert.Equal(t, int32(100), booking.ID)
		assert.Equal(t, domain.BookingStatusPaymentPending, booking.Status)
		assert.Nil(t, booking.PaidAt)
		assert.Nil(t, booking.MileageStart)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = \\$1").
			WithArgs(int32(404)).
			WillReturnRows(bookingRows())

		booking, err := repo.GetByID(ctx, 404)
		assert.Error(t, err)
		assert.Nil(t, booking)
		assert.True(t, domain.IsKind(err, domain.KindNotFound))
	})
}

func TestBookingRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()

	paidAt := time.Now()
	booking := &domain.Booking{
		ID:            100,
		Status:        domain.BookingStatusConfirmed,
		PaymentStatus: domain.PaymentStatusPaid,
		PaymentMethod: domain.PaymentMethodCard,
		PaidAt:        &paidAt,
		TotalPrice:    2282500,
	}

	mock.ExpectExec("UPDATE bookings SET").
		WithArgs(
			booking.Status, booking.PaymentStatus, sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), booking.MileageDriven,
			booking.ExtraMileageFee, booking.TotalPrice, booking.RefundAmount,
			booking.CancellationReason, sqlmock.AnyArg(), sqlmock.AnyArg(), booking.Notes, sqlmock.AnyArg(),
			booking.ID,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Update(ctx, booking)
	assert.NoError(t, err)
}

func TestBookingRepository_ListByVehicle(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()

	rows := addPendingBookingRow(bookingRows(), 100)
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE vehicle_id = \\$1 AND status = ANY\\(\\$2\\)").
		WithArgs(int32(7), sqlmock.AnyArg()).
		WillReturnRows(rows)

	bookings, err := repo.ListByVehicle(ctx, 7, domain.OccupyingStatuses)
	assert.NoError(t, err)
	assert.Len(t, bookings, 1)
	assert.Equal(t, int32(100), bookings[0].ID)
}

func TestBookingRepository_Counts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()
	since := time.Now().Add(-30 * time.Minute)

	t.Run("Pending payments", func(t *testing.T) {
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM bookings WHERE renter_id = \\$1 AND payment_status = \\$2").
			WithArgs(int32(42), domain.PaymentStatusPending, since).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		count, err := repo.CountPendingPaymentSince(ctx, 42, since)
		assert.NoError(t, err)
		assert.Equal(t, int32(2), count)
	})

	t.Run("Recent cancellations", func(t *testing.T) {
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM bookings WHERE renter_id = \\$1 AND status = \\$2").
			WithArgs(int32(42), domain.BookingStatusCancelled, since).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

		count, err := repo.CountCancelledSince(ctx, 42, since)
		assert.NoError(t, err)
		assert.Equal(t, int32(5), count)
	})
}

func TestBookingRepository_DeleteCancelledBefore(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()
	cutoff := time.Now().AddDate(0, 0, -90)

	mock.ExpectExec("DELETE FROM bookings WHERE status = \\$1 AND cancelled_at < \\$2").
		WithArgs(domain.BookingStatusCancelled, cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := repo.DeleteCancelledBefore(ctx, cutoff)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
}

func TestStore_WithinTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Commits on success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()

		store := postgres.NewStore(db)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = \\$1").
			WithArgs(int32(100)).
			WillReturnRows(addPendingBookingRow(bookingRows(), 100))
		mock.ExpectCommit()

		err = store.WithinTx(ctx, func(vehicles repository.VehicleRepository, bookings repository.BookingRepository) error {
			_, err := bookings.GetByID(ctx, 100)
			return err
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rolls back on error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()

		store := postgres.NewStore(db)
		mock.ExpectBegin()
		mock.ExpectRollback()

		err = store.WithinTx(ctx, func(vehicles repository.VehicleRepository, bookings repository.BookingRepository) error {
			return domain.ConflictError("vehicle is already booked for this period")
		})
		assert.Error(t, err)
		assert.True(t, domain.IsKind(err, domain.KindConflict))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
