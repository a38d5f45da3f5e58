package repository

import (
	"context"
	"time"

	"carrental-backend/internal/domain"
)

type VehicleRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Vehicle, error)
	// SetStatus writes the vehicle status guarded by an optimistic
	// version check: the update only applies when the stored version
	// still equals the one read. A stale version yields a conflict.
	SetStatus(ctx context.Context, id int32, status domain.VehicleStatus, version int32) error
	ListByStatus(ctx context.Context, status domain.VehicleStatus, page, pageSize int32) ([]domain.Vehicle, int32, error)
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int32) (*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
	// ListByVehicle returns the vehicle's bookings whose status is in
	// statuses, for the conflict detector.
	ListByVehicle(ctx context.Context, vehicleID int32, statuses []domain.BookingStatus) ([]domain.Booking, error)
	ListByRenter(ctx context.Context, renterID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error)

	// Abuse-prevention queries, computed from the booking log itself.
	CountPendingPaymentSince(ctx context.Context, renterID int32, since time.Time) (int32, error)
	CountCancelledSince(ctx context.Context, renterID int32, since time.Time) (int32, error)

	// DeleteCancelledBefore purges terminal cancelled records older
	// than the cutoff. Administrative use only.
	DeleteCancelledBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.User, error)
}

// TxRunner executes fn with repositories bound to a single database
// transaction. The conflict check, booking write and vehicle status
// write of one admission or lifecycle transition all go through the
// same scope so no partial state becomes visible.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(vehicles VehicleRepository, bookings BookingRepository) error) error
}
