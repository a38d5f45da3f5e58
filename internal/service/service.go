package service

import (
	"context"
	"time"

	"carrental-backend/internal/domain"
)

// Clock supplies the wall-clock time. Each request reads it exactly
// once so every time comparison within the request sees the same "now".
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func NewRealClock() Clock { return realClock{} }

// CreateBookingRequest is the admission input. ClientTotal, when set,
// is the total the client saw; it is verified against the recomputed
// price, never trusted.
type CreateBookingRequest struct {
	RenterID        int32
	VehicleID       int32
	StartDate       string
	EndDate         string
	InsuranceFee    int64
	ClientTotal     *int64
	PickupLocation  string
	DropoffLocation string
	Notes           string
}

// TransitionInput drives a lifecycle transition. Mileage carries the
// odometer reading at pickup (mileage start) or return (mileage end).
type TransitionInput struct {
	Target        domain.BookingStatus
	ActorID       int32
	Reason        string
	Mileage       *int64
	PaymentMethod domain.PaymentMethod
}

type BookingService interface {
	CheckAvailability(ctx context.Context, vehicleID int32, startDate, endDate string, excludeBookingID int32) (bool, error)
	ComputePricing(ctx context.Context, vehicleID int32, startDate, endDate string, insuranceFee int64) (*domain.PriceBreakdown, error)
	CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error)
	Transition(ctx context.Context, bookingID int32, in TransitionInput) (*domain.Booking, error)
	Cancel(ctx context.Context, bookingID int32, reason string, actorID int32) (*domain.Booking, error)
	GetBooking(ctx context.Context, userID, bookingID int32) (*domain.Booking, error)
	ListBookings(ctx context.Context, renterID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error)
}

type VehicleService interface {
	GetVehicle(ctx context.Context, id int32) (*domain.Vehicle, error)
	ListAvailableVehicles(ctx context.Context, page, pageSize int32) ([]domain.Vehicle, int32, error)
}

type EmailService interface {
	SendBookingCreatedNotification(ctx context.Context, email, name, reference string, total int64) error
	SendBookingConfirmedNotification(ctx context.Context, email, name, reference string, total int64) error
	SendBookingCancelledNotification(ctx context.Context, email, name, reference, reason string) error
	SendBookingCompletedNotification(ctx context.Context, email, name, reference string, total int64) error
}
