package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

type MockVehicleRepo struct {
	mock.Mock
}

func (m *MockVehicleRepo) GetByID(ctx context.Context, id int32) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *MockVehicleRepo) SetStatus(ctx context.Context, id int32, status domain.VehicleStatus, version int32) error {
	args := m.Called(ctx, id, status, version)
	return args.Error(0)
}

func (m *MockVehicleRepo) ListByStatus(ctx context.Context, status domain.VehicleStatus, page, pageSize int32) ([]domain.Vehicle, int32, error) {
	args := m.Called(ctx, status, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Vehicle), args.Get(1).(int32), args.Error(2)
}

type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepo) GetByID(ctx context.Context, id int32) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) Update(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepo) ListByVehicle(ctx context.Context, vehicleID int32, statuses []domain.BookingStatus) ([]domain.Booking, error) {
	args := m.Called(ctx, vehicleID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) ListByRenter(ctx context.Context, renterID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, renterID, status, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}

func (m *MockBookingRepo) CountPendingPaymentSince(ctx context.Context, renterID int32, since time.Time) (int32, error) {
	args := m.Called(ctx, renterID, since)
	return args.Get(0).(int32), args.Error(1)
}

func (m *MockBookingRepo) CountCancelledSince(ctx context.Context, renterID int32, since time.Time) (int32, error) {
	args := m.Called(ctx, renterID, since)
	return args.Get(0).(int32), args.Error(1)
}

func (m *MockBookingRepo) DeleteCancelledBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendBookingCreatedNotification(ctx context.Context, email, name, reference string, total int64) error {
	args := m.Called(ctx, email, name, reference, total)
	return args.Error(0)
}

func (m *MockEmailService) SendBookingConfirmedNotification(ctx context.Context, email, name, reference string, total int64) error {
	args := m.Called(ctx, email, name, reference, total)
	return args.Error(0)
}

func (m *MockEmailService) SendBookingCancelledNotification(ctx context.Context, email, name, reference, reason string) error {
	args := m.Called(ctx, email, name, reference, reason)
	return args.Error(0)
}

func (m *MockEmailService) SendBookingCompletedNotification(ctx context.Context, email, name, reference string, total int64) error {
	args := m.Called(ctx, email, name, reference, total)
	return args.Error(0)
}

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Acquire(ctx context.Context, vehicleID int32) (string, error) {
	args := m.Called(ctx, vehicleID)
	return args.String(0), args.Error(1)
}

func (m *MockLocker) Release(ctx context.Context, vehicleID int32, token string) error {
	args := m.Called(ctx, vehicleID, token)
	return args.Error(0)
}

// passthroughTx runs the transactional function directly against the
// test mocks, with no real transaction underneath.
type passthroughTx struct {
	vehicles repository.VehicleRepository
	bookings repository.BookingRepository
}

func (t *passthroughTx) WithinTx(ctx context.Context, fn func(vehicles repository.VehicleRepository, bookings repository.BookingRepository) error) error {
	return fn(t.vehicles, t.bookings)
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }
