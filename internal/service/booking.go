package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"carrental-backend/internal/config"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/locking"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
	"carrental-backend/internal/utils"
)

const dateLayout = "2006-01-02"

type bookingService struct {
	vehicleRepo repository.VehicleRepository
	bookingRepo repository.BookingRepository
	userRepo    repository.UserRepository
	tx          repository.TxRunner
	locker      locking.VehicleLocker
	emailSvc    EmailService
	calculator  *utils.Calculator
	lifecycle   *lifecycle
	abuse       *abusePolicy
	clock       Clock
	cfg         config.BookingConfig
}

func NewBookingService(
	vehicleRepo repository.VehicleRepository,
	bookingRepo repository.BookingRepository,
	userRepo repository.UserRepository,
	tx repository.TxRunner,
	locker locking.VehicleLocker,
	emailSvc EmailService,
	clock Clock,
	cfg config.BookingConfig,
) BookingService {
	return &bookingService{
		vehicleRepo: vehicleRepo,
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		tx:          tx,
		locker:      locker,
		emailSvc:    emailSvc,
		calculator: utils.NewCalculator(utils.PricingRules{
			WeekendSurchargeRate: cfg.WeekendSurchargeRate,
			ServiceFeeRate:       cfg.ServiceFeeRate,
			WeeklyDiscountDays:   cfg.WeeklyDiscountDays,
			WeeklyDiscountRate:   cfg.WeeklyDiscountRate,
			BiweeklyDiscountDays: cfg.BiweeklyDiscountDays,
			BiweeklyDiscountRate: cfg.BiweeklyDiscountRate,
			PriceTolerance:       cfg.PriceTolerance,
		}),
		lifecycle: newLifecycle(time.Duration(cfg.CancellationWindowHours) * time.Hour),
		abuse:     newAbusePolicy(bookingRepo, cfg),
		clock:     clock,
		cfg:       cfg,
	}
}

func (s *bookingService) CheckAvailability(ctx context.Context, vehicleID int32, startDate, endDate string, excludeBookingID int32) (bool, error) {
	now := s.clock.Now()
	start, end, err := s.parseRange(startDate, endDate, now)
	if err != nil {
		return false, err
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return false, err
	}
	if !vehicle.Rentable() {
		return false, nil
	}

	existing, err := s.bookingRepo.ListByVehicle(ctx, vehicleID, domain.OccupyingStatuses)
	if err != nil {
		return false, err
	}
	return !utils.HasConflict(start, end, existing, excludeBookingID), nil
}

func (s *bookingService) ComputePricing(ctx context.Context, vehicleID int32, startDate, endDate string, insuranceFee int64) (*domain.PriceBreakdown, error) {
	now := s.clock.Now()
	start, end, err := s.parseRange(startDate, endDate, now)
	if err != nil {
		return nil, err
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	return s.calculator.Quote(vehicle, start, end, insuranceFee)
}

// CreateBooking is the admission pipeline. Checks run in a fixed order
// and the first failure wins; nothing is written until every check has
// passed. The conflict check and the insert happen under the vehicle
// lock inside one transaction so two overlapping requests for the same
// vehicle cannot both succeed.
func (s *bookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	now := s.clock.Now()

	start, end, err := s.parseRange(req.StartDate, req.EndDate, now)
	if err != nil {
		return nil, err
	}
	if err := s.validateDuration(start, end, now); err != nil {
		return nil, err
	}

	if err := s.abuse.Check(ctx, req.RenterID, now); err != nil {
		return nil, err
	}

	token, err := s.locker.Acquire(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.locker.Release(ctx, req.VehicleID, token); err != nil {
			logger.Warn("Failed to release vehicle lock", "vehicle_id", req.VehicleID, "error", err)
		}
	}()

	var booking *domain.Booking
	err = s.tx.WithinTx(ctx, func(vehicles repository.VehicleRepository, bookings repository.BookingRepository) error {
		vehicle, err := vehicles.GetByID(ctx, req.VehicleID)
		if err != nil {
			return err
		}
		if err := rentableOrReason(vehicle); err != nil {
			return err
		}

		existing, err := bookings.ListByVehicle(ctx, req.VehicleID, domain.OccupyingStatuses)
		if err != nil {
			return err
		}
		if utils.HasConflict(start, end, existing, 0) {
			return domain.ConflictError("vehicle is already booked for this period")
		}

		breakdown, err := s.calculator.Quote(vehicle, start, end, req.InsuranceFee)
		if err != nil {
			return err
		}
		if req.ClientTotal != nil {
			if err := s.calculator.VerifyClientTotal(breakdown, *req.ClientTotal); err != nil {
				return err
			}
		}

		booking = &domain.Booking{
			Reference:        uuid.NewString(),
			VehicleID:        req.VehicleID,
			RenterID:         req.RenterID,
			StartDate:        start,
			EndDate:          end,
			PickupLocation:   req.PickupLocation,
			DropoffLocation:  req.DropoffLocation,
			BasePrice:        breakdown.BasePrice,
			WeekendSurcharge: breakdown.WeekendSurcharge,
			Discount:         breakdown.Discount,
			InsuranceFee:     breakdown.InsuranceFee,
			ServiceFee:       breakdown.ServiceFee,
			Deposit:          breakdown.Deposit,
			TotalPrice:       breakdown.TotalPrice,
			PaymentStatus:    domain.PaymentStatusPending,
			Status:           domain.BookingStatusPaymentPending,
			Notes:            req.Notes,
		}
		return bookings.Create(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Booking created",
		"booking_id", booking.ID, "reference", booking.Reference,
		"vehicle_id", booking.VehicleID, "renter_id", booking.RenterID,
		"total_price", booking.TotalPrice)

	s.notify(ctx, booking, domain.BookingStatusPaymentPending)

	return booking, nil
}

// Transition moves a booking to the target status and applies the
// coupled vehicle-status side effect inside the same transaction.
// Re-requesting the current status is a no-op: the booking is returned
// unchanged and the vehicle is not touched.
func (s *bookingService) Transition(ctx context.Context, bookingID int32, in TransitionInput) (*domain.Booking, error) {
	now := s.clock.Now()

	// Read once outside the lock to learn which vehicle to serialize on.
	current, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	token, err := s.locker.Acquire(ctx, current.VehicleID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.locker.Release(ctx, current.VehicleID, token); err != nil {
			logger.Warn("Failed to release vehicle lock", "vehicle_id", current.VehicleID, "error", err)
		}
	}()

	var booking *domain.Booking
	err = s.tx.WithinTx(ctx, func(vehicles repository.VehicleRepository, bookings repository.BookingRepository) error {
		b, err := bookings.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}

		if b.Status == in.Target {
			booking = b
			return nil
		}

		if err := s.lifecycle.Validate(ctx, b, in.Target, now); err != nil {
			return err
		}

		vehicle, err := vehicles.GetByID(ctx, b.VehicleID)
		if err != nil {
			return err
		}

		prior := b.Status
		switch in.Target {
		case domain.BookingStatusConfirmed:
			b.PaymentStatus = domain.PaymentStatusPaid
			b.PaidAt = &now
			if in.PaymentMethod != "" {
				b.PaymentMethod = in.PaymentMethod
			}
			if vehicle.Status != domain.VehicleStatusRented {
				if err := vehicles.SetStatus(ctx, vehicle.ID, domain.VehicleStatusRented, vehicle.Version); err != nil {
					return err
				}
			}

		case domain.BookingStatusInProgress:
			b.ActualStartDate = &now
			if in.Mileage != nil {
				b.MileageStart = in.Mileage
			}

		case domain.BookingStatusCompleted:
			b.ActualEndDate = &now
			if in.Mileage != nil {
				b.MileageEnd = in.Mileage
			}
			if err := s.settleMileage(b, vehicle); err != nil {
				return err
			}
			if vehicle.Status == domain.VehicleStatusRented {
				if err := vehicles.SetStatus(ctx, vehicle.ID, domain.VehicleStatusAvailable, vehicle.Version); err != nil {
					return err
				}
			}

		case domain.BookingStatusCancelled:
			b.CancellationReason = in.Reason
			b.CancelledAt = &now
			actor := in.ActorID
			b.CancelledBy = &actor
			if b.PaymentStatus == domain.PaymentStatusPaid {
				b.PaymentStatus = domain.PaymentStatusRefunded
				b.RefundAmount = b.TotalPrice
			}
			// Free the vehicle only when this booking held it: the hold
			// begins at CONFIRMED, so a PAYMENT_PENDING cancellation
			// leaves the vehicle untouched.
			if prior == domain.BookingStatusConfirmed && vehicle.Status == domain.VehicleStatusRented {
				if err := vehicles.SetStatus(ctx, vehicle.ID, domain.VehicleStatusAvailable, vehicle.Version); err != nil {
					return err
				}
			}

		default:
			return domain.StateError("unsupported target status %s", in.Target)
		}

		b.Status = in.Target
		if err := bookings.Update(ctx, b); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Booking transitioned",
		"booking_id", booking.ID, "status", booking.Status, "actor_id", in.ActorID)

	if booking.Status == in.Target && current.Status != in.Target {
		s.notify(ctx, booking, in.Target)
	}

	return booking, nil
}

func (s *bookingService) Cancel(ctx context.Context, bookingID int32, reason string, actorID int32) (*domain.Booking, error) {
	return s.Transition(ctx, bookingID, TransitionInput{
		Target:  domain.BookingStatusCancelled,
		ActorID: actorID,
		Reason:  reason,
	})
}

func (s *bookingService) GetBooking(ctx context.Context, userID, bookingID int32) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.RenterID != userID {
		return nil, domain.NotFoundError("booking %d not found", bookingID)
	}
	return b, nil
}

func (s *bookingService) ListBookings(ctx context.Context, renterID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return s.bookingRepo.ListByRenter(ctx, renterID, status, page, pageSize)
}

// parseRange parses and validates the scheduled dates: both must parse,
// the start may not lie in the past and the end must follow the start.
func (s *bookingService) parseRange(startDate, endDate string, now time.Time) (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, domain.ValidationError("invalid start date %q, expected YYYY-MM-DD", startDate)
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, domain.ValidationError("invalid end date %q, expected YYYY-MM-DD", endDate)
	}

	today := startOfDay(now)
	if start.Before(today) {
		return time.Time{}, time.Time{}, domain.ValidationError("start date must be today or later")
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, domain.ValidationError("end date must be after start date")
	}
	return start, end, nil
}

func (s *bookingService) validateDuration(start, end time.Time, now time.Time) error {
	days := domain.DurationDays(start, end)
	if days < s.cfg.MinRentalDays {
		return domain.ValidationError("minimum rental period is %d day(s)", s.cfg.MinRentalDays)
	}
	if days > s.cfg.MaxRentalDays {
		return domain.ValidationError("maximum rental period is %d days", s.cfg.MaxRentalDays)
	}
	if start.After(startOfDay(now).AddDate(0, 0, s.cfg.MaxAdvanceDays)) {
		return domain.ValidationError("bookings can be made at most %d days in advance", s.cfg.MaxAdvanceDays)
	}
	return nil
}

// settleMileage folds the extra-mileage fee into the booking total when
// both odometer readings are present.
func (s *bookingService) settleMileage(b *domain.Booking, vehicle *domain.Vehicle) error {
	if b.MileageStart == nil || b.MileageEnd == nil {
		return nil
	}
	if *b.MileageEnd < *b.MileageStart {
		return domain.ValidationError("mileage end %d cannot be below mileage start %d", *b.MileageEnd, *b.MileageStart)
	}

	limit := vehicle.MileageLimitPerDay
	if limit == 0 {
		limit = s.cfg.DefaultMileageLimitPerDay
	}
	rate := vehicle.ExtraMileageRate
	if rate == 0 {
		rate = s.cfg.DefaultExtraMileageRate
	}

	b.MileageDriven = *b.MileageEnd - *b.MileageStart
	b.ExtraMileageFee = utils.ExtraMileageFee(b.MileageDriven, b.DurationDays(), limit, rate)
	b.TotalPrice = b.BasePrice + b.InsuranceFee + b.ServiceFee + b.ExtraMileageFee
	return nil
}

// rentableOrReason converts a vehicle's state into the admission
// rejection the renter sees.
func rentableOrReason(v *domain.Vehicle) error {
	if !v.IsActive {
		return domain.ConflictError("vehicle is not available for rental")
	}
	switch v.Status {
	case domain.VehicleStatusAvailable:
		return nil
	case domain.VehicleStatusRented:
		return domain.ConflictError("vehicle is currently rented")
	case domain.VehicleStatusMaintenance:
		return domain.ConflictError("vehicle is under maintenance")
	default:
		return domain.ConflictError("vehicle is not available")
	}
}

// notify sends the status email for a transition. Failures are logged,
// never surfaced: notifications are best effort and happen after the
// transaction committed.
func (s *bookingService) notify(ctx context.Context, b *domain.Booking, status domain.BookingStatus) {
	switch status {
	case domain.BookingStatusPaymentPending, domain.BookingStatusConfirmed,
		domain.BookingStatusCancelled, domain.BookingStatusCompleted:
	default:
		return
	}

	renter, err := s.userRepo.GetByID(ctx, b.RenterID)
	if err != nil {
		logger.Warn("Failed to load renter for notification", "renter_id", b.RenterID, "error", err)
		return
	}

	switch status {
	case domain.BookingStatusPaymentPending:
		err = s.emailSvc.SendBookingCreatedNotification(ctx, renter.Email, renter.Name, b.Reference, b.TotalPrice)
	case domain.BookingStatusConfirmed:
		err = s.emailSvc.SendBookingConfirmedNotification(ctx, renter.Email, renter.Name, b.Reference, b.TotalPrice)
	case domain.BookingStatusCancelled:
		err = s.emailSvc.SendBookingCancelledNotification(ctx, renter.Email, renter.Name, b.Reference, b.CancellationReason)
	case domain.BookingStatusCompleted:
		err = s.emailSvc.SendBookingCompletedNotification(ctx, renter.Email, renter.Name, b.Reference, b.TotalPrice)
	default:
		return
	}
	if err != nil {
		logger.Warn("Failed to send booking notification", "booking_id", b.ID, "status", status, "error", err)
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
