package service

import (
	"context"
	"time"

	"carrental-backend/internal/config"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

// abusePolicy rate-limits booking creation per renter. Both checks are
// plain queries over the booking log; no separate counters are kept.
type abusePolicy struct {
	bookings repository.BookingRepository
	cfg      config.BookingConfig
}

func newAbusePolicy(bookings repository.BookingRepository, cfg config.BookingConfig) *abusePolicy {
	return &abusePolicy{bookings: bookings, cfg: cfg}
}

// Check rejects renters with too many unpaid bookings created recently
// (stuck-payment guard) or too many cancellations in the past days
// (cancellation-abuse guard).
func (p *abusePolicy) Check(ctx context.Context, renterID int32, now time.Time) error {
	pendingSince := now.Add(-time.Duration(p.cfg.PendingPaymentWindowMins) * time.Minute)
	pending, err := p.bookings.CountPendingPaymentSince(ctx, renterID, pendingSince)
	if err != nil {
		return err
	}
	if pending >= int32(p.cfg.MaxPendingPayments) {
		return domain.RateLimitError("too many unpaid bookings; complete payment or cancel an existing booking first")
	}

	cancelledSince := now.AddDate(0, 0, -p.cfg.RecentCancellationDays)
	cancelled, err := p.bookings.CountCancelledSince(ctx, renterID, cancelledSince)
	if err != nil {
		return err
	}
	if cancelled >= int32(p.cfg.MaxRecentCancellations) {
		return domain.RateLimitError("too many recent cancellations; please contact support")
	}

	return nil
}
