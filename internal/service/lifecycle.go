package service

import (
	"context"
	"time"

	"github.com/looplab/fsm"

	"carrental-backend/internal/domain"
)

// Lifecycle events. Each event drives the booking into exactly one
// target status; the table below is the only source of legal moves.
const (
	eventConfirm  = "confirm"
	eventPickUp   = "pick_up"
	eventComplete = "complete"
	eventCancel   = "cancel"
)

func lifecycleEvents() fsm.Events {
	return fsm.Events{
		{Name: eventConfirm, Src: []string{string(domain.BookingStatusPaymentPending)}, Dst: string(domain.BookingStatusConfirmed)},
		{Name: eventPickUp, Src: []string{string(domain.BookingStatusConfirmed)}, Dst: string(domain.BookingStatusInProgress)},
		{Name: eventComplete, Src: []string{string(domain.BookingStatusInProgress)}, Dst: string(domain.BookingStatusCompleted)},
		{Name: eventCancel, Src: []string{string(domain.BookingStatusPaymentPending), string(domain.BookingStatusConfirmed)}, Dst: string(domain.BookingStatusCancelled)},
	}
}

func eventForTarget(target domain.BookingStatus) (string, bool) {
	switch target {
	case domain.BookingStatusConfirmed:
		return eventConfirm, true
	case domain.BookingStatusInProgress:
		return eventPickUp, true
	case domain.BookingStatusCompleted:
		return eventComplete, true
	case domain.BookingStatusCancelled:
		return eventCancel, true
	default:
		return "", false
	}
}

// lifecycle validates booking status transitions. It owns the timing
// guard on cancellation; the storage side effects stay with the caller
// so they run inside the caller's transaction.
type lifecycle struct {
	cancellationWindow time.Duration
}

func newLifecycle(cancellationWindow time.Duration) *lifecycle {
	return &lifecycle{cancellationWindow: cancellationWindow}
}

// Validate checks that moving the booking to target at time now is
// legal. Returns a StateError for any move outside the transition
// table, and for a CONFIRMED cancellation inside the window before
// pickup.
func (l *lifecycle) Validate(ctx context.Context, b *domain.Booking, target domain.BookingStatus, now time.Time) error {
	event, ok := eventForTarget(target)
	if !ok {
		return domain.StateError("no transition leads to status %s", target)
	}

	var guardErr error
	machine := fsm.NewFSM(string(b.Status), lifecycleEvents(), fsm.Callbacks{
		"before_" + eventCancel: func(_ context.Context, e *fsm.Event) {
			if err := l.guardCancel(b, now); err != nil {
				guardErr = err
				e.Cancel(err)
			}
		},
	})

	if err := machine.Event(ctx, event); err != nil {
		if guardErr != nil {
			return guardErr
		}
		return domain.StateError("cannot transition booking from %s to %s", b.Status, target)
	}
	return nil
}

// guardCancel rejects cancelling a CONFIRMED booking less than the
// configured window before its start date. PAYMENT_PENDING bookings
// can always be cancelled.
func (l *lifecycle) guardCancel(b *domain.Booking, now time.Time) error {
	if b.Status != domain.BookingStatusConfirmed {
		return nil
	}
	if !b.StartDate.After(now.Add(l.cancellationWindow)) {
		return domain.StateError("confirmed bookings can only be cancelled more than %.0f hours before pickup", l.cancellationWindow.Hours())
	}
	return nil
}
