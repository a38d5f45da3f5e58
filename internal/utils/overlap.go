package utils

import (
	"time"

	"carrental-backend/internal/domain"
)

// RangesOverlap reports whether the half-open day ranges [s1, e1) and
// [s2, e2) share at least one day. End dates are exclusive: a checkout
// on day X and a pickup on day X do not overlap.
func RangesOverlap(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// HasConflict checks a candidate range against the vehicle's existing
// bookings. Only bookings in an occupying status block the range;
// excludeID lets an in-place edit skip its own record.
func HasConflict(start, end time.Time, existing []domain.Booking, excludeID int32) bool {
	for i := range existing {
		b := &existing[i]
		if excludeID != 0 && b.ID == excludeID {
			continue
		}
		if !b.Status.IsOccupying() {
			continue
		}
		if RangesOverlap(start, end, b.StartDate, b.EndDate) {
			return true
		}
	}
	return false
}
