package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"carrental-backend/internal/domain"
)

func TestRangesOverlap(t *testing.T) {
	t.Run("Identical ranges overlap", func(t *testing.T) {
		assert.True(t, RangesOverlap(day("2026-09-01"), day("2026-09-05"), day("2026-09-01"), day("2026-09-05")))
	})

	t.Run("Partial overlap", func(t *testing.T) {
		assert.True(t, RangesOverlap(day("2026-09-01"), day("2026-09-05"), day("2026-09-04"), day("2026-09-08")))
		assert.True(t, RangesOverlap(day("2026-09-04"), day("2026-09-08"), day("2026-09-01"), day("2026-09-05")))
	})

	t.Run("Containment", func(t *testing.T) {
		assert.True(t, RangesOverlap(day("2026-09-01"), day("2026-09-10"), day("2026-09-03"), day("2026-09-05")))
	})

	t.Run("Back to back ranges do not overlap", func(t *testing.T) {
		// Checkout and pickup on the same day is allowed.
		assert.False(t, RangesOverlap(day("2026-09-01"), day("2026-09-05"), day("2026-09-05"), day("2026-09-08")))
		assert.False(t, RangesOverlap(day("2026-09-05"), day("2026-09-08"), day("2026-09-01"), day("2026-09-05")))
	})

	t.Run("Disjoint ranges", func(t *testing.T) {
		assert.False(t, RangesOverlap(day("2026-09-01"), day("2026-09-03"), day("2026-09-10"), day("2026-09-12")))
	})
}

func TestHasConflict(t *testing.T) {
	existing := []domain.Booking{
		{ID: 1, StartDate: day("2026-09-01"), EndDate: day("2026-09-05"), Status: domain.BookingStatusConfirmed},
		{ID: 2, StartDate: day("2026-09-10"), EndDate: day("2026-09-12"), Status: domain.BookingStatusInProgress},
		{ID: 3, StartDate: day("2026-09-15"), EndDate: day("2026-09-20"), Status: domain.BookingStatusCancelled},
		{ID: 4, StartDate: day("2026-09-15"), EndDate: day("2026-09-20"), Status: domain.BookingStatusPaymentPending},
	}

	t.Run("Conflicts with confirmed booking", func(t *testing.T) {
		assert.True(t, HasConflict(day("2026-09-03"), day("2026-09-07"), existing, 0))
	})

	t.Run("Conflicts with in-progress booking", func(t *testing.T) {
		assert.True(t, HasConflict(day("2026-09-11"), day("2026-09-13"), existing, 0))
	})

	t.Run("Cancelled and unpaid bookings never block", func(t *testing.T) {
		assert.False(t, HasConflict(day("2026-09-15"), day("2026-09-20"), existing, 0))
	})

	t.Run("Back to back with existing booking", func(t *testing.T) {
		assert.False(t, HasConflict(day("2026-09-05"), day("2026-09-10"), existing, 0))
	})

	t.Run("Excluded booking is skipped", func(t *testing.T) {
		assert.True(t, HasConflict(day("2026-09-03"), day("2026-09-07"), existing, 2))
		assert.False(t, HasConflict(day("2026-09-03"), day("2026-09-05"), existing, 1))
	})
}
