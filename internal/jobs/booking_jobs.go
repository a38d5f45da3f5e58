package jobs

import (
	"context"
	"time"

	"carrental-backend/internal/logger"
)

// ExpireStalePaymentPending cancels bookings whose payment never
// arrived within the pending-payment window. These bookings never held
// the vehicle, so no vehicle status changes here.
func (jr *JobRunner) ExpireStalePaymentPending() {
	jr.runWithRecovery("ExpireStalePaymentPending", func() {
		ctx := context.Background()
		cutoff := time.Now().Add(-time.Duration(jr.config.Booking.PendingPaymentWindowMins) * time.Minute)

		query := `
			UPDATE bookings
			SET status = 'CANCELLED',
			    cancellation_reason = 'payment not completed in time',
			    cancelled_at = NOW(),
			    updated_on = NOW()
			WHERE status = 'PAYMENT_PENDING'
			  AND created_on < $1
			RETURNING id, renter_id, vehicle_id
		`

		rows, err := jr.db.QueryContext(ctx, query, cutoff)
		if err != nil {
			logger.Error("Failed to expire stale bookings", "error", err)
			return
		}
		defer rows.Close()

		count := 0
		for rows.Next() {
			var id, renterID, vehicleID int32
			if err := rows.Scan(&id, &renterID, &vehicleID); err != nil {
				logger.Error("Failed to scan expired booking", "error", err)
				continue
			}
			count++
			logger.Debug("Expired unpaid booking",
				"booking_id", id, "renter_id", renterID, "vehicle_id", vehicleID)
		}

		if err := rows.Err(); err != nil {
			logger.Error("Error iterating expired bookings", "error", err)
			return
		}

		logger.Info("Expired unpaid bookings", "count", count)
	})
}

// PurgeCancelledBookings removes cancelled bookings past the retention
// period.
func (jr *JobRunner) PurgeCancelledBookings() {
	jr.runWithRecovery("PurgeCancelledBookings", func() {
		ctx := context.Background()
		cutoff := time.Now().AddDate(0, 0, -jr.config.Booking.CancelledRetentionDays)

		deleted, err := jr.store.DeleteCancelledBefore(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to purge cancelled bookings", "error", err)
			return
		}

		logger.Info("Purged cancelled bookings", "count", deleted, "cutoff", cutoff.Format("2006-01-02"))
	})
}
