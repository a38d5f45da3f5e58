package domain

import "time"

type BookingStatus string

const (
	BookingStatusPaymentPending BookingStatus = "PAYMENT_PENDING"
	BookingStatusConfirmed      BookingStatus = "CONFIRMED"
	BookingStatusInProgress     BookingStatus = "IN_PROGRESS"
	BookingStatusCompleted      BookingStatus = "COMPLETED"
	BookingStatusCancelled      BookingStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusPartial  PaymentStatus = "PARTIAL"
)

type PaymentMethod string

const (
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodWallet       PaymentMethod = "WALLET"
)

// OccupyingStatuses are the booking statuses during which the vehicle is
// considered held. Only these participate in date-conflict checks;
// PAYMENT_PENDING, COMPLETED and CANCELLED bookings never block a range.
var OccupyingStatuses = []BookingStatus{
	BookingStatusConfirmed,
	BookingStatusInProgress,
}

// IsOccupying reports whether a booking in this status holds the vehicle.
func (s BookingStatus) IsOccupying() bool {
	return s == BookingStatusConfirmed || s == BookingStatusInProgress
}

// IsTerminal reports whether no further transitions are possible.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

type Booking struct {
	ID        int32  `json:"id"`
	Reference string `json:"reference"`
	VehicleID int32  `json:"vehicle_id"`
	RenterID  int32  `json:"renter_id"`

	// Scheduled half-open day range [StartDate, EndDate). The end date
	// itself is excluded so back-to-back bookings do not collide.
	StartDate       time.Time  `json:"start_date"`
	EndDate         time.Time  `json:"end_date"`
	ActualStartDate *time.Time `json:"actual_start_date,omitempty"`
	ActualEndDate   *time.Time `json:"actual_end_date,omitempty"`

	PickupLocation  string `json:"pickup_location"`
	DropoffLocation string `json:"dropoff_location"`

	MileageStart  *int64 `json:"mileage_start,omitempty"`
	MileageEnd    *int64 `json:"mileage_end,omitempty"`
	MileageDriven int64  `json:"mileage_driven"`

	// Price snapshot, captured at admission time. BasePrice already has
	// the weekend surcharge and long-term discount folded in.
	BasePrice        int64 `json:"base_price"`
	WeekendSurcharge int64 `json:"weekend_surcharge"`
	Discount         int64 `json:"discount"`
	InsuranceFee     int64 `json:"insurance_fee"`
	ServiceFee       int64 `json:"service_fee"`
	ExtraMileageFee  int64 `json:"extra_mileage_fee"`
	Deposit          int64 `json:"deposit"`
	TotalPrice       int64 `json:"total_price"`
	RefundAmount     int64 `json:"refund_amount"`

	PaymentStatus PaymentStatus `json:"payment_status"`
	PaymentMethod PaymentMethod `json:"payment_method,omitempty"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`

	Status             BookingStatus `json:"status"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`
	CancelledBy        *int32        `json:"cancelled_by,omitempty"`

	Notes     string    `json:"notes,omitempty"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// DurationDays returns the scheduled rental length in whole days,
// rounding any partial day up.
func (b *Booking) DurationDays() int {
	return DurationDays(b.StartDate, b.EndDate)
}

// DurationDays computes ceil((end-start)/24h) for a half-open day range.
func DurationDays(start, end time.Time) int {
	hours := end.Sub(start).Hours()
	days := int(hours / 24)
	if hours > float64(days)*24 {
		days++
	}
	return days
}

// PriceBreakdown is the itemized quote the pricing calculator produces.
// Deposit is informational and not included in TotalPrice.
type PriceBreakdown struct {
	DurationDays     int   `json:"duration_days"`
	RatePerDay       int64 `json:"rate_per_day"`
	BasePrice        int64 `json:"base_price"`
	WeekendSurcharge int64 `json:"weekend_surcharge"`
	Discount         int64 `json:"discount"`
	ServiceFee       int64 `json:"service_fee"`
	InsuranceFee     int64 `json:"insurance_fee"`
	Deposit          int64 `json:"deposit"`
	TotalPrice       int64 `json:"total_price"`
}
