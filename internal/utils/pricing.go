package utils

import (
	"math"
	"time"

	"carrental-backend/internal/domain"
)

// PricingRules holds the tunable pricing constants. Values live in
// configuration so tests and deployments can override them without code
// changes.
type PricingRules struct {
	WeekendSurchargeRate float64 // applied per Saturday/Sunday in the range
	ServiceFeeRate       float64 // platform fee on the adjusted base price
	WeeklyDiscountDays   int     // minimum duration for the first discount tier
	WeeklyDiscountRate   float64
	BiweeklyDiscountDays int // minimum duration for the second tier
	BiweeklyDiscountRate float64
	PriceTolerance       int64 // max |client total - server total| accepted
}

// DefaultPricingRules returns the documented defaults: 15% weekend
// surcharge, 10% service fee, 10% off from 7 days, 15% off from 14 days,
// one currency unit of tolerance.
func DefaultPricingRules() PricingRules {
	return PricingRules{
		WeekendSurchargeRate: 0.15,
		ServiceFeeRate:       0.10,
		WeeklyDiscountDays:   7,
		WeeklyDiscountRate:   0.10,
		BiweeklyDiscountDays: 14,
		BiweeklyDiscountRate: 0.15,
		PriceTolerance:       1,
	}
}

// Calculator produces price breakdowns for a vehicle and date range.
// It is pure: no storage access, no wall clock.
type Calculator struct {
	rules PricingRules
}

func NewCalculator(rules PricingRules) *Calculator {
	return &Calculator{rules: rules}
}

// Quote computes the itemized price for renting the vehicle over the
// half-open range [start, end).
//
// Order matters: the weekend surcharge is added to the raw base first,
// then the long-term discount applies to the surcharge-adjusted base,
// then the service fee. Intermediate values stay unrounded; only the
// service fee and the final total are rounded (half-up).
func (c *Calculator) Quote(vehicle *domain.Vehicle, start, end time.Time, insuranceFee int64) (*domain.PriceBreakdown, error) {
	if !end.After(start) {
		return nil, domain.ValidationError("end date must be after start date")
	}
	if insuranceFee < 0 {
		return nil, domain.ValidationError("insurance fee cannot be negative")
	}

	days := domain.DurationDays(start, end)
	rate := float64(vehicle.RatePerDay)

	base := float64(days) * rate

	surcharge := float64(CountWeekendDays(start, end)) * rate * c.rules.WeekendSurchargeRate
	base += surcharge

	var discount float64
	switch {
	case days >= c.rules.BiweeklyDiscountDays:
		discount = base * c.rules.BiweeklyDiscountRate
	case days >= c.rules.WeeklyDiscountDays:
		discount = base * c.rules.WeeklyDiscountRate
	}
	base -= discount

	serviceFee := roundHalfUp(base * c.rules.ServiceFeeRate)
	total := roundHalfUp(base + float64(serviceFee) + float64(insuranceFee))

	deposit := vehicle.Deposit
	if deposit == 0 {
		deposit = vehicle.DefaultDeposit()
	}

	return &domain.PriceBreakdown{
		DurationDays:     days,
		RatePerDay:       vehicle.RatePerDay,
		BasePrice:        roundHalfUp(base),
		WeekendSurcharge: roundHalfUp(surcharge),
		Discount:         roundHalfUp(discount),
		ServiceFee:       serviceFee,
		InsuranceFee:     insuranceFee,
		Deposit:          deposit,
		TotalPrice:       total,
	}, nil
}

// VerifyClientTotal guards against client-side price tampering. The
// client-echoed total must match the recomputed one within the
// configured tolerance.
func (c *Calculator) VerifyClientTotal(breakdown *domain.PriceBreakdown, clientTotal int64) error {
	diff := clientTotal - breakdown.TotalPrice
	if diff < 0 {
		diff = -diff
	}
	if diff > c.rules.PriceTolerance {
		return domain.PriceMismatchError("price mismatch: calculated %d, provided %d", breakdown.TotalPrice, clientTotal)
	}
	return nil
}

// CountWeekendDays counts Saturdays and Sundays in [start, end).
func CountWeekendDays(start, end time.Time) int {
	count := 0
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			count++
		}
	}
	return count
}

// ExtraMileageFee charges for kilometers driven beyond the daily
// allowance. Zero when the reading stayed within the limit.
func ExtraMileageFee(drivenKm int64, durationDays int, limitPerDay int32, ratePerKm int64) int64 {
	allowed := int64(durationDays) * int64(limitPerDay)
	extra := drivenKm - allowed
	if extra <= 0 {
		return 0
	}
	return extra * ratePerKm
}

func roundHalfUp(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}
