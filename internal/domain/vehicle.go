package domain

import "time"

type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "AVAILABLE"
	VehicleStatusRented      VehicleStatus = "RENTED"
	VehicleStatusMaintenance VehicleStatus = "MAINTENANCE"
	VehicleStatusInactive    VehicleStatus = "INACTIVE"
)

type VehicleCategory string

const (
	VehicleCategoryEconomy VehicleCategory = "ECONOMY"
	VehicleCategoryComfort VehicleCategory = "COMFORT"
	VehicleCategoryPremium VehicleCategory = "PREMIUM"
	VehicleCategorySUV     VehicleCategory = "SUV"
	VehicleCategoryVan     VehicleCategory = "VAN"
	VehicleCategoryLuxury  VehicleCategory = "LUXURY"
)

type Vehicle struct {
	ID                 int32           `json:"id"`
	OwnerID            int32           `json:"owner_id"`
	Brand              string          `json:"brand"`
	Model              string          `json:"model"`
	Year               int32           `json:"year"`
	PlateNumber        string          `json:"plate_number"`
	Category           VehicleCategory `json:"category"`
	Seats              int32           `json:"seats"`
	City               string          `json:"city"`
	RatePerDay         int64           `json:"rate_per_day"`
	Deposit            int64           `json:"deposit"`
	MileageLimitPerDay int32           `json:"mileage_limit_per_day"`
	ExtraMileageRate   int64           `json:"extra_mileage_rate"`
	Status             VehicleStatus   `json:"status"`
	IsActive           bool            `json:"is_active"`
	// Version guards concurrent status writes. Every status update
	// increments it; a stale version means another request won.
	Version   int32     `json:"version"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// Rentable reports whether the vehicle can accept a new booking at all,
// before any date-range conflict check.
func (v *Vehicle) Rentable() bool {
	return v.IsActive && v.Status == VehicleStatusAvailable
}

// DefaultDeposit returns the deposit used when none is configured:
// three days worth of the daily rate.
func (v *Vehicle) DefaultDeposit() int64 {
	return v.RatePerDay * 3
}
