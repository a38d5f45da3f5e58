package domain

import "time"

type UserRole string

const (
	UserRoleCustomer UserRole = "CUSTOMER"
	UserRoleOwner    UserRole = "OWNER"
	UserRoleAdmin    UserRole = "ADMIN"
)

// User is the caller identity the booking engine reads. Account
// management and authentication live outside this service; the engine
// only needs id, role and a contact address for notifications.
type User struct {
	ID        int32     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      UserRole  `json:"role"`
	IsBlocked bool      `json:"is_blocked"`
	CreatedOn time.Time `json:"created_on"`
}
