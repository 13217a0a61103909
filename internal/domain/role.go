package domain

// Role distinguishes the two sides of a booking.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

func ValidRole(r Role) bool {
	return r == RoleBuyer || r == RoleSeller
}
