package user

import "errors"

var ErrInvalidRole = errors.New("invalid role")

// Role is the marketplace actor type carried in JWT claims. Guests book
// rooms, vendors manage their property's inventory, admins run cleanup and
// moderation surfaces.
type Role string

const (
	RoleGuest  Role = "guest"
	RoleVendor Role = "vendor"
	RoleAdmin  Role = "admin"
)

func NewRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleGuest, RoleVendor, RoleAdmin:
		return true
	default:
		return false
	}
}
