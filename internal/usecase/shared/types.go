package shared

import (
	"roomstay/internal/domain/user"

	"github.com/google/uuid"
)

// Viewer identifies the authenticated actor a query or command runs as.
type Viewer struct {
	ID   uuid.UUID
	Role user.Role
}

func (v Viewer) IsAdmin() bool {
	return v.Role == user.RoleAdmin
}

func (v Viewer) IsVendor() bool {
	return v.Role == user.RoleVendor
}
