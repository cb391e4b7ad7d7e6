package permission

import (
	"github.com/AtirathTechnologies/warehouse-hub/internal"
)

// Role is one of the four fixed user classes. Adding a role is a code change.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleManager Role = "Manager"
	RoleStaff   Role = "Staff"
	RoleViewer  Role = "Viewer"
)

// Roles lists every role in display order.
var Roles = []Role{RoleAdmin, RoleManager, RoleStaff, RoleViewer}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStaff, RoleViewer:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole accepts only the exact wire names, matching the keys of the stored matrix.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if s == string(r) {
			return r, nil
		}
	}
	return "", internal.ErrUnknownRole.WithDetails(map[string]string{"role": s})
}

// isPrivileged is the Admin/Manager bloc used by the exclusion rule and the admin section.
func (r Role) isPrivileged() bool {
	return r == RoleAdmin || r == RoleManager
}
