package permission

import (
	"github.com/AtirathTechnologies/warehouse-hub/internal"
)

// Capability names a single boolean permission on a role.
type Capability string

const (
	AllowUserCreation     Capability = "allowUserCreation"
	AllowUserDeletion     Capability = "allowUserDeletion"
	AllowReportGeneration Capability = "allowReportGeneration"
	AllowReportViewing    Capability = "allowReportViewing"
)

var Capabilities = []Capability{
	AllowUserCreation,
	AllowUserDeletion,
	AllowReportGeneration,
	AllowReportViewing,
}

func ParseCapability(s string) (Capability, error) {
	for _, c := range Capabilities {
		if s == string(c) {
			return c, nil
		}
	}
	return "", internal.ErrUnknownCapability.WithDetails(map[string]string{"capability": s})
}

type RoleCapabilities struct {
	AllowUserCreation     bool `json:"allowUserCreation"`
	AllowUserDeletion     bool `json:"allowUserDeletion"`
	AllowReportGeneration bool `json:"allowReportGeneration"`
	AllowReportViewing    bool `json:"allowReportViewing"`
}

func (c RoleCapabilities) Get(key Capability) (bool, error) {
	switch key {
	case AllowUserCreation:
		return c.AllowUserCreation, nil
	case AllowUserDeletion:
		return c.AllowUserDeletion, nil
	case AllowReportGeneration:
		return c.AllowReportGeneration, nil
	case AllowReportViewing:
		return c.AllowReportViewing, nil
	}
	return false, internal.ErrUnknownCapability
}

func (c *RoleCapabilities) set(key Capability, v bool) {
	switch key {
	case AllowUserCreation:
		c.AllowUserCreation = v
	case AllowUserDeletion:
		c.AllowUserDeletion = v
	case AllowReportGeneration:
		c.AllowReportGeneration = v
	case AllowReportViewing:
		c.AllowReportViewing = v
	}
}

// ToggleCapability applies the toggle rules to caps and returns the result.
// First matching rule wins:
//  1. Staff cannot toggle report viewing; caps is returned unchanged.
//  2. Admin/Manager toggling generation also clears viewing.
//  3. Admin/Manager toggling viewing also clears generation.
//  4. Anything else flips only the named field.
func ToggleCapability(role Role, caps RoleCapabilities, key Capability) (RoleCapabilities, error) {
	if !role.Valid() {
		return caps, internal.ErrUnknownRole
	}
	current, err := caps.Get(key)
	if err != nil {
		return caps, err
	}

	switch {
	case role == RoleStaff && key == AllowReportViewing:
		return caps, nil
	case role.isPrivileged() && key == AllowReportGeneration:
		caps.AllowReportGeneration = !current
		caps.AllowReportViewing = false
	case role.isPrivileged() && key == AllowReportViewing:
		caps.AllowReportViewing = !current
		caps.AllowReportGeneration = false
	default:
		caps.set(key, !current)
	}
	return caps, nil
}

// Matrix is a snapshot of capabilities per role. A role missing from the map
// has every capability off.
type Matrix map[Role]RoleCapabilities

// DefaultMatrix is the matrix used before any document has been published.
func DefaultMatrix() Matrix {
	return Matrix{
		RoleAdmin: {
			AllowUserCreation:     true,
			AllowUserDeletion:     true,
			AllowReportGeneration: true,
		},
		RoleManager: {
			AllowUserCreation:  true,
			AllowReportViewing: true,
		},
		RoleStaff: {
			AllowReportGeneration: true,
		},
		RoleViewer: {
			AllowReportViewing: true,
		},
	}
}

// For returns the capabilities of role, zero-valued when absent.
func (m Matrix) For(role Role) RoleCapabilities {
	if m == nil {
		return RoleCapabilities{}
	}
	return m[role]
}

func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for r, c := range m {
		out[r] = c
	}
	return out
}
