package permission

import (
	"sync"

	"github.com/AtirathTechnologies/warehouse-hub/internal"
)

// PermissionMatrix is the mutable role → capabilities mapping owned by the
// settings surface. Readers get copies; the only mutations are Toggle and Replace.
type PermissionMatrix struct {
	mu    sync.RWMutex
	roles Matrix
}

// NewPermissionMatrix starts from DefaultMatrix.
func NewPermissionMatrix() *PermissionMatrix {
	return &PermissionMatrix{roles: DefaultMatrix()}
}

func (p *PermissionMatrix) Get(role Role) (RoleCapabilities, error) {
	if !role.Valid() {
		return RoleCapabilities{}, internal.ErrUnknownRole
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.roles.For(role), nil
}

// Change is one applied toggle: the row before and after it and the whole
// matrix right after, all read under the same lock.
type Change struct {
	Before   RoleCapabilities
	After    RoleCapabilities
	Snapshot Matrix
}

// Toggle flips key on role following ToggleCapability and stores the result.
func (p *PermissionMatrix) Toggle(role Role, key Capability) (RoleCapabilities, error) {
	change, err := p.Apply(role, key)
	if err != nil {
		return RoleCapabilities{}, err
	}
	return change.After, nil
}

// Apply is Toggle reporting the full change, so a concurrent Replace cannot
// slip between reading the old row and writing the new one.
func (p *PermissionMatrix) Apply(role Role, key Capability) (Change, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	before := p.roles.For(role)
	next, err := ToggleCapability(role, before, key)
	if err != nil {
		return Change{}, err
	}
	if p.roles == nil {
		p.roles = make(Matrix, len(Roles))
	}
	p.roles[role] = next
	return Change{Before: before, After: next, Snapshot: p.roles.Clone()}, nil
}

// Replace swaps the whole matrix for snapshot. The snapshot is trusted as-is.
func (p *PermissionMatrix) Replace(snapshot Matrix) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.roles = snapshot.Clone()
}

func (p *PermissionMatrix) Snapshot() Matrix {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.roles.Clone()
}
