package auditlog

import (
	"context"
	"time"

	auditDatamodel "github.com/AtirathTechnologies/warehouse-hub/internal/core/datamodel/auditlog"
)

type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

type Module string

const (
	ModuleSettings Module = "SETTINGS"
	ModuleReports  Module = "REPORTS"
	ModuleStock    Module = "STOCK"
	ModuleUsers    Module = "USERS"
	ModuleCatalog  Module = "CATALOG"
)

// Entry is one append-only audit record.
type Entry struct {
	ID          string    `json:"id"`
	User        string    `json:"user"`
	Action      Action    `json:"action"`
	Module      Module    `json:"module"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

//go:generate mockgen -source=auditlog.go -destination=mocks/mock_sink.go -package=mocks

// Sink accepts audit entries. Append must not block the caller for long and
// its failure never undoes the operation being audited.
type Sink interface {
	Append(ctx context.Context, entry Entry) error
}

// Filter narrows List. Zero values match everything; To is inclusive.
type Filter struct {
	User   string
	Action Action
	From   *time.Time
	To     *time.Time
	Limit  int
}

type Facets struct {
	Users   []string `json:"users"`
	Actions []string `json:"actions"`
}

func FromDataModel(m *auditDatamodel.AuditLog) Entry {
	return Entry{
		ID:          m.ID,
		User:        m.User,
		Action:      Action(m.Action),
		Module:      Module(m.Module),
		Description: m.Description,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

func ToDataModel(e Entry) *auditDatamodel.AuditLog {
	return &auditDatamodel.AuditLog{
		ID:          e.ID,
		User:        e.User,
		Action:      string(e.Action),
		Module:      string(e.Module),
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}
