package permission

import (
	"encoding/json"
	"time"

	"github.com/AtirathTechnologies/warehouse-hub/internal"
)

// updatedAt is informational; any shape is accepted on read.
type userRulesDocument struct {
	Roles     map[string]map[string]any `json:"roles"`
	UpdatedAt any                       `json:"updatedAt,omitempty"`
}

type reportsDocument struct {
	EnabledReports map[string]any `json:"enabledReports"`
	UpdatedAt      any            `json:"updatedAt,omitempty"`
}

// EncodeMatrix renders m as the userRules document body.
func EncodeMatrix(m Matrix, updatedAt time.Time) (json.RawMessage, error) {
	doc := userRulesDocument{
		Roles:     make(map[string]map[string]any, len(m)),
		UpdatedAt: updatedAt.UTC(),
	}
	for role, caps := range m {
		doc.Roles[string(role)] = map[string]any{
			string(AllowUserCreation):     caps.AllowUserCreation,
			string(AllowUserDeletion):     caps.AllowUserDeletion,
			string(AllowReportGeneration): caps.AllowReportGeneration,
			string(AllowReportViewing):    caps.AllowReportViewing,
		}
	}
	return json.Marshal(doc)
}

// DecodeMatrix reads a userRules document body. Unknown roles are dropped and
// any capability that is missing or not a boolean reads as false. Only a body
// that is not JSON at all is reported, as ErrSnapshotMalformed.
func DecodeMatrix(body []byte) (Matrix, error) {
	var doc userRulesDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, internal.ErrSnapshotMalformed.WithCause(err)
	}

	m := make(Matrix, len(doc.Roles))
	for name, raw := range doc.Roles {
		role := Role(name)
		if !role.Valid() {
			continue
		}
		var caps RoleCapabilities
		for _, key := range Capabilities {
			if v, ok := raw[string(key)].(bool); ok {
				caps.set(key, v)
			}
		}
		m[role] = caps
	}
	return m, nil
}

func EncodeReportAvailability(a ReportAvailability, updatedAt time.Time) (json.RawMessage, error) {
	doc := reportsDocument{
		EnabledReports: make(map[string]any, len(a)),
		UpdatedAt:      updatedAt.UTC(),
	}
	for t, enabled := range a {
		doc.EnabledReports[string(t)] = enabled
	}
	return json.Marshal(doc)
}

// DecodeReportAvailability reads a reports document body. Non-boolean flags are
// skipped so that they read as enabled.
func DecodeReportAvailability(body []byte) (ReportAvailability, error) {
	var doc reportsDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, internal.ErrSnapshotMalformed.WithCause(err)
	}

	a := make(ReportAvailability, len(doc.EnabledReports))
	for name, raw := range doc.EnabledReports {
		if v, ok := raw.(bool); ok {
			a[ReportType(name)] = v
		}
	}
	return a, nil
}
