package report

import (
	"encoding/json"
	"time"

	reportDatamodel "github.com/AtirathTechnologies/warehouse-hub/internal/core/datamodel/report"
	"github.com/AtirathTechnologies/warehouse-hub/internal/permission"
)

// Card is one entry of the report catalog.
type Card struct {
	Type        permission.ReportType `json:"type"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	CanGenerate bool                  `json:"canGenerate"`
}

var catalog = []Card{
	{Type: permission.ReportStock, Title: "Stock Report", Description: "Current inventory status"},
	{Type: permission.ReportInwardOutward, Title: "Inward/Outward Report", Description: "Stock movement analysis"},
	{Type: permission.ReportExpiry, Title: "Expiry Report", Description: "Product expiry tracking"},
	{Type: permission.ReportValuation, Title: "Stock Valuation", Description: "Financial inventory value"},
	{Type: permission.ReportAudit, Title: "Audit Log", Description: "System activity tracking"},
	{Type: permission.ReportLowStock, Title: "Low Stock Report", Description: "Inventory alerts"},
}

func titleOf(t permission.ReportType) string {
	for _, c := range catalog {
		if c.Type == t {
			return c.Title
		}
	}
	return string(t)
}

// Report is a generated report record. GeneratedBy is the role of the
// requester, as shown on the reports list.
type Report struct {
	ID          int64                 `json:"id"`
	Type        permission.ReportType `json:"type"`
	Title       string                `json:"title"`
	Params      map[string]string     `json:"params"`
	GeneratedAt time.Time             `json:"generatedAt"`
	GeneratedBy string                `json:"generatedBy"`
}

func FromDataModel(m *reportDatamodel.GeneratedReport) *Report {
	params := map[string]string{}
	if m.Params != "" {
		_ = json.Unmarshal([]byte(m.Params), &params)
	}
	return &Report{
		ID:          m.ID,
		Type:        permission.ReportType(m.Type),
		Title:       m.Title,
		Params:      params,
		GeneratedAt: m.GeneratedAt.UTC(),
		GeneratedBy: m.GeneratedBy,
	}
}
