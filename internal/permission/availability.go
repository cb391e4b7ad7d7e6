package permission

import (
	"github.com/AtirathTechnologies/warehouse-hub/internal"
)

// ReportType identifies a report card in the catalog.
type ReportType string

const (
	ReportStock         ReportType = "stock"
	ReportInwardOutward ReportType = "inwardOutward"
	ReportExpiry        ReportType = "expiry"
	ReportLowStock      ReportType = "lowStock"
	ReportValuation     ReportType = "valuation"
	ReportAudit         ReportType = "audit"
)

var ReportTypes = []ReportType{
	ReportStock,
	ReportInwardOutward,
	ReportExpiry,
	ReportLowStock,
	ReportValuation,
	ReportAudit,
}

func (t ReportType) Valid() bool {
	for _, known := range ReportTypes {
		if t == known {
			return true
		}
	}
	return false
}

func ParseReportType(s string) (ReportType, error) {
	t := ReportType(s)
	if !t.Valid() {
		return "", internal.ErrUnknownReportType.WithDetails(map[string]string{"reportType": s})
	}
	return t, nil
}

// ReportAvailability maps report types to an enabled flag. Absent keys read as enabled.
type ReportAvailability map[ReportType]bool

func DefaultReportAvailability() ReportAvailability {
	a := make(ReportAvailability, len(ReportTypes))
	for _, t := range ReportTypes {
		a[t] = true
	}
	return a
}

func (a ReportAvailability) IsEnabled(t ReportType) bool {
	enabled, ok := a[t]
	if !ok {
		return true
	}
	return enabled
}

func (a ReportAvailability) Clone() ReportAvailability {
	out := make(ReportAvailability, len(a))
	for t, v := range a {
		out[t] = v
	}
	return out
}

// ToggleReportAvailability returns a copy of a with t flipped. An absent key
// is enabled, so its first toggle disables it.
func ToggleReportAvailability(a ReportAvailability, t ReportType) (ReportAvailability, error) {
	if !t.Valid() {
		return a, internal.ErrUnknownReportType
	}
	next := a.Clone()
	next[t] = !a.IsEnabled(t)
	return next, nil
}
