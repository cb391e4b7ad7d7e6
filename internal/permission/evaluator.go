package permission

// ReportsMode is what a role can do inside the Reports module.
type ReportsMode string

const (
	ReportsFull     ReportsMode = "full"
	ReportsViewOnly ReportsMode = "viewOnly"
	ReportsDenied   ReportsMode = "denied"
)

// CanSeeReportsNavItem decides whether Reports shows up in navigation.
// Staff only see it when they can generate; everyone else when they can generate or view.
func CanSeeReportsNavItem(role Role, m Matrix) bool {
	caps := m.For(role)
	if role == RoleStaff {
		return caps.AllowReportGeneration
	}
	return caps.AllowReportGeneration || caps.AllowReportViewing
}

// ReportsAccessMode gives generation precedence over viewing.
func ReportsAccessMode(role Role, m Matrix) ReportsMode {
	caps := m.For(role)
	switch {
	case caps.AllowReportGeneration:
		return ReportsFull
	case caps.AllowReportViewing:
		return ReportsViewOnly
	default:
		return ReportsDenied
	}
}

func IsReportTypeEnabled(t ReportType, a ReportAvailability) bool {
	return a.IsEnabled(t)
}

// CanViewAuditLogs does not look at report flags.
func CanViewAuditLogs(role Role) bool {
	return role.isPrivileged()
}

// CanAccessAdminSection gates Audit Logs, Users and Settings.
func CanAccessAdminSection(role Role) bool {
	return role.isPrivileged()
}

// CanGenerateReport is the per-card check: Full mode and the report type enabled.
func CanGenerateReport(role Role, m Matrix, a ReportAvailability, t ReportType) bool {
	return ReportsAccessMode(role, m) == ReportsFull && a.IsEnabled(t)
}

// DerivedAccess is recomputed from snapshots on every read and never stored.
type DerivedAccess struct {
	Role                  Role        `json:"role"`
	CanSeeReportsNav      bool        `json:"canSeeReportsNav"`
	ReportsMode           ReportsMode `json:"reportsMode"`
	CanGenerate           bool        `json:"canGenerate"`
	CanView               bool        `json:"canView"`
	CanViewAuditLogs      bool        `json:"canViewAuditLogs"`
	CanAccessAdminSection bool        `json:"canAccessAdminSection"`
}

func Derive(role Role, m Matrix) DerivedAccess {
	mode := ReportsAccessMode(role, m)
	return DerivedAccess{
		Role:                  role,
		CanSeeReportsNav:      CanSeeReportsNavItem(role, m),
		ReportsMode:           mode,
		CanGenerate:           mode == ReportsFull,
		CanView:               mode != ReportsDenied,
		CanViewAuditLogs:      CanViewAuditLogs(role),
		CanAccessAdminSection: CanAccessAdminSection(role),
	}
}
