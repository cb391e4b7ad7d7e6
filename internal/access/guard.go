package access

import (
	"log/slog"
	"net/http"

	"github.com/AtirathTechnologies/warehouse-hub/internal"
	"github.com/AtirathTechnologies/warehouse-hub/internal/permission"
	"github.com/AtirathTechnologies/warehouse-hub/internal/transport"
)

// Authorizer answers access questions for a role from the current snapshot.
type Authorizer interface {
	ReportsMode(role permission.Role) permission.ReportsMode
	HasCapability(role permission.Role, key permission.Capability) bool
	IsReportTypeEnabled(t permission.ReportType) bool
}

// Guard wraps routes with role-derived access checks. A user whose role
// cannot be parsed is treated as having no access at all.
type Guard struct {
	*transport.BaseHandler
	authorizer Authorizer
}

func NewGuard(authorizer Authorizer, logger *slog.Logger) *Guard {
	return &Guard{
		BaseHandler: transport.NewBaseHandler(logger),
		authorizer:  authorizer,
	}
}

type check func(role permission.Role) error

func (g *Guard) require(name string, allowed check) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := internal.UserFromContext(r.Context())
			if !ok {
				g.Logger.Warn("authorization check failed: user not found in context", "check", name)
				g.HandleServiceError(w, internal.ErrInvalidToken)
				return
			}

			role, err := permission.ParseRole(user.Role)
			if err != nil {
				g.Logger.WarnContext(r.Context(), "access denied: unknown role", "user_id", user.ID, "role", user.Role, "check", name)
				g.HandleServiceError(w, internal.ErrInsufficientAccess)
				return
			}

			if err := allowed(role); err != nil {
				g.Logger.WarnContext(r.Context(), "access denied", "user_id", user.ID, "role", role, "check", name)
				g.HandleServiceError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdminSection guards Audit Logs, Users and Settings.
func (g *Guard) RequireAdminSection() func(http.Handler) http.Handler {
	return g.require("admin_section", func(role permission.Role) error {
		if !permission.CanAccessAdminSection(role) {
			return internal.ErrInsufficientAccess
		}
		return nil
	})
}

func (g *Guard) RequireAuditLogs() func(http.Handler) http.Handler {
	return g.require("audit_logs", func(role permission.Role) error {
		if !permission.CanViewAuditLogs(role) {
			return internal.ErrInsufficientAccess
		}
		return nil
	})
}

// RequireReportsAccess admits ViewOnly and Full.
func (g *Guard) RequireReportsAccess() func(http.Handler) http.Handler {
	return g.require("reports_access", func(role permission.Role) error {
		if g.authorizer.ReportsMode(role) == permission.ReportsDenied {
			return internal.ErrReportsAccessDenied
		}
		return nil
	})
}

func (g *Guard) RequireReportGeneration() func(http.Handler) http.Handler {
	return g.require("report_generation", func(role permission.Role) error {
		if g.authorizer.ReportsMode(role) != permission.ReportsFull {
			return internal.ErrReportsAccessDenied
		}
		return nil
	})
}

func (g *Guard) RequireCapability(key permission.Capability) func(http.Handler) http.Handler {
	return g.require(string(key), func(role permission.Role) error {
		if !g.authorizer.HasCapability(role, key) {
			return internal.ErrInsufficientAccess
		}
		return nil
	})
}

// RequireReportType refuses every role while the report type is disabled in settings.
func (g *Guard) RequireReportType(t permission.ReportType) func(http.Handler) http.Handler {
	return g.require("report_type_"+string(t), func(permission.Role) error {
		if !g.authorizer.IsReportTypeEnabled(t) {
			return internal.ErrReportDisabled.WithDetails(map[string]string{"reportType": string(t)})
		}
		return nil
	})
}
