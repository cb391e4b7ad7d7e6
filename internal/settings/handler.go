package settings

import (
	"context"
	"net/http"

	"github.com/AtirathTechnologies/warehouse-hub/internal"
	"github.com/AtirathTechnologies/warehouse-hub/internal/permission"
	"github.com/AtirathTechnologies/warehouse-hub/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Matrix() permission.Matrix
	ReportAvailability() permission.ReportAvailability
	ToggleCapability(ctx context.Context, actor *internal.CurrentUser, role permission.Role, key permission.Capability) (permission.RoleCapabilities, error)
	ToggleReportAvailability(ctx context.Context, actor *internal.CurrentUser, reportType permission.ReportType) (permission.ReportAvailability, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// GetUserRules handles GET /settings/user-rules
func (h *Handler) GetUserRules(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"roles": h.Service.Matrix(),
	})
}

// ToggleUserRule handles POST /settings/user-rules/{role}/{capability}/toggle
func (h *Handler) ToggleUserRule(w http.ResponseWriter, r *http.Request) {
	role, err := permission.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	capability, err := permission.ParseCapability(chi.URLParam(r, "capability"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	actor, _ := internal.UserFromContext(r.Context())
	caps, err := h.Service.ToggleCapability(r.Context(), actor, role, capability)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"role":         role,
		"capabilities": caps,
	})
}

// GetReportSettings handles GET /settings/reports
func (h *Handler) GetReportSettings(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"enabledReports": withDefaults(h.Service.ReportAvailability()),
	})
}

// ToggleReport handles POST /settings/reports/{reportType}/toggle
func (h *Handler) ToggleReport(w http.ResponseWriter, r *http.Request) {
	reportType, err := permission.ParseReportType(chi.URLParam(r, "reportType"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	actor, _ := internal.UserFromContext(r.Context())
	availability, err := h.Service.ToggleReportAvailability(r.Context(), actor, reportType)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"enabledReports": withDefaults(availability),
	})
}

// withDefaults fills in absent report types so clients always see all six flags.
func withDefaults(a permission.ReportAvailability) map[permission.ReportType]bool {
	out := make(map[permission.ReportType]bool, len(permission.ReportTypes))
	for _, t := range permission.ReportTypes {
		out[t] = a.IsEnabled(t)
	}
	return out
}
