package report

import (
	"context"
	"net/http"
	"strconv"

	"github.com/AtirathTechnologies/warehouse-hub/internal"
	"github.com/AtirathTechnologies/warehouse-hub/internal/permission"
	"github.com/AtirathTechnologies/warehouse-hub/internal/transport"
)

type ServiceAPI interface {
	Catalog(role permission.Role) ([]Card, error)
	Generate(ctx context.Context, actor *internal.CurrentUser, role permission.Role, dto GenerateReportDTO) (*Report, error)
	List(ctx context.Context, role permission.Role, limit int) ([]*Report, error)
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

func (h *Handler) caller(r *http.Request) (*internal.CurrentUser, permission.Role, error) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		return nil, "", internal.ErrInvalidToken
	}
	role, err := permission.ParseRole(user.Role)
	if err != nil {
		return nil, "", internal.ErrReportsAccessDenied
	}
	return user, role, nil
}

// GetCatalog handles GET /reports/catalog
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	_, role, err := h.caller(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	cards, err := h.Service.Catalog(role)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"reports": cards})
}

// ListReports handles GET /reports
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	_, role, err := h.caller(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if l, err := strconv.Atoi(raw); err == nil && l > 0 {
			limit = l
		}
	}

	reports, err := h.Service.List(r.Context(), role, limit)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"reports": reports})
}

// GenerateReport handles POST /reports
func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	user, role, err := h.caller(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto GenerateReportDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	rep, err := h.Service.Generate(r.Context(), user, role, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, rep)
}
