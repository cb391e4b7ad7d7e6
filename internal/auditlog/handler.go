package auditlog

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/AtirathTechnologies/warehouse-hub/internal"
	"github.com/AtirathTechnologies/warehouse-hub/internal/transport"
)

const dateLayout = "2006-01-02"

type ServiceAPI interface {
	List(ctx context.Context, filter Filter) ([]Entry, error)
	Facets(ctx context.Context) (Facets, error)
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

// ListAuditLogs handles GET /audit-logs?user=&action=&from=&to=&limit=
func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	entries, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"logs":  entries,
		"count": len(entries),
	})
}

// GetFacets handles GET /audit-logs/facets
func (h *Handler) GetFacets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.Service.Facets(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, facets)
}

func parseFilter(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	filter := Filter{
		User:   q.Get("user"),
		Action: Action(q.Get("action")),
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &filter.From}, {"to", &filter.To}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			return Filter{}, internal.NewValidationFieldError(p.name, p.name+" must be a date in YYYY-MM-DD format", internal.ErrCodeInvalidDate)
		}
		*p.dst = &t
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return Filter{}, internal.NewValidationFieldError("limit", "limit must be a positive integer", internal.ErrCodeValidationFailed)
		}
		filter.Limit = limit
	}
	return filter, nil
}
