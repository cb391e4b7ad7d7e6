package stock

import (
	"context"
	"net/http"
	"strconv"

	"github.com/AtirathTechnologies/warehouse-hub/internal"
	"github.com/AtirathTechnologies/warehouse-hub/internal/transport"
)

type ServiceAPI interface {
	StockIn(ctx context.Context, actor *internal.CurrentUser, dto MovementDTO) (*MovementResult, error)
	StockOut(ctx context.Context, actor *internal.CurrentUser, dto MovementDTO) (*MovementResult, error)
	ListMovements(ctx context.Context, direction string, limit int) ([]*Movement, error)
	Levels(ctx context.Context, warehouse string) ([]Level, error)
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

// StockIn handles POST /stock/in
func (h *Handler) StockIn(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, h.Service.StockIn)
}

// StockOut handles POST /stock/out
func (h *Handler) StockOut(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, h.Service.StockOut)
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request, apply func(context.Context, *internal.CurrentUser, MovementDTO) (*MovementResult, error)) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return
	}

	var dto MovementDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := apply(r.Context(), user, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, result)
}

// ListMovements handles GET /stock/movements?direction=&limit=
func (h *Handler) ListMovements(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if l, err := strconv.Atoi(raw); err == nil && l > 0 {
			limit = l
		}
	}

	movements, err := h.Service.ListMovements(r.Context(), r.URL.Query().Get("direction"), limit)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"movements": movements})
}

// ListLevels handles GET /stock/levels?warehouse=
func (h *Handler) ListLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.Service.Levels(r.Context(), r.URL.Query().Get("warehouse"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"levels": levels})
}
