package access

import (
	"net/http"

	"github.com/AtirathTechnologies/warehouse-hub/internal"
	"github.com/AtirathTechnologies/warehouse-hub/internal/permission"
	"github.com/AtirathTechnologies/warehouse-hub/internal/transport"
)

type ServiceAPI interface {
	Derive(role permission.Role) permission.DerivedAccess
	Navigation(role permission.Role) []permission.NavItem
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

type accessResponse struct {
	permission.DerivedAccess
	Navigation []permission.NavItem `json:"navigation"`
}

// GetMyAccess handles GET /me/access. An unrecognised role gets the derived
// view of a role with no capabilities.
func (h *Handler) GetMyAccess(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return
	}

	role, err := permission.ParseRole(user.Role)
	if err != nil {
		h.Logger.Warn("user has unknown role", "user_id", user.ID, "role", user.Role)
		role = permission.Role(user.Role)
	}

	h.WriteJSON(w, http.StatusOK, accessResponse{
		DerivedAccess: h.Service.Derive(role),
		Navigation:    h.Service.Navigation(role),
	})
}
