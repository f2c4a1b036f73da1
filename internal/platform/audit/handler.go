package audit

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/panacea/panacea/internal/platform/auth"
	"github.com/panacea/panacea/pkg/envelope"
	"github.com/panacea/panacea/pkg/pagination"
)

const defaultListLimit = 100

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes expects g to be behind auth.Authenticate.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/audit-logs", h.List, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	if pg.Unbounded() {
		pg.Limit = defaultListLimit
	}
	entries, total, err := h.store.List(c.Request().Context(), pg)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []*Entry{}
	}
	return envelope.RespondMeta(c, http.StatusOK, "Audit logs fetched successfully",
		entries, pagination.NewMeta(pg, len(entries), total))
}
