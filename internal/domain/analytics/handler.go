package analytics

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/panacea/panacea/pkg/envelope"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes expects g to be behind auth.Authenticate.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/analytics/stats", h.Stats)
}

func (h *Handler) Stats(c echo.Context) error {
	st, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return envelope.Respond(c, http.StatusOK, "Stats fetched successfully", st)
}

// InvalidateOnWrite drops cached stats after every successful write, since
// registrations, bookings, records and ward moves all feed the counts.
func InvalidateOnWrite(svc *Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return err
			}
			if err == nil && c.Response().Status < http.StatusBadRequest {
				svc.Invalidate(c.Request().Context())
			}
			return err
		}
	}
}
