package scheduling

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/panacea/panacea/internal/platform/auth"
	"github.com/panacea/panacea/internal/platform/validate"
	"github.com/panacea/panacea/pkg/envelope"
	"github.com/panacea/panacea/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes expects g to be behind auth.Authenticate.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/appointments", h.List)
	g.POST("/appointments", h.Book)
	g.PUT("/appointments/:id", h.Update)
}

func (h *Handler) Book(c echo.Context) error {
	var req BookRequest
	if err := validate.Bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	creator, _ := auth.PrincipalFromContext(ctx)
	a, err := h.svc.Book(ctx, req, creator)
	if err != nil {
		return err
	}
	return envelope.Respond(c, http.StatusCreated, "Appointment booked successfully", a)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	appts, total, err := h.svc.List(c.Request().Context(), Filter{PatientID: c.QueryParam("patientId")}, pg)
	if err != nil {
		return err
	}
	if appts == nil {
		appts = []*Appointment{}
	}
	return envelope.RespondMeta(c, http.StatusOK, "Appointments fetched successfully",
		appts, pagination.NewMeta(pg, len(appts), total))
}

func (h *Handler) Update(c echo.Context) error {
	var req UpdateRequest
	if err := validate.Bind(c, &req); err != nil {
		return err
	}
	a, err := h.svc.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return envelope.Respond(c, http.StatusOK, "Appointment updated successfully", a)
}
