package patient

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
	g.GET("/patients", h.List)
	g.POST("/patients", h.Create)
	g.GET("/patients/:id", h.Get)
	g.PUT("/patients/:id", h.Update)
	g.DELETE("/patients/:id", h.Archive, auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor))
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := validate.Bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	registrar, _ := auth.PrincipalFromContext(ctx)
	p, err := h.svc.Create(ctx, req, registrar)
	if err != nil {
		return err
	}
	return envelope.Respond(c, http.StatusCreated, "Patient registered successfully", p)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	patients, total, err := h.svc.List(c.Request().Context(), pg)
	if err != nil {
		return err
	}
	if patients == nil {
		patients = []*Patient{}
	}
	return envelope.RespondMeta(c, http.StatusOK, "Patients fetched successfully",
		patients, pagination.NewMeta(pg, len(patients), total))
}

func (h *Handler) Get(c echo.Context) error {
	p, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return envelope.Respond(c, http.StatusOK, "Patient fetched successfully", p)
}

func (h *Handler) Update(c echo.Context) error {
	var req UpdateRequest
	if err := validate.Bind(c, &req); err != nil {
		return err
	}
	p, err := h.svc.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return envelope.Respond(c, http.StatusOK, "Patient updated successfully", p)
}

func (h *Handler) Archive(c echo.Context) error {
	if err := h.svc.Archive(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return envelope.Respond(c, http.StatusOK, "Patient archived successfully", nil)
}
