package ward

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/panacea/panacea/internal/platform/auth"
	"github.com/panacea/panacea/internal/platform/validate"
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
	clinicalStaff := auth.RequireRole(auth.RoleDoctor, auth.RoleNurse, auth.RoleAdmin)

	g.GET("/wards", h.List)
	g.POST("/wards/seed", h.Seed, auth.RequireRole(auth.RoleAdmin))
	g.PUT("/wards/:id/admit", h.Admit, clinicalStaff)
	g.PUT("/wards/:id/discharge", h.Discharge, clinicalStaff)
}

func (h *Handler) List(c echo.Context) error {
	wards, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	if wards == nil {
		wards = []*Ward{}
	}
	return envelope.Respond(c, http.StatusOK, "Wards fetched successfully", wards)
}

func (h *Handler) Seed(c echo.Context) error {
	wards, err := h.svc.Seed(c.Request().Context())
	if err != nil {
		return err
	}
	return envelope.Respond(c, http.StatusCreated, "Hospital Wards Constructed", wards)
}

func (h *Handler) Admit(c echo.Context) error {
	var req AdmitRequest
	if err := validate.Bind(c, &req); err != nil {
		return err
	}
	w, err := h.svc.Admit(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return envelope.Respond(c, http.StatusOK, "Patient admitted successfully", w)
}

func (h *Handler) Discharge(c echo.Context) error {
	var req DischargeRequest
	if err := validate.Bind(c, &req); err != nil {
		return err
	}
	w, err := h.svc.Discharge(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return envelope.Respond(c, http.StatusOK, "Patient discharged successfully", w)
}
