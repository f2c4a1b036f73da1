package identity

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

// RegisterRoutes mounts /auth on api. authn guards /auth/me.
func (h *Handler) RegisterRoutes(api *echo.Group, authn echo.MiddlewareFunc) {
	g := api.Group("/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.GET("/me", h.Me, authn)
}

func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := validate.Bind(c, &req); err != nil {
		return err
	}
	res, err := h.svc.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return envelope.Respond(c, http.StatusCreated, "Registration successful", res)
}

func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := validate.Bind(c, &req); err != nil {
		return err
	}
	res, err := h.svc.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return envelope.Respond(c, http.StatusOK, "Login successful", res)
}

func (h *Handler) Me(c echo.Context) error {
	u, err := h.svc.Get(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return err
	}
	return envelope.Respond(c, http.StatusOK, "User profile fetched", u)
}
