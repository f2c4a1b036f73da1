package clinical

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

// RegisterRoutes expects g to be behind auth.Authenticate. Any signed-in
// role may read and write records.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/records", h.Create)
	g.GET("/records/all", h.Recent)
	g.GET("/records/:patientId", h.ListByPatient)
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := validate.Bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	doctor, _ := auth.PrincipalFromContext(ctx)
	r, err := h.svc.Create(ctx, req, doctor)
	if err != nil {
		return err
	}
	return envelope.Respond(c, http.StatusCreated, "Medical record created successfully", r)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	pg := pagination.FromContext(c)
	recs, total, err := h.svc.ListByPatient(c.Request().Context(), c.Param("patientId"), pg)
	if err != nil {
		return err
	}
	if recs == nil {
		recs = []*Record{}
	}
	return envelope.RespondMeta(c, http.StatusOK, "Medical records fetched successfully",
		recs, pagination.NewMeta(pg, len(recs), total))
}

func (h *Handler) Recent(c echo.Context) error {
	recs, err := h.svc.Recent(c.Request().Context())
	if err != nil {
		return err
	}
	if recs == nil {
		recs = []*Record{}
	}
	return envelope.RespondMeta(c, http.StatusOK, "Recent medical records fetched successfully",
		recs, map[string]int{"count": len(recs)})
}
