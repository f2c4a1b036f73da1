package main

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/panacea/panacea/internal/config"
	"github.com/panacea/panacea/internal/domain/analytics"
	"github.com/panacea/panacea/internal/domain/clinical"
	"github.com/panacea/panacea/internal/domain/identity"
	"github.com/panacea/panacea/internal/domain/patient"
	"github.com/panacea/panacea/internal/domain/scheduling"
	"github.com/panacea/panacea/internal/domain/ward"
	"github.com/panacea/panacea/internal/platform/audit"
	"github.com/panacea/panacea/internal/platform/auth"
	"github.com/panacea/panacea/internal/platform/cache"
	"github.com/panacea/panacea/internal/platform/middleware"
	"github.com/panacea/panacea/internal/platform/validate"
	"github.com/panacea/panacea/pkg/envelope"
)

type server struct {
	echo    *echo.Echo
	audit   *audit.Dispatcher
	limiter *middleware.RateLimiter
}

type healthStatus struct {
	Uptime    float64   `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
	Env       string    `json:"env"`
}

func buildServer(cfg *config.Config, logger zerolog.Logger, st *stores, statsCache cache.Cache) *server {
	startedAt := time.Now()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validate.New()
	e.HTTPErrorHandler = middleware.ErrorHandler(logger, !cfg.IsProduction())

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(middleware.Sanitize(logger))
	e.Use(audit.CaptureIP())

	rl := middleware.DefaultRateLimitConfig()
	if cfg.RateLimitRPS > 0 {
		rl.RequestsPerSecond = cfg.RateLimitRPS
	}
	if cfg.RateLimitBurst > 0 {
		rl.BurstSize = cfg.RateLimitBurst
	}
	limiter := middleware.NewRateLimiter(rl)

	dispatcher := audit.NewDispatcher(st.audit, logger, cfg.AuditBuffer)

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL())
	identitySvc := identity.NewService(st.users, tokens)
	patientSvc := patient.NewService(st.patients, identitySvc, dispatcher)
	schedulingSvc := scheduling.NewService(st.appointments, patientSvc, identitySvc)
	clinicalSvc := clinical.NewService(st.records, patientSvc, identitySvc, schedulingSvc, logger)
	wardSvc := ward.NewService(st.wards, patientSvc, dispatcher)
	analyticsSvc := analytics.NewService(patientSvc, identitySvc, schedulingSvc, wardSvc,
		statsCache, cfg.StatsCacheTTL, logger)

	api := e.Group("/api", limiter.Middleware(), analytics.InvalidateOnWrite(analyticsSvc))

	api.GET("/health", func(c echo.Context) error {
		return envelope.Respond(c, http.StatusOK, "Panacea System Operational", healthStatus{
			Uptime:    time.Since(startedAt).Seconds(),
			Timestamp: time.Now().UTC(),
			Env:       cfg.Env,
		})
	})
	api.GET("/health/store", st.ping)

	authn := auth.Authenticate(tokens, identitySvc)
	identity.NewHandler(identitySvc).RegisterRoutes(api, authn)

	protected := api.Group("", authn)
	patient.NewHandler(patientSvc).RegisterRoutes(protected)
	scheduling.NewHandler(schedulingSvc).RegisterRoutes(protected)
	clinical.NewHandler(clinicalSvc).RegisterRoutes(protected)
	ward.NewHandler(wardSvc).RegisterRoutes(protected)
	analytics.NewHandler(analyticsSvc).RegisterRoutes(protected)
	audit.NewHandler(st.audit).RegisterRoutes(protected)

	return &server{echo: e, audit: dispatcher, limiter: limiter}
}
