package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/panacea/panacea/internal/platform/apperr"
	"github.com/panacea/panacea/pkg/envelope"
)

// ErrorHandler renders every failure as an envelope with success=false.
// With exposeStack set (any non-production environment) every failure, 4xx
// included, carries the error chain and a stack trace in meta.stack.
func ErrorHandler(logger zerolog.Logger, exposeStack bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, message, meta := translate(err, c)

		if status >= http.StatusInternalServerError {
			rid, _ := c.Get("request_id").(string)
			logger.Error().Err(err).
				Str("request_id", rid).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", status).
				Msg("request failed")
		}

		if exposeStack {
			if meta == nil {
				meta = map[string]any{}
			}
			meta["stack"] = stackOf(err)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		if werr := c.JSON(status, envelope.New(status, message, nil, nilIfEmpty(meta))); werr != nil {
			logger.Error().Err(werr).Msg("write error response")
		}
	}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// stackOf formats err with its recorded stack, or with the stack at this
// point when nothing in the chain recorded one.
func stackOf(err error) string {
	var st stackTracer
	if !errors.As(err, &st) {
		err = errors.WithStack(err)
	}
	return fmt.Sprintf("%+v", err)
}

func nilIfEmpty(m map[string]any) any {
	if len(m) == 0 {
		return nil
	}
	return m
}

// translate maps an error to status, message and optional meta.
func translate(err error, c echo.Context) (int, string, map[string]any) {
	if ae, ok := apperr.As(err); ok {
		var meta map[string]any
		if len(ae.Fields) > 0 {
			meta = map[string]any{"errors": ae.Fields}
		}
		return ae.Status(), ae.Message, meta
	}

	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, "Resource not found", nil
	case errors.Is(err, apperr.ErrDuplicate):
		return http.StatusConflict, "Duplicate field value entered", nil
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "Request processing exceeded the allowed time limit", nil
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code == http.StatusNotFound && errors.Is(err, echo.ErrNotFound) {
			return http.StatusNotFound, fmt.Sprintf("Can't find %s on this server", c.Request().URL.RequestURI()), nil
		}
		if he.Code == http.StatusMethodNotAllowed {
			return he.Code, fmt.Sprintf("Can't find %s %s on this server", c.Request().Method, c.Request().URL.RequestURI()), nil
		}
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		return he.Code, msg, nil
	}

	return http.StatusInternalServerError, "Internal Server Error", nil
}
