// Package envelope renders the uniform JSON wrapper used by every response.
package envelope

import (
	"time"

	"github.com/labstack/echo/v4"
)

// Envelope is the body of every API response, success or failure.
type Envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
	Meta      any    `json:"meta"`
	Timestamp string `json:"timestamp"`
}

// now is replaced in tests.
var now = time.Now

func New(status int, message string, data, meta any) Envelope {
	return Envelope{
		Success:   status >= 200 && status < 300,
		Message:   message,
		Data:      data,
		Meta:      meta,
		Timestamp: now().UTC().Format(time.RFC3339Nano),
	}
}

// Respond writes an envelope with the given status.
func Respond(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, New(status, message, data, nil))
}

// RespondMeta writes an envelope carrying list or diagnostic metadata.
func RespondMeta(c echo.Context, status int, message string, data, meta any) error {
	return c.JSON(status, New(status, message, data, meta))
}
