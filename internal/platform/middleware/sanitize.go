package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// maxHeaderValueSize is the maximum allowed size for any single header value.
const maxHeaderValueSize = 8192

// Operator keys like {"$gt": ""} in query strings are how NoSQL injection
// reaches a document store.
var operatorKey = regexp.MustCompile(`(^\$|\[\$|\.\$)`)

// Sanitize rejects requests carrying path traversal, null bytes, header
// injection or query-operator keys, and collapses repeated query parameters
// to their last value so handlers never see ?status=a&status=b as a list.
func Sanitize(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path
			rawPath := req.URL.RawPath
			if rawPath == "" {
				rawPath = path
			}

			if containsPathTraversal(path) || containsPathTraversal(rawPath) {
				return badInput("Path traversal detected")
			}
			if containsNullByte(path) || containsNullByte(rawPath) {
				return badInput("Null byte injection detected")
			}

			for name, values := range req.Header {
				for _, v := range values {
					if len(v) > maxHeaderValueSize {
						return badInput("Header value exceeds maximum size: " + name)
					}
					if strings.ContainsAny(v, "\r\n") {
						return badInput("Header injection detected: " + name)
					}
				}
			}

			q := req.URL.Query()
			polluted := false
			for key, values := range q {
				if operatorKey.MatchString(key) {
					logger.Warn().
						Str("param", key).
						Str("path", path).
						Str("remote_ip", c.RealIP()).
						Msg("query operator key rejected")
					return badInput("Invalid query parameter: " + key)
				}
				for _, v := range values {
					if containsNullByte(v) || containsNullByte(key) {
						return badInput("Null byte injection detected in query parameter")
					}
				}
				if len(values) > 1 {
					q[key] = values[len(values)-1:]
					polluted = true
				}
			}
			if polluted {
				req.URL.RawQuery = q.Encode()
			}

			return next(c)
		}
	}
}

// containsPathTraversal checks for path traversal sequences in raw and
// percent-encoded forms.
func containsPathTraversal(s string) bool {
	if strings.Contains(s, "..") {
		return true
	}
	lower := strings.ToLower(s)
	return strings.Contains(lower, "%2e%2e") || strings.Contains(lower, "%252e")
}

// containsNullByte checks for null bytes in raw and percent-encoded forms.
func containsNullByte(s string) bool {
	if strings.ContainsRune(s, '\x00') {
		return true
	}
	return strings.Contains(strings.ToLower(s), "%00")
}

func badInput(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}
