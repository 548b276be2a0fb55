package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// errorJSON writes the API's error envelope.
func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]interface{}{
		"error":   true,
		"message": message,
	})
}

// ErrorHandler renders errors that reach echo in the same envelope the
// handlers use. Errors other than *echo.HTTPError become a bare 500.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := http.StatusText(status)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			message = http.StatusText(status)
			if status < http.StatusInternalServerError {
				message = fmt.Sprint(he.Message)
			} else if s, ok := he.Message.(string); ok && he.Internal == nil {
				message = s
			}
		}
		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).Interface("request_id", c.Get("request_id")).Msg("unhandled error")
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = errorJSON(c, status, message)
		}
		if werr != nil {
			logger.Error().Err(werr).Msg("write error response")
		}
	}
}
