package assessment

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ErrorResponse is the body of every failed assessment call.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type Handler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the public intake endpoint. The assessment is free and
// anonymous, so no auth group is involved.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/assessments", h.Assess)
	api.POST("/healthcheckup", h.Assess)
}

func (h *Handler) Assess(c echo.Context) error {
	var raw map[string]interface{}
	if err := c.Bind(&raw); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: true, Message: "invalid request body"})
	}

	report := Sanitize(raw)
	if err := report.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: true, Message: err.Error()})
	}

	result, err := h.svc.Assess(c.Request().Context(), report)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// fail logs the internal error and returns a generic message; store errors
// are never echoed to the client.
func (h *Handler) fail(c echo.Context, err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: true, Message: verr.Message})
	}

	rid, _ := c.Get("request_id").(string)
	evt := h.logger.Error().Err(err).Str("request_id", rid)
	var derr *DataAccessError
	if errors.As(err, &derr) {
		evt = evt.Str("op", derr.Op)
	}
	evt.Msg("assessment failed")

	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   true,
		Message: "The assessment could not be completed. Please try again later.",
	})
}
