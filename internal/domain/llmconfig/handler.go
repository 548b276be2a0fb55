package llmconfig

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/healthcheckup/assessment/internal/platform/auth"
)

type SaveResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Config  Settings `json:"config"`
}

type Handler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the admin configuration endpoints. The group must
// already carry an authentication middleware.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RoleAdmin))
	g.GET("/llm-config", h.Get)
	g.PUT("/llm-config", h.Save)
}

func (h *Handler) Get(c echo.Context) error {
	s, err := h.svc.Get(c.Request().Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("load llm configuration")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load configuration")
	}
	return c.JSON(http.StatusOK, s.Masked())
}

func (h *Handler) Save(c echo.Context) error {
	var in Settings
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	if err := h.svc.Save(ctx, in); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return echo.NewHTTPError(http.StatusBadRequest, verr.Message)
		}
		h.logger.Error().Err(err).Str("user_id", auth.UserIDFromContext(ctx)).Msg("save llm configuration")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save configuration")
	}

	s, err := h.svc.Get(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("reload llm configuration")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load configuration")
	}
	return c.JSON(http.StatusOK, SaveResponse{
		Success: true,
		Message: "Configuration saved successfully",
		Config:  s.Masked(),
	})
}
