package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/healthcheckup/assessment/internal/config"
	"github.com/healthcheckup/assessment/internal/domain/assessment"
	"github.com/healthcheckup/assessment/internal/domain/llmconfig"
	"github.com/healthcheckup/assessment/internal/platform/auth"
	"github.com/healthcheckup/assessment/internal/platform/db"
	"github.com/healthcheckup/assessment/internal/platform/middleware"
	"github.com/healthcheckup/assessment/internal/platform/telemetry"
)

// dependencies are the stores the HTTP server is built on. pool and llm are
// nil when no database is configured.
type dependencies struct {
	reference assessment.ReferenceRepository
	pool      *pgxpool.Pool
	llm       llmconfig.Repository
}

// openDependencies connects to PostgreSQL when DATABASE_URL is set and loads
// the reference tables from REFERENCE_FILE when that is set. The file takes
// precedence for reference data.
func openDependencies(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (dependencies, func(), error) {
	var deps dependencies
	cleanup := func() {}

	if cfg.HasDatabase() {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return deps, cleanup, fmt.Errorf("connect to database: %w", err)
		}
		logger.Info().Msg("connected to database")
		deps.pool = pool
		deps.reference = assessment.NewReferenceRepoPG(pool)
		deps.llm = llmconfig.NewRepoPG(pool)
		cleanup = pool.Close
	}

	if cfg.ReferenceFile != "" {
		repo, err := assessment.LoadReferenceFile(cfg.ReferenceFile)
		if err != nil {
			cleanup()
			return deps, func() {}, err
		}
		logger.Info().Str("file", cfg.ReferenceFile).Msg("loaded reference data")
		deps.reference = repo
	}

	return deps, cleanup, nil
}

// newServer wires middleware and routes. It performs no I/O.
func newServer(cfg *config.Config, logger zerolog.Logger, deps dependencies) (*echo.Echo, error) {
	if deps.reference == nil {
		return nil, fmt.Errorf("no reference data source configured")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	var metrics *telemetry.Metrics
	if cfg.MetricsEnabled {
		metrics = telemetry.New()
		e.Use(metrics.Middleware())
		e.GET(telemetry.MetricsPath, metrics.Handler())
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	if deps.pool != nil {
		e.GET("/health/db", db.HealthHandler(deps.pool))
	}

	apiV1 := e.Group("/api/v1")
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 || rateLimitCfg.BurstSize <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	assessSvc := assessment.NewService(deps.reference, logger)
	if metrics != nil {
		assessSvc.SetRecorder(metrics)
	}
	assessment.NewHandler(assessSvc, logger).RegisterRoutes(apiV1)

	if deps.llm != nil {
		authMW, err := adminAuth(cfg)
		if err != nil {
			return nil, err
		}
		if authMW == nil {
			logger.Warn().Msg("AUTH_SIGNING_KEY not set; llm configuration routes disabled")
		} else {
			admin := apiV1.Group("", authMW)
			llmSvc := llmconfig.NewService(deps.llm, logger)
			llmconfig.NewHandler(llmSvc, logger).RegisterRoutes(admin)
		}
	}

	return e, nil
}

// adminAuth picks the authentication middleware for the admin routes. It
// returns nil when none can be configured.
func adminAuth(cfg *config.Config) (echo.MiddlewareFunc, error) {
	key, err := cfg.SigningKey()
	if err != nil {
		return nil, err
	}
	if key != nil {
		return auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			SigningKey: key,
		}), nil
	}
	if cfg.IsDev() {
		return auth.DevAuthMiddleware(), nil
	}
	return nil, nil
}
