package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/lmsgate/internal/api"
	"github.com/phrazzld/lmsgate/internal/api/middleware"
	"github.com/phrazzld/lmsgate/internal/api/router"
	"github.com/phrazzld/lmsgate/internal/config"
	"github.com/phrazzld/lmsgate/internal/docs"
	"github.com/phrazzld/lmsgate/internal/metrics"
	"github.com/phrazzld/lmsgate/internal/platform/postgres"
	"github.com/phrazzld/lmsgate/internal/service/auth"
	"github.com/phrazzld/lmsgate/internal/store"
)

// application holds the shared dependencies of the server.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	docs    *docs.Registry

	tokens      auth.TokenValidator
	permissions store.PermissionStore
	clients     store.APIClientStore
	users       store.UserDirectory
	calendars   store.CalendarStore
	objects     store.ObjectStore
}

// newApplication wires the postgres-backed stores and the token validator.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token validator: %w", err)
	}

	registry, err := docs.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load route documentation: %w", err)
	}

	app := &application{
		config:  cfg,
		logger:  logger,
		metrics: metrics.New("lmsgate"),
		docs:    registry,
		tokens:  jwtService,

		permissions: postgres.NewPostgresPermissionStore(db, logger),
		clients:     postgres.NewPostgresAPIClientStore(db, logger),
		users:       postgres.NewPostgresUserDirectory(db, cfg.Auth.AdminRoleID, logger),
		calendars:   postgres.NewPostgresCalendarStore(db, cfg.LMS.BaseURL, cfg.LMS.ClientID, logger),
		objects:     postgres.NewPostgresObjectStore(db, logger),
	}

	logger.Info("application initialized", "documented_routes", registry.Len())
	return app, nil
}

// handler builds the full middleware stack and route table.
func (app *application) handler() (http.Handler, error) {
	rt := router.New(router.Options{
		Logger:          app.logger,
		ForbiddenStatus: app.config.Auth.ForbiddenStatus,
		ExposeTrace:     app.config.Server.ExposeTrace,
	})

	rt.Use(
		chimw.RealIP,
		middleware.Trace(app.logger),
		middleware.RequestLog,
		middleware.Metrics(app.metrics),
		middleware.CORS(app.config.CORS),
		middleware.RateLimit(app.config.RateLimit, app.metrics),
	)

	authz := middleware.NewAuthorizer(app.permissions, app.users, app.metrics)
	authn := middleware.NewAuthenticator(app.tokens, app.clients, authz, app.metrics)

	api.Register(rt, api.Deps{
		Docs:      app.docs,
		Calendars: app.calendars,
		Objects:   app.objects,
		Authn:     authn,
		Authz:     authz,
	})
	rt.Group("/").Get("/health", func(c *router.Ctx) error {
		return c.Success("OK")
	})

	for _, entry := range api.StaleDocs(rt, app.docs) {
		app.logger.Warn("documented route is not registered",
			"verb", entry.Verb, "route", entry.Route)
	}

	h, err := rt.Handler()
	if err != nil {
		return nil, fmt.Errorf("failed to build router: %w", err)
	}
	return h, nil
}

// Run serves until ctx is canceled.
func (app *application) Run(ctx context.Context) error {
	h, err := app.handler()
	if err != nil {
		return err
	}
	if err := app.serve(ctx, h); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	app.logger.Info("application shutdown completed")
	return nil
}
