package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/espresso/internal/app"
	"github.com/nfrund/espresso/internal/config"
	appmiddleware "github.com/nfrund/espresso/internal/middleware"
	"github.com/nfrund/espresso/internal/module"
)

// Server holds the HTTP server and the services it shuts down.
type Server struct {
	E         *echo.Echo
	Cfg       config.Provider
	Container *app.Container
	modules   []module.Module
}

// New creates a new Server with its middleware chain and core routes. Module
// routes are added by InitModules.
func New(cfg config.Provider, c *app.Container, modules []module.Module) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	setupErrorHandling(e)

	e.Use(middleware.RequestID())
	e.Use(appmiddleware.Logger)
	e.Use(appmiddleware.RequestLog())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.GetCORSOrigin()},
		AllowMethods: []string{"GET", "POST"},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "espresso",
		Subsystem:  "http",
		Registerer: c.Registry,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	s := &Server{
		E:         e,
		Cfg:       cfg,
		Container: c,
		modules:   modules,
	}
	s.RegisterRoutes()
	return s
}

// setupErrorHandling logs unhandled errors with a stack trace before handing
// them to echo's default handler.
func setupErrorHandling(e *echo.Echo) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if !errors.As(err, &he) {
			slog.Error("Internal Server Error (Unhandled)",
				"error", err,
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"stack_trace", string(debug.Stack()),
			)
		}
		e.DefaultHTTPErrorHandler(err, c)
	}
}

// InitModules registers every module's services, then boots them in order.
// ctx bounds the lifetime of the modules' background workers.
func (s *Server) InitModules(ctx context.Context) error {
	for _, m := range s.modules {
		if err := m.Register(s.Container.Injector); err != nil {
			return fmt.Errorf("register module %s: %w", m.Name(), err)
		}
	}

	root := s.E.Group("")
	for _, m := range s.modules {
		if err := m.Boot(ctx, root, s.Container.Injector); err != nil {
			return fmt.Errorf("boot module %s: %w", m.Name(), err)
		}
		slog.Debug("Module booted", "module", m.Name())
	}
	return nil
}
