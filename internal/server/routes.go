package server

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up the core, non-module routes.
func (s *Server) RegisterRoutes() {
	s.E.GET("/api", s.apiStatus)
	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	s.E.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: s.Container.Registry,
	}))

	// Static client build; API and module routes take precedence.
	s.E.Static("/", s.Cfg.GetStaticDir())
}

func (s *Server) apiStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Chat API is running on %s", s.Cfg.GetPort()),
	})
}
