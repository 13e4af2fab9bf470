package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Michael-Yan-wun/meeting-tools/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	meetingHandler *Meeting
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, meetingHandler *Meeting) *Router {
	return &Router{
		cfg:            cfg,
		meetingHandler: meetingHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)

	e.GET("/meetings", rt.meetingHandler.List)
	e.GET("/meetings/:id", rt.meetingHandler.Get)
	e.POST("/upload", rt.meetingHandler.Upload)
	e.GET("/download/:name", rt.meetingHandler.Download)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"time":        time.Now().UTC().Format(time.RFC3339),
		"environment": rt.cfg.Server.Environment,
	})
}
