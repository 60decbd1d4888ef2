// Package api exposes the chat pipeline and the catalogue lookups over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"support-chatbot/internal/common/logger"
	"support-chatbot/internal/dataaccess"
	"support-chatbot/internal/models"
)

// Replier answers one chat message.
type Replier interface {
	Reply(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
}

// ReadinessCheck reports whether a backing service is reachable.
type ReadinessCheck func(ctx context.Context) error

// Handler handles HTTP requests.
type Handler struct {
	chat   Replier
	data   dataaccess.DataAccess
	checks map[string]ReadinessCheck
	logger logger.Logger
}

// NewHandler creates a new handler. checks are run by GET /ready.
func NewHandler(chat Replier, data dataaccess.DataAccess, checks map[string]ReadinessCheck, log logger.Logger) *Handler {
	return &Handler{
		chat:   chat,
		data:   data,
		checks: checks,
		logger: log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/health", h.Health)
	e.GET("/ready", h.Ready)

	e.POST("/api/chat", h.Chat)
	e.GET("/api/conversations", h.ListConversations)

	e.GET("/api/products", h.ListProducts)
	e.GET("/api/products/top", h.TopProducts)
	e.GET("/api/products/low-stock", h.LowStock)
	e.GET("/api/products/stock/:name", h.GetStock)
	e.GET("/api/orders/:id", h.GetOrder)
	e.GET("/api/analytics/sales", h.SalesAnalytics)
}

func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "E-commerce Chatbot API is running!",
	})
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready runs every readiness check and fails with 503 if any does.
func (h *Handler) Ready(c echo.Context) error {
	ctx := c.Request().Context()
	status := map[string]string{}
	ready := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status[name] = err.Error()
			ready = false
			continue
		}
		status[name] = "ok"
	}

	if !ready {
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
			"status": "not ready",
			"checks": status,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "ready",
		"checks": status,
	})
}

// detail mirrors the {"detail": ...} body used for server-side failures.
func (h *Handler) detail(c echo.Context, msg string, err error) error {
	h.logger.Error(msg, map[string]interface{}{
		"path":  c.Path(),
		"error": err.Error(),
	})
	return c.JSON(http.StatusInternalServerError, map[string]string{"detail": msg})
}
