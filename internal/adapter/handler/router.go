package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/johnquangdev/interview-assistant/pkg/config"
	"github.com/johnquangdev/interview-assistant/pkg/jwt"
	"github.com/johnquangdev/interview-assistant/pkg/middleware"
)

// Router holds all handlers
type Router struct {
	cfg              *config.Config
	tickets          *jwt.Manager
	interviewHandler *Interview
	streamHandler    *Stream
	webhookHandler   *WebhookHandler
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, tickets *jwt.Manager, interviewHandler *Interview, streamHandler *Stream, webhookHandler *WebhookHandler) *Router {
	return &Router{
		cfg:              cfg,
		tickets:          tickets,
		interviewHandler: interviewHandler,
		streamHandler:    streamHandler,
		webhookHandler:   webhookHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")
	rt.setupInterviewRoutes(v1)
	rt.setupWebhookRoutes(v1)
}

// setupInterviewRoutes configures interview routes
func (rt *Router) setupInterviewRoutes(g *echo.Group) {
	interviews := g.Group("/interviews")

	h := rt.interviewHandler
	interviews.POST("", h.Create)
	interviews.GET("/:id", h.Get)
	interviews.GET("/:id/transcript", h.Transcript)
	interviews.GET("/:id/report", h.Report)
	interviews.POST("/:id/events", h.DispatchEvents)
	interviews.POST("/:id/end", h.End)
	interviews.POST("/:id/finalize", h.Finalize)

	if rt.streamHandler != nil && rt.tickets != nil {
		interviews.GET("/:id/stream", rt.streamHandler.Handle, middleware.RequireStreamTicket(rt.tickets))
	}
}

// setupWebhookRoutes configures webhook routes
func (rt *Router) setupWebhookRoutes(g *echo.Group) {
	if rt.webhookHandler == nil {
		return
	}
	g.POST("/webhooks/livekit", rt.webhookHandler.HandleLiveKitWebhook)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	env := "development"
	if rt.cfg != nil {
		env = rt.cfg.Server.Environment
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": env,
	})
}
