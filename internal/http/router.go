// Package http assembles the dev server's gin router.
package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/dermatch/dermatch-go/internal/http/handlers"
	httpMW "github.com/dermatch/dermatch-go/internal/http/middleware"
	"github.com/dermatch/dermatch-go/internal/pkg/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthMiddleware *httpMW.AuthMiddleware

	QuizHandler     *httpH.QuizHandler
	HistoryHandler  *httpH.HistoryHandler
	ProductHandler  *httpH.ProductHandler
	RealtimeHandler *httpH.RealtimeHandler
	HealthHandler   *httpH.HealthHandler

	OtelEnabled bool
	ServiceName string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.OtelEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	quiz := r.Group("/quiz")

	// Endpoints open to anonymous callers. An invalid bearer token is still
	// rejected here; optional means "no credential required", not "any
	// credential accepted".
	open := quiz.Group("")
	if cfg.AuthMiddleware != nil {
		open.Use(cfg.AuthMiddleware.OptionalAuth())
	}
	if cfg.QuizHandler != nil {
		open.GET("/questions", cfg.QuizHandler.ListQuestions)
		open.POST("/start", cfg.QuizHandler.StartSession)
		open.POST("/answer", cfg.QuizHandler.SubmitAnswer)
		open.POST("/submit", cfg.QuizHandler.FinalizeSession)
		open.GET("/session/:id", cfg.QuizHandler.GetSession)
	}
	if cfg.ProductHandler != nil {
		open.GET("/products/:id", cfg.ProductHandler.GetDetail)
	}

	protected := quiz.Group("")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	if cfg.HistoryHandler != nil {
		protected.GET("/history", cfg.HistoryHandler.List)
		protected.GET("/history/profile/:id", cfg.HistoryHandler.GetDetail)
		protected.DELETE("/history/:id", cfg.HistoryHandler.Delete)
	}
	if cfg.RealtimeHandler != nil {
		protected.GET("/events", cfg.RealtimeHandler.Events)
	}

	return r
}
