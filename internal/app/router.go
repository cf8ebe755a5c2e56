package app

import (
	"github.com/gin-gonic/gin"

	internalhttp "github.com/dermatch/dermatch-go/internal/http"
	"github.com/dermatch/dermatch-go/internal/observability"
	"github.com/dermatch/dermatch-go/internal/pkg/logger"
)

func wireRouter(log *logger.Logger, cfg Config, handlerset Handlers, middleware Middleware) *gin.Engine {
	return internalhttp.NewRouter(internalhttp.RouterConfig{
		Log:             log,
		AuthMiddleware:  middleware.Auth,
		QuizHandler:     handlerset.Quiz,
		HistoryHandler:  handlerset.History,
		ProductHandler:  handlerset.Product,
		RealtimeHandler: handlerset.Realtime,
		HealthHandler:   handlerset.Health,
		OtelEnabled:     observability.Enabled(),
		ServiceName:     cfg.ServiceName,
	})
}
