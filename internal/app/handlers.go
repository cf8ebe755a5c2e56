package app

import (
	httpH "github.com/dermatch/dermatch-go/internal/http/handlers"
	"github.com/dermatch/dermatch-go/internal/pkg/logger"
	"github.com/dermatch/dermatch-go/internal/realtime"
)

type Handlers struct {
	Quiz     *httpH.QuizHandler
	History  *httpH.HistoryHandler
	Product  *httpH.ProductHandler
	Realtime *httpH.RealtimeHandler
	Health   *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, serviceset Services, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Quiz:     httpH.NewQuizHandler(log, serviceset.Quiz, serviceset.Catalog),
		History:  httpH.NewHistoryHandler(log, serviceset.History),
		Product:  httpH.NewProductHandler(log, serviceset.Catalog),
		Realtime: httpH.NewRealtimeHandler(log, hub),
		Health:   httpH.NewHealthHandler(),
	}
}
