package app

import (
	"gorm.io/gorm"

	"github.com/dermatch/dermatch-go/internal/pkg/logger"
	"github.com/dermatch/dermatch-go/internal/realtime"
	"github.com/dermatch/dermatch-go/internal/realtime/bus"
	"github.com/dermatch/dermatch-go/internal/services"
)

type Services struct {
	Catalog  services.CatalogService
	Quiz     services.QuizService
	History  services.HistoryService
	Notifier services.Notifier
}

func wireServices(conn *gorm.DB, log *logger.Logger, reposet Repos, hub *realtime.SSEHub, eventBus bus.Bus) Services {
	log.Info("Wiring services...")
	notifier := services.NewSSENotifier(log, hub, eventBus)
	catalog := services.NewCatalogService(conn, log, reposet.Questions, reposet.Products)
	quiz := services.NewQuizService(
		conn, log, catalog, notifier,
		reposet.Sessions, reposet.Answers, reposet.Profiles,
		reposet.Results, reposet.Recommendations, reposet.Products,
	)
	history := services.NewHistoryService(
		conn, log, notifier,
		reposet.Sessions, reposet.Answers, reposet.Profiles,
		reposet.Results, reposet.Recommendations, reposet.Products,
	)
	return Services{
		Catalog:  catalog,
		Quiz:     quiz,
		History:  history,
		Notifier: notifier,
	}
}
