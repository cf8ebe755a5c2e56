package app

import (
	httpMW "github.com/dermatch/dermatch-go/internal/http/middleware"
	"github.com/dermatch/dermatch-go/internal/pkg/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, cfg.JWTSecret),
	}
}
