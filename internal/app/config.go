package app

import (
	"github.com/dermatch/dermatch-go/internal/pkg/envutil"
	"github.com/dermatch/dermatch-go/internal/pkg/logger"
)

type Config struct {
	Env         string
	Port        string
	JWTSecret   string
	CatalogPath string
	RedisAddr   string
	ServiceName string
	Version     string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Env:         envutil.String("APP_ENV", "development"),
		Port:        envutil.String("PORT", "8080"),
		JWTSecret:   envutil.String("JWT_SECRET_KEY", "devsecret"),
		CatalogPath: envutil.String("CATALOG_PATH", ""),
		RedisAddr:   envutil.String("REDIS_ADDR", ""),
		ServiceName: envutil.String("SERVICE_NAME", "quizdev"),
		Version:     envutil.String("SERVICE_VERSION", "dev"),
	}
	if cfg.JWTSecret == "devsecret" && cfg.Env != "development" {
		log.Warn("JWT_SECRET_KEY not set, running with the development default")
	}
	return cfg
}
