// Package db opens the quizdev store and owns schema migration. Postgres is
// the default driver; sqlite serves local development and the test suite.
package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dermatch/dermatch-go/internal/pkg/envutil"
	"github.com/dermatch/dermatch-go/internal/pkg/logger"
	"github.com/dermatch/dermatch-go/internal/types"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// New opens the store selected by DB_DRIVER ("postgres" default, "sqlite").
// Row ids are generated in Go, so no database extensions are required and
// the same schema migrates on both drivers.
func New(log *logger.Logger) (*Service, error) {
	driver := envutil.String("DB_DRIVER", "postgres")
	switch driver {
	case "sqlite":
		return NewSQLite(envutil.String("SQLITE_PATH", "quizdev.db"), log)
	case "postgres":
		return newPostgres(log)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}
}

func newPostgres(log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DBService")

	host := envutil.String("POSTGRES_HOST", "localhost")
	port := envutil.String("POSTGRES_PORT", "5432")
	user := envutil.String("POSTGRES_USER", "postgres")
	password := envutil.String("POSTGRES_PASSWORD", "")
	name := envutil.String("POSTGRES_NAME", "dermatch")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)

	serviceLog.Info("connecting to postgres", "host", host, "db", name)
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Service{db: conn, log: serviceLog}, nil
}

// NewSQLite opens a sqlite store at path (":memory:" for throwaway test
// databases).
func NewSQLite(path string, log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DBService")
	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	return &Service{db: conn, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) AutoMigrateAll() error {
	s.log.Info("auto migrating tables")
	if err := s.db.AutoMigrate(
		&types.QuizQuestion{},
		&types.Product{},
		&types.QuizSession{},
		&types.QuizAnswer{},
		&types.SkinProfile{},
		&types.QuizResult{},
		&types.SessionRecommendation{},
	); err != nil {
		s.log.Error("auto migration failed", "error", err)
		return err
	}
	return nil
}
