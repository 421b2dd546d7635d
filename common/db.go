package common

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormLogger routes gorm's SQL logging through zerolog.
func GormLogger() logger.Interface {
	zl := log.Logger.With().Str("component", "gorm").Logger()
	level := logger.Warn
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		level = logger.Info
	}
	return logger.New(&zl, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func openSqlite(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   GormLogger(),
	})
}

func ConnectDb(path string) (*gorm.DB, error) {
	log.Info().Str("sqlite_db", path).Msg("opening content database")

	db, err := openSqlite(path)
	if err != nil {
		log.Error().Err(err).Str("sqlite_db", path).Msg("error opening sqlite db")
		return nil, err
	}
	return db, nil
}

// ConnectAnalyticsDb opens the separate analytics database. An empty path
// disables analytics and returns a nil db without error.
func ConnectAnalyticsDb(path string) (*gorm.DB, error) {
	if path == "" {
		log.Info().Msg("analytics_db not set - analytics will be disabled")
		return nil, nil
	}

	db, err := openSqlite(path)
	if err != nil {
		log.Error().Err(err).Str("analytics_db", path).Msg("error opening analytics sqlite db")
		return nil, err
	}

	log.Info().Str("analytics_db", path).Msg("opened analytics sqlite db")
	return db, nil
}
