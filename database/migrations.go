package database

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"portfolio/models"
)

func RunMigrations(db *gorm.DB) error {
	log.Info().Msg("running database migrations")

	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Error().Err(err).Msg("error running migrations")
		return err
	}

	log.Info().Msg("migrations completed successfully")
	return nil
}
