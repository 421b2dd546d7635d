package settings

import (
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"portfolio/errs"
	"portfolio/models"
)

// Defaults are the values stored when the site runs without settings.
func Defaults() models.SiteSettings {
	return models.SiteSettings{
		ID:              models.SettingsID,
		SiteTitle:       "Ganesh - Python Developer",
		SiteDescription: "Passionate Python Developer specializing in Django web applications",
		HeroTitle:       "Hi, I'm Ganesh — a passionate Python Developer",
		HeroSubtitle:    "Building innovative web solutions with clean code and creative problem-solving.",
		Email:           "ganesh@example.com",
		Phone:           "+91 9876543210",
		Location:        "Mumbai, India",
	}
}

// Get returns the site settings, creating the defaults on first use.
func Get(db *gorm.DB) (*models.SiteSettings, error) {
	s, err := load(db)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return createOrLoad(db)
}

func load(db *gorm.DB) (*models.SiteSettings, error) {
	var s models.SiteSettings
	if err := db.First(&s, models.SettingsID).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// createOrLoad inserts the defaults. Losing the race to another writer is
// fine: the row it created is read back instead.
func createOrLoad(db *gorm.DB) (*models.SiteSettings, error) {
	s := Defaults()
	err := db.Create(&s).Error
	if err == nil {
		log.Info().Msg("created default site settings")
		return &s, nil
	}
	if !errs.IsUniqueViolation(err) {
		return nil, err
	}
	return load(db)
}

// Create stores s as the settings row. It fails with errs.ErrSettingsExists
// when the row already exists.
func Create(db *gorm.DB, s *models.SiteSettings) error {
	var count int64
	if err := db.Model(&models.SiteSettings{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errs.ErrSettingsExists
	}

	err := db.Create(s).Error
	if errs.IsUniqueViolation(err) {
		return errs.ErrSettingsExists
	}
	return err
}

// Update saves s over the existing row.
func Update(db *gorm.DB, s *models.SiteSettings) error {
	s.ID = models.SettingsID
	return db.Save(s).Error
}
