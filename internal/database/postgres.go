package database

import (
	"fmt"

	"github.com/nevtik/eduvate-backend/internal/config"
	"github.com/nevtik/eduvate-backend/internal/model"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewPostgresDB opens and validates a GORM connection to PostgreSQL.
func NewPostgresDB(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info().Msg("PostgreSQL connected")

	return db, nil
}

// AutoMigrate applies GORM schema migrations for every model. SQL
// migrations under migrations/ remain the source of truth for production;
// this path exists for dev bootstrap and tests.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Task{},
		&model.Submission{},
		&model.Quiz{},
		&model.Question{},
		&model.QuizAttempt{},
		&model.QuizAnswer{},
		&model.Attendance{},
		&model.Material{},
		&model.SystemSetting{},
	)
}
