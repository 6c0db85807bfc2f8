// Package store provides the gorm-backed persistence layer: the content
// engine's Store collaborator and the community repositories.
package store

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/avergnaud/atelier/internal/content"
	"github.com/avergnaud/atelier/internal/model"
)

// Open connects to the database selected by the DSN: postgres URLs go to the
// postgres driver, anything else is treated as a sqlite path.
func Open(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "host=") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table the platform persists.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&content.Tutorial{},
		&content.TutorialAuthor{},
		&content.Part{},
		&content.Chapter{},
		&content.Extract{},

		&model.Member{},
		&model.Forum{},
		&model.Topic{},
		&model.Post{},
		&model.Thread{},
		&model.ThreadParticipant{},
		&model.Message{},
		&model.Gallery{},
		&model.Image{},
	)
}
