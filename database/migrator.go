package database

import (
	"github.com/evandrarf/chiapas-puede/internal/entity"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entity.Student{},
		&entity.ExerciseTemplate{},
		&entity.Exercise{},
		&entity.Evaluation{},
	)
	return err
}
