package database

import (
	"fmt"

	httpEntity "github.com/evandrarf/chiapas-puede/internal/delivery/http/entity"
	"github.com/evandrarf/chiapas-puede/internal/entity"
	"github.com/evandrarf/chiapas-puede/internal/pkg/mapper"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type bankTemplate struct {
	ID            string
	Type          httpEntity.ExerciseType
	Level         httpEntity.DifficultyLevel
	Content       string
	Options       []string
	CorrectAnswer string
	TimeLimit     int
}

// ExerciseBankData - Plantillas iniciales del banco de ejercicios
var ExerciseBankData = []bankTemplate{
	// ==================== BEGINNER ====================
	{ID: "b-letter-1", Type: httpEntity.TypeLetterRecognition, Level: httpEntity.LevelBeginner, Content: "¿Qué letra es esta? A", Options: []string{"A", "E", "I", "O"}, CorrectAnswer: "A", TimeLimit: 30},
	{ID: "b-letter-2", Type: httpEntity.TypeLetterRecognition, Level: httpEntity.LevelBeginner, Content: "¿Qué letra es esta? M", Options: []string{"N", "M", "W", "U"}, CorrectAnswer: "M", TimeLimit: 30},
	{ID: "b-letter-3", Type: httpEntity.TypeLetterRecognition, Level: httpEntity.LevelBeginner, Content: "¿Con qué letra empieza SOL?", Options: []string{"S", "C", "Z"}, CorrectAnswer: "S", TimeLimit: 30},
	{ID: "b-syllable-1", Type: httpEntity.TypeSyllableFormation, Level: httpEntity.LevelBeginner, Content: "Une las letras M + A", CorrectAnswer: "MA", TimeLimit: 45},
	{ID: "b-syllable-2", Type: httpEntity.TypeSyllableFormation, Level: httpEntity.LevelBeginner, Content: "Une las letras P + E", CorrectAnswer: "PE", TimeLimit: 45},

	// ==================== INTERMEDIATE ====================
	{ID: "i-word-1", Type: httpEntity.TypeWordCompletion, Level: httpEntity.LevelIntermediate, Content: "Completa la palabra: CA_A", Options: []string{"S", "M", "P"}, CorrectAnswer: "S", TimeLimit: 45},
	{ID: "i-word-2", Type: httpEntity.TypeWordCompletion, Level: httpEntity.LevelIntermediate, Content: "Escribe la palabra que falta: El ___ ladra.", CorrectAnswer: "perro", TimeLimit: 60},
	{ID: "i-word-3", Type: httpEntity.TypeWordCompletion, Level: httpEntity.LevelIntermediate, Content: "Completa la palabra: MAÍ_", Options: []string{"Z", "S", "C"}, CorrectAnswer: "Z", TimeLimit: 45},
	{ID: "i-sentence-1", Type: httpEntity.TypeSentenceFormation, Level: httpEntity.LevelIntermediate, Content: "Ordena las palabras: come / niña / La / tortilla / una", CorrectAnswer: "La niña come una tortilla", TimeLimit: 90},

	// ==================== ADVANCED ====================
	{ID: "a-sentence-1", Type: httpEntity.TypeSentenceFormation, Level: httpEntity.LevelAdvanced, Content: "Ordena las palabras: el / río / cruza / El / puente", Options: []string{"El puente cruza el río", "El río cruza el puente"}, CorrectAnswer: "El puente cruza el río", TimeLimit: 90},
	{ID: "a-text-1", Type: httpEntity.TypeTextComprehension, Level: httpEntity.LevelAdvanced, Content: "Lee: \"Juan siembra maíz en la milpa.\" ¿Qué siembra Juan?", Options: []string{"Frijol", "Maíz", "Café"}, CorrectAnswer: "Maíz", TimeLimit: 120},
	{ID: "a-text-2", Type: httpEntity.TypeTextComprehension, Level: httpEntity.LevelAdvanced, Content: "Lee: \"María camina al mercado con su abuela.\" ¿Con quién camina María?", CorrectAnswer: "abuela", TimeLimit: 120},
}

// StudentData - Estudiantes iniciales
var StudentData = []entity.Student{
	{StudentID: "est-001", Name: "Ana López", CurrentLevel: string(httpEntity.LevelBeginner)},
	{StudentID: "est-002", Name: "Mateo Gómez", CurrentLevel: string(httpEntity.LevelIntermediate)},
}

// SeedExerciseBank inserts the exercise bank when the template table is empty.
func SeedExerciseBank(db *gorm.DB, log *logrus.Logger) error {
	var count int64
	if err := db.Model(&entity.ExerciseTemplate{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("Exercise bank already seeded, skipping...")
		return nil
	}

	for _, tpl := range ExerciseBankData {
		options, err := mapper.EncodeOptions(tpl.Options)
		if err != nil {
			return fmt.Errorf("failed to marshal options for %s: %w", tpl.ID, err)
		}

		template := entity.ExerciseTemplate{
			TemplateID:      tpl.ID,
			Type:            string(tpl.Type),
			DifficultyLevel: string(tpl.Level),
			Content:         tpl.Content,
			Options:         options,
			CorrectAnswer:   tpl.CorrectAnswer,
			TimeLimit:       tpl.TimeLimit,
		}

		if err := db.Create(&template).Error; err != nil {
			return fmt.Errorf("failed to seed template %s: %w", tpl.ID, err)
		}
	}

	log.Infof("Seeded %d exercise templates", len(ExerciseBankData))
	return nil
}

// SeedStudents inserts the initial roster when the student table is empty.
func SeedStudents(db *gorm.DB, log *logrus.Logger) error {
	var count int64
	if err := db.Model(&entity.Student{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("Students already seeded, skipping...")
		return nil
	}

	for _, s := range StudentData {
		student := s
		if err := db.Create(&student).Error; err != nil {
			return fmt.Errorf("failed to seed student %s: %w", s.StudentID, err)
		}
	}

	log.Infof("Seeded %d students", len(StudentData))
	return nil
}
