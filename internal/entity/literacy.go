package entity

import (
	"time"

	"gorm.io/gorm"
)

// Student - Estudiante con su progreso acumulado
type Student struct {
	ID                  uint           `gorm:"primarykey" json:"id"`
	StudentID           string         `gorm:"uniqueIndex;size:100;not null" json:"student_id"`
	Name                string         `gorm:"size:150;not null" json:"name"`
	CurrentLevel        string         `gorm:"size:20;not null;default:beginner" json:"current_level"` // beginner, intermediate, advanced
	ExercisesCompleted  int            `gorm:"not null;default:0" json:"exercises_completed"`
	CorrectAnswers      int            `gorm:"not null;default:0" json:"correct_answers"`
	IncorrectAnswers    int            `gorm:"not null;default:0" json:"incorrect_answers"`
	AverageResponseTime float64        `gorm:"not null;default:0" json:"average_response_time"` // ms
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Student) TableName() string {
	return "students"
}

// ExerciseTemplate - Banco de ejercicios a partir del cual se generan ejercicios
type ExerciseTemplate struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	TemplateID      string         `gorm:"uniqueIndex;size:50;not null" json:"template_id"` // e.g. "b-letter-1"
	Type            string         `gorm:"size:30;not null" json:"type"`
	DifficultyLevel string         `gorm:"size:20;not null;index" json:"difficulty_level"`
	Content         string         `gorm:"type:text;not null" json:"content"`
	Options         string         `gorm:"type:text" json:"options"` // JSON array, empty for free text
	CorrectAnswer   string         `gorm:"size:200;not null" json:"correct_answer"`
	TimeLimit       int            `gorm:"default:0" json:"time_limit"` // seconds
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ExerciseTemplate) TableName() string {
	return "exercise_templates"
}

// Exercise - Ejercicio servido a los estudiantes
type Exercise struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	ExerciseID      string         `gorm:"uniqueIndex;size:100;not null" json:"exercise_id"` // uuid
	TemplateID      string         `gorm:"size:50;index" json:"template_id"`
	Type            string         `gorm:"size:30;not null" json:"type"`
	DifficultyLevel string         `gorm:"size:20;not null;index" json:"difficulty_level"`
	Content         string         `gorm:"type:text;not null" json:"content"`
	Options         string         `gorm:"type:text" json:"options"`
	CorrectAnswer   string         `gorm:"size:200;not null" json:"correct_answer"`
	TimeLimit       int            `gorm:"default:0" json:"time_limit"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Exercise) TableName() string {
	return "exercises"
}

// Evaluation - Respuesta evaluada de un estudiante
type Evaluation struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	StudentID      string         `gorm:"size:100;not null;index" json:"student_id"`
	ExerciseID     string         `gorm:"size:100;not null;index" json:"exercise_id"`
	Answer         string         `gorm:"size:200" json:"answer"`
	CorrectAnswer  string         `gorm:"size:200;not null" json:"correct_answer"`
	IsCorrect      bool           `gorm:"not null" json:"is_correct"`
	ResponseTimeMs int64          `gorm:"not null" json:"response_time_ms"`
	Feedback       string         `gorm:"type:text" json:"feedback"`
	AnsweredAt     time.Time      `json:"answered_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Evaluation) TableName() string {
	return "evaluations"
}
