package repository

import (
	"github.com/evandrarf/chiapas-puede/internal/entity"
	"gorm.io/gorm"
)

type (
	LiteracyRepository interface {
		// Student operations
		CreateStudent(db *gorm.DB, student *entity.Student) error
		FindStudents(db *gorm.DB) ([]entity.Student, error)
		FindStudentByStudentID(db *gorm.DB, studentID string) (*entity.Student, error)
		SaveStudent(db *gorm.DB, student *entity.Student) error

		// Template operations
		CreateTemplate(db *gorm.DB, template *entity.ExerciseTemplate) error
		FindTemplatesByLevel(db *gorm.DB, level string) ([]entity.ExerciseTemplate, error)
		CountTemplates(db *gorm.DB) (int64, error)

		// Exercise operations
		CreateExercise(db *gorm.DB, exercise *entity.Exercise) error
		FindExercisesByLevel(db *gorm.DB, level string) ([]entity.Exercise, error)
		FindExerciseByExerciseID(db *gorm.DB, exerciseID string) (*entity.Exercise, error)

		// Evaluation operations
		CreateEvaluation(db *gorm.DB, evaluation *entity.Evaluation) error
		FindEvaluationsByStudentID(db *gorm.DB, studentID string) ([]entity.Evaluation, error)
	}

	literacyRepository struct {
		db *gorm.DB
	}
)

func NewLiteracyRepository(db *gorm.DB) LiteracyRepository {
	return &literacyRepository{db: db}
}

func (r *literacyRepository) conn(db *gorm.DB) *gorm.DB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *literacyRepository) CreateStudent(db *gorm.DB, student *entity.Student) error {
	return r.conn(db).Create(student).Error
}

func (r *literacyRepository) FindStudents(db *gorm.DB) ([]entity.Student, error) {
	var students []entity.Student
	err := r.conn(db).Order("name ASC").Find(&students).Error
	return students, err
}

func (r *literacyRepository) FindStudentByStudentID(db *gorm.DB, studentID string) (*entity.Student, error) {
	var student entity.Student
	err := r.conn(db).Where("student_id = ?", studentID).First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *literacyRepository) SaveStudent(db *gorm.DB, student *entity.Student) error {
	return r.conn(db).Save(student).Error
}

func (r *literacyRepository) CreateTemplate(db *gorm.DB, template *entity.ExerciseTemplate) error {
	return r.conn(db).Create(template).Error
}

func (r *literacyRepository) FindTemplatesByLevel(db *gorm.DB, level string) ([]entity.ExerciseTemplate, error) {
	var templates []entity.ExerciseTemplate
	err := r.conn(db).Where("difficulty_level = ?", level).Order("template_id ASC").Find(&templates).Error
	return templates, err
}

func (r *literacyRepository) CountTemplates(db *gorm.DB) (int64, error) {
	var count int64
	err := r.conn(db).Model(&entity.ExerciseTemplate{}).Count(&count).Error
	return count, err
}

func (r *literacyRepository) CreateExercise(db *gorm.DB, exercise *entity.Exercise) error {
	return r.conn(db).Create(exercise).Error
}

func (r *literacyRepository) FindExercisesByLevel(db *gorm.DB, level string) ([]entity.Exercise, error) {
	var exercises []entity.Exercise
	err := r.conn(db).Where("difficulty_level = ?", level).Order("id ASC").Find(&exercises).Error
	return exercises, err
}

func (r *literacyRepository) FindExerciseByExerciseID(db *gorm.DB, exerciseID string) (*entity.Exercise, error) {
	var exercise entity.Exercise
	err := r.conn(db).Where("exercise_id = ?", exerciseID).First(&exercise).Error
	if err != nil {
		return nil, err
	}
	return &exercise, nil
}

func (r *literacyRepository) CreateEvaluation(db *gorm.DB, evaluation *entity.Evaluation) error {
	return r.conn(db).Create(evaluation).Error
}

func (r *literacyRepository) FindEvaluationsByStudentID(db *gorm.DB, studentID string) ([]entity.Evaluation, error) {
	var evaluations []entity.Evaluation
	err := r.conn(db).Where("student_id = ?", studentID).Order("answered_at DESC").Find(&evaluations).Error
	return evaluations, err
}
