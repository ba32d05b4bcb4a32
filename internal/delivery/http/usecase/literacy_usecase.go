package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evandrarf/chiapas-puede/internal/delivery/http/entity"
	"github.com/evandrarf/chiapas-puede/internal/delivery/http/repository"
	internalEntity "github.com/evandrarf/chiapas-puede/internal/entity"
	"github.com/evandrarf/chiapas-puede/internal/pkg/mapper"
	"github.com/evandrarf/chiapas-puede/internal/session"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrStudentNotFound  = errors.New("student not found")
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrNoTemplates      = errors.New("no exercise templates for level")
	ErrInvalidLevel     = errors.New("invalid difficulty level")
)

const (
	defaultGenerateCount = 5
	maxGenerateCount     = 20
)

// Exercise types in the order a learner progresses through them.
var typeProgression = []entity.ExerciseType{
	entity.TypeLetterRecognition,
	entity.TypeSyllableFormation,
	entity.TypeWordCompletion,
	entity.TypeSentenceFormation,
	entity.TypeTextComprehension,
}

type LiteracyUsecase interface {
	Students(ctx context.Context) ([]entity.Student, error)
	Progression(ctx context.Context, studentID string) (*entity.Student, error)
	Evaluations(ctx context.Context, studentID string) ([]internalEntity.Evaluation, error)
	ExercisesByLevel(ctx context.Context, level entity.DifficultyLevel) ([]entity.Exercise, error)
	Generate(ctx context.Context, level entity.DifficultyLevel, count int) ([]entity.Exercise, error)
	Evaluate(ctx context.Context, req entity.StudentResponse) (*entity.EvaluationResult, error)
}

type LiteracyConfig struct {
	DB         *gorm.DB
	Repository repository.LiteracyRepository
	Log        *logrus.Logger
	Now        func() time.Time
}

type literacyUsecase struct {
	cfg LiteracyConfig
}

func NewLiteracyUsecase(cfg LiteracyConfig) LiteracyUsecase {
	if cfg.Log == nil {
		cfg.Log = logrus.New()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &literacyUsecase{cfg: cfg}
}

func (u *literacyUsecase) Students(ctx context.Context) ([]entity.Student, error) {
	rows, err := u.cfg.Repository.FindStudents(u.cfg.DB.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	students := make([]entity.Student, 0, len(rows))
	for i := range rows {
		students = append(students, mapper.ToStudent(&rows[i]))
	}
	return students, nil
}

// Progression returns nil, nil for an unknown student.
func (u *literacyUsecase) Progression(ctx context.Context, studentID string) (*entity.Student, error) {
	row, err := u.cfg.Repository.FindStudentByStudentID(u.cfg.DB.WithContext(ctx), studentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	student := mapper.ToStudent(row)
	return &student, nil
}

func (u *literacyUsecase) Evaluations(ctx context.Context, studentID string) ([]internalEntity.Evaluation, error) {
	return u.cfg.Repository.FindEvaluationsByStudentID(u.cfg.DB.WithContext(ctx), studentID)
}

func (u *literacyUsecase) ExercisesByLevel(ctx context.Context, level entity.DifficultyLevel) ([]entity.Exercise, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLevel, level)
	}

	rows, err := u.cfg.Repository.FindExercisesByLevel(u.cfg.DB.WithContext(ctx), string(level))
	if err != nil {
		return nil, err
	}
	return u.toExercises(rows), nil
}

func (u *literacyUsecase) toExercises(rows []internalEntity.Exercise) []entity.Exercise {
	exercises := make([]entity.Exercise, 0, len(rows))
	for i := range rows {
		ex, err := mapper.ToExercise(&rows[i])
		if err != nil {
			u.cfg.Log.WithError(err).Warn("skipping unreadable exercise")
			continue
		}
		exercises = append(exercises, ex)
	}
	return exercises
}

// Generate instantiates count exercises of level from the template bank,
// cycling through the templates in order.
func (u *literacyUsecase) Generate(ctx context.Context, level entity.DifficultyLevel, count int) ([]entity.Exercise, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLevel, level)
	}
	if count <= 0 {
		count = defaultGenerateCount
	}
	count = min(count, maxGenerateCount)

	var created []internalEntity.Exercise
	err := u.cfg.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		templates, err := u.cfg.Repository.FindTemplatesByLevel(tx, string(level))
		if err != nil {
			return err
		}
		if len(templates) == 0 {
			return fmt.Errorf("%w: %s", ErrNoTemplates, level)
		}

		for i := range count {
			row := mapper.FromTemplate(&templates[i%len(templates)], uuid.NewString())
			if err := u.cfg.Repository.CreateExercise(tx, &row); err != nil {
				return err
			}
			created = append(created, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.cfg.Log.WithFields(logrus.Fields{"level": level, "count": len(created)}).Info("exercises generated")
	return u.toExercises(created), nil
}

// Evaluate grades a response, stores it and folds it into the student's progress.
func (u *literacyUsecase) Evaluate(ctx context.Context, req entity.StudentResponse) (*entity.EvaluationResult, error) {
	var result *entity.EvaluationResult

	err := u.cfg.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exercise, err := u.cfg.Repository.FindExerciseByExerciseID(tx, req.ExerciseID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrExerciseNotFound, req.ExerciseID)
		}
		if err != nil {
			return err
		}

		student, err := u.cfg.Repository.FindStudentByStudentID(tx, req.StudentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrStudentNotFound, req.StudentID)
		}
		if err != nil {
			return err
		}

		isCorrect := session.NormalizeAnswer(req.Answer) == session.NormalizeAnswer(exercise.CorrectAnswer)
		feedback := session.FeedbackCorrectDefault
		if !isCorrect {
			feedback = "La respuesta correcta era: " + exercise.CorrectAnswer
		}

		answeredAt := req.Timestamp
		if answeredAt.IsZero() {
			answeredAt = u.cfg.Now()
		}
		if err := u.cfg.Repository.CreateEvaluation(tx, &internalEntity.Evaluation{
			StudentID:      student.StudentID,
			ExerciseID:     exercise.ExerciseID,
			Answer:         req.Answer,
			CorrectAnswer:  exercise.CorrectAnswer,
			IsCorrect:      isCorrect,
			ResponseTimeMs: req.ResponseTimeMs,
			Feedback:       feedback,
			AnsweredAt:     answeredAt,
		}); err != nil {
			return err
		}

		progress := mapper.ToStudent(student).Progress.WithCompletion(isCorrect, req.ResponseTimeMs)
		mapper.ApplyProgress(student, progress)
		if err := u.cfg.Repository.SaveStudent(tx, student); err != nil {
			return err
		}

		next := suggestNext(entity.ExerciseType(exercise.Type), isCorrect)
		result = &entity.EvaluationResult{
			StudentID:                 student.StudentID,
			ExerciseID:                exercise.ExerciseID,
			IsCorrect:                 isCorrect,
			Feedback:                  feedback,
			SuggestedNextExerciseType: &next,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.cfg.Log.WithFields(logrus.Fields{
		"student_id":  req.StudentID,
		"exercise_id": req.ExerciseID,
		"is_correct":  result.IsCorrect,
	}).Info("response evaluated")
	return result, nil
}

// suggestNext moves on to the next exercise type after a correct answer and
// repeats the type otherwise.
func suggestNext(current entity.ExerciseType, isCorrect bool) entity.ExerciseType {
	if !isCorrect {
		return current
	}
	for i, t := range typeProgression {
		if t == current && i+1 < len(typeProgression) {
			return typeProgression[i+1]
		}
	}
	return current
}
