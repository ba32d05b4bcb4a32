package session

import (
	"context"

	"github.com/evandrarf/chiapas-puede/internal/delivery/http/entity"
)

type (
	StudentDirectory interface {
		Students(ctx context.Context) ([]entity.Student, error)
		// StudentProgress returns nil, nil when the backend has no record.
		StudentProgress(ctx context.Context, studentID string) (*entity.Student, error)
	}

	ExerciseDirectory interface {
		ExercisesByLevel(ctx context.Context, level entity.DifficultyLevel) ([]entity.Exercise, error)
		GenerateExercises(ctx context.Context, level entity.DifficultyLevel, count int) error
	}

	Evaluator interface {
		EvaluateResponse(ctx context.Context, resp entity.StudentResponse) (*entity.EvaluationResult, error)
	}
)
