package mapper

import (
	"encoding/json"
	"fmt"

	httpEntity "github.com/evandrarf/chiapas-puede/internal/delivery/http/entity"
	dbEntity "github.com/evandrarf/chiapas-puede/internal/entity"
)

func ToStudent(s *dbEntity.Student) httpEntity.Student {
	return httpEntity.Student{
		ID:           s.StudentID,
		Name:         s.Name,
		CurrentLevel: httpEntity.DifficultyLevel(s.CurrentLevel),
		Progress: &httpEntity.Progress{
			ExercisesCompleted:  s.ExercisesCompleted,
			CorrectAnswers:      s.CorrectAnswers,
			IncorrectAnswers:    s.IncorrectAnswers,
			AverageResponseTime: s.AverageResponseTime,
		},
	}
}

// ApplyProgress copies p onto the stored counters of s.
func ApplyProgress(s *dbEntity.Student, p httpEntity.Progress) {
	s.ExercisesCompleted = p.ExercisesCompleted
	s.CorrectAnswers = p.CorrectAnswers
	s.IncorrectAnswers = p.IncorrectAnswers
	s.AverageResponseTime = p.AverageResponseTime
}

func ToExercise(e *dbEntity.Exercise) (httpEntity.Exercise, error) {
	options, err := decodeOptions(e.Options)
	if err != nil {
		return httpEntity.Exercise{}, fmt.Errorf("options of exercise %s: %w", e.ExerciseID, err)
	}

	correct := e.CorrectAnswer
	return httpEntity.Exercise{
		ID:              e.ExerciseID,
		Type:            httpEntity.ExerciseType(e.Type),
		DifficultyLevel: httpEntity.DifficultyLevel(e.DifficultyLevel),
		Content:         e.Content,
		Options:         options,
		CorrectAnswer:   &correct,
		TimeLimit:       e.TimeLimit,
	}, nil
}

// FromTemplate instantiates a template as a new exercise with the given id.
func FromTemplate(tpl *dbEntity.ExerciseTemplate, exerciseID string) dbEntity.Exercise {
	return dbEntity.Exercise{
		ExerciseID:      exerciseID,
		TemplateID:      tpl.TemplateID,
		Type:            tpl.Type,
		DifficultyLevel: tpl.DifficultyLevel,
		Content:         tpl.Content,
		Options:         tpl.Options,
		CorrectAnswer:   tpl.CorrectAnswer,
		TimeLimit:       tpl.TimeLimit,
	}
}

// EncodeOptions stores options as a JSON array. No options is stored as "".
func EncodeOptions(options []string) (string, error) {
	if len(options) == 0 {
		return "", nil
	}
	b, err := json.Marshal(options)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeOptions(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var options []string
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		return nil, err
	}
	return options, nil
}
