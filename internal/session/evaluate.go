package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/evandrarf/chiapas-puede/internal/delivery/http/entity"
)

var ErrMissingCorrectAnswer = errors.New("exercise has no correct answer")

const (
	FeedbackCorrect          = "¡Respuesta correcta!"
	FeedbackCorrectDefault   = "¡Muy bien! Has respondido correctamente."
	FeedbackIncorrectDefault = "No te preocupes, sigue practicando para mejorar."
)

// NormalizeAnswer trims and case-folds an answer for comparison.
func NormalizeAnswer(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// EvaluateLocally grades resp against the exercise's correct answer. It is
// only used while the evaluation service is unreachable.
func EvaluateLocally(ex entity.Exercise, resp entity.StudentResponse) (*entity.EvaluationResult, error) {
	if ex.CorrectAnswer == nil || NormalizeAnswer(*ex.CorrectAnswer) == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingCorrectAnswer, ex.ID)
	}

	isCorrect := NormalizeAnswer(resp.Answer) == NormalizeAnswer(*ex.CorrectAnswer)
	feedback := FeedbackCorrect
	if !isCorrect {
		feedback = "La respuesta correcta era: " + *ex.CorrectAnswer
	}

	return &entity.EvaluationResult{
		StudentID:  resp.StudentID,
		ExerciseID: resp.ExerciseID,
		IsCorrect:  isCorrect,
		Feedback:   feedback,
	}, nil
}

func withDefaultFeedback(r *entity.EvaluationResult) *entity.EvaluationResult {
	if strings.TrimSpace(r.Feedback) != "" {
		return r
	}
	c := *r
	if c.IsCorrect {
		c.Feedback = FeedbackCorrectDefault
	} else {
		c.Feedback = FeedbackIncorrectDefault
	}
	return &c
}
