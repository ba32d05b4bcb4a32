package apiclient

import (
	"context"
	"fmt"
	"net/url"

	"github.com/evandrarf/chiapas-puede/internal/delivery/http/entity"
	"github.com/sirupsen/logrus"
)

type ExerciseAPI struct {
	*Client
}

func NewExerciseAPI(c *Client) *ExerciseAPI {
	return &ExerciseAPI{Client: c}
}

// GET /exercises/:level
func (a *ExerciseAPI) ExercisesByLevel(ctx context.Context, level entity.DifficultyLevel) ([]entity.Exercise, error) {
	body, err := a.get(ctx, "/exercises/"+url.PathEscape(string(level)))
	if err != nil {
		a.log.WithError(err).WithField("level", level).Warn("exercise list request failed")
		return nil, err
	}

	var exercises []entity.Exercise
	if _, err := decode(body, &exercises); err != nil {
		a.log.WithError(err).WithField("level", level).Warn("exercise list response malformed")
		return nil, err
	}
	return exercises, nil
}

// GET /exercises/generate/:level?count=N
func (a *ExerciseAPI) GenerateExercises(ctx context.Context, level entity.DifficultyLevel, count int) error {
	if count <= 0 {
		count = 5
	}

	path := fmt.Sprintf("/exercises/generate/%s?count=%d", url.PathEscape(string(level)), count)
	if _, err := a.get(ctx, path); err != nil {
		a.log.WithError(err).WithFields(logrus.Fields{"level": level, "count": count}).Warn("exercise generation request failed")
		return err
	}
	return nil
}
