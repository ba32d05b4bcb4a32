package apiclient

import (
	"context"
	"fmt"

	"github.com/evandrarf/chiapas-puede/internal/delivery/http/entity"
)

type EvaluationAPI struct {
	*Client
}

func NewEvaluationAPI(c *Client) *EvaluationAPI {
	return &EvaluationAPI{Client: c}
}

// POST /evaluation
func (a *EvaluationAPI) EvaluateResponse(ctx context.Context, resp entity.StudentResponse) (*entity.EvaluationResult, error) {
	body, err := a.post(ctx, "/evaluation", resp)
	if err != nil {
		a.log.WithError(err).WithField("exercise_id", resp.ExerciseID).Warn("evaluation request failed")
		return nil, err
	}

	var result entity.EvaluationResult
	found, err := decode(body, &result)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: empty evaluation for exercise %s", ErrBackendUnavailable, resp.ExerciseID)
	}
	return &result, nil
}
