package apiclient

import (
	"context"
	"net/url"

	"github.com/evandrarf/chiapas-puede/internal/delivery/http/entity"
)

type StudentAPI struct {
	*Client
}

func NewStudentAPI(c *Client) *StudentAPI {
	return &StudentAPI{Client: c}
}

// GET /students
func (a *StudentAPI) Students(ctx context.Context) ([]entity.Student, error) {
	body, err := a.get(ctx, "/students")
	if err != nil {
		a.log.WithError(err).Warn("student list request failed")
		return nil, err
	}

	var students []entity.Student
	if _, err := decode(body, &students); err != nil {
		a.log.WithError(err).Warn("student list response malformed")
		return nil, err
	}
	return students, nil
}

// GET /progression/:id
//
// A successful answer without a usable record (null body, missing id)
// returns nil, nil.
func (a *StudentAPI) StudentProgress(ctx context.Context, studentID string) (*entity.Student, error) {
	body, err := a.get(ctx, "/progression/"+url.PathEscape(studentID))
	if err != nil {
		a.log.WithError(err).WithField("student_id", studentID).Warn("progress request failed")
		return nil, err
	}

	var student entity.Student
	found, err := decode(body, &student)
	if err != nil {
		a.log.WithError(err).WithField("student_id", studentID).Warn("progress response malformed")
		return nil, err
	}
	if !found || student.ID == "" {
		return nil, nil
	}
	return &student, nil
}
