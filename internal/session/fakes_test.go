package session

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/evandrarf/chiapas-puede/internal/delivery/http/entity"
	"github.com/sirupsen/logrus"
)

var errUnreachable = errors.New("dial tcp: connection refused")

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeStudents struct {
	mu            sync.Mutex
	roster        []entity.Student
	rosterErr     error
	rosterGate    chan struct{}
	progress      map[string]*entity.Student
	progressErr   error
	progressCalls int
}

func (f *fakeStudents) Students(ctx context.Context) ([]entity.Student, error) {
	if f.rosterGate != nil {
		<-f.rosterGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roster, f.rosterErr
}

func (f *fakeStudents) StudentProgress(ctx context.Context, studentID string) (*entity.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progressCalls++
	if f.progressErr != nil {
		return nil, f.progressErr
	}
	return f.progress[studentID], nil
}

type fakeExercises struct {
	mu             sync.Mutex
	fetch          func(call int, level entity.DifficultyLevel) ([]entity.Exercise, error)
	generateErr    error
	fetchCalls     int
	generateCounts []int
}

func (f *fakeExercises) ExercisesByLevel(ctx context.Context, level entity.DifficultyLevel) ([]entity.Exercise, error) {
	f.mu.Lock()
	f.fetchCalls++
	call := f.fetchCalls
	fetch := f.fetch
	f.mu.Unlock()
	return fetch(call, level)
}

func (f *fakeExercises) GenerateExercises(ctx context.Context, level entity.DifficultyLevel, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generateCounts = append(f.generateCounts, count)
	return f.generateErr
}

func (f *fakeExercises) counts() (fetches, generates int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls, len(f.generateCounts)
}

type fakeEvaluator struct {
	mu    sync.Mutex
	calls int
	fn    func(resp entity.StudentResponse) (*entity.EvaluationResult, error)
}

func (f *fakeEvaluator) EvaluateResponse(ctx context.Context, resp entity.StudentResponse) (*entity.EvaluationResult, error) {
	f.mu.Lock()
	f.calls++
	fn := f.fn
	f.mu.Unlock()
	if fn == nil {
		return nil, errUnreachable
	}
	return fn(resp)
}

func (f *fakeEvaluator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func exercise(id string) entity.Exercise {
	return entity.Exercise{
		ID:              id,
		Type:            entity.TypeLetterRecognition,
		DifficultyLevel: entity.LevelBeginner,
		Content:         "¿Qué letra es esta? " + id,
	}
}

func ids(exercises []entity.Exercise) []string {
	out := make([]string, len(exercises))
	for i, ex := range exercises {
		out[i] = ex.ID
	}
	return out
}
