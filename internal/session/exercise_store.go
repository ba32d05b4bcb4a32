package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/evandrarf/chiapas-puede/internal/delivery/http/entity"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnknownLevel     = errors.New("unknown difficulty level")
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrClosed           = errors.New("session closed")
)

const DefaultGenerateCount = 5

type ExerciseState struct {
	Exercises   []entity.Exercise        `json:"exercises"`
	Current     *entity.Exercise         `json:"currentExercise"`
	LastResult  *entity.EvaluationResult `json:"lastEvaluationResult"`
	ViewedLevel entity.DifficultyLevel   `json:"viewedLevel,omitempty"`
	Loading     bool                     `json:"loadingExercises"`
}

// ExerciseStore owns the exercise list, the active exercise and the last
// evaluation result.
type ExerciseStore struct {
	dir           ExerciseDirectory
	log           *logrus.Logger
	generateCount int

	mu          sync.RWMutex
	exercises   []entity.Exercise
	current     *entity.Exercise
	lastResult  *entity.EvaluationResult
	viewedLevel entity.DifficultyLevel
	loading     bool
	closed      bool
	// generation of the latest LoadExercisesByLevel call
	generation uint64

	observers observers[ExerciseState]
}

func NewExerciseStore(dir ExerciseDirectory, generateCount int, log *logrus.Logger) *ExerciseStore {
	if log == nil {
		log = logrus.New()
	}
	if generateCount <= 0 {
		generateCount = DefaultGenerateCount
	}
	return &ExerciseStore{
		dir:           dir,
		log:           log,
		generateCount: generateCount,
		exercises:     []entity.Exercise{},
	}
}

func (s *ExerciseStore) Snapshot() ExerciseState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *ExerciseStore) snapshotLocked() ExerciseState {
	state := ExerciseState{
		Exercises:   cloneExercises(s.exercises),
		ViewedLevel: s.viewedLevel,
		Loading:     s.loading,
	}
	if s.current != nil {
		c := cloneExercise(*s.current)
		state.Current = &c
	}
	if s.lastResult != nil {
		r := *s.lastResult
		state.LastResult = &r
	}
	return state
}

func (s *ExerciseStore) Subscribe(fn func(ExerciseState)) func() {
	return s.observers.subscribe(fn)
}

func (s *ExerciseStore) mutate(fn func() bool) bool {
	s.mu.Lock()
	if s.closed || !fn() {
		s.mu.Unlock()
		return false
	}
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.observers.notify(state)
	return true
}

// LoadExercisesByLevel replaces the exercise list with the exercises of level.
//
// An empty answer from the backend triggers one generation request and one
// re-fetch. Any error on the way falls back to the built-in demo set. A load
// that has been superseded by a newer call leaves the state untouched.
func (s *ExerciseStore) LoadExercisesByLevel(ctx context.Context, level entity.DifficultyLevel) error {
	if !level.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownLevel, level)
	}

	var gen uint64
	if !s.mutate(func() bool {
		s.generation++
		gen = s.generation
		s.viewedLevel = level
		s.loading = true
		return true
	}) {
		return ErrClosed
	}

	exercises, err := s.fetch(ctx, level)
	if err != nil {
		s.log.WithError(err).WithField("level", level).Warn("exercises unavailable, using demo exercises")
		exercises = s.clean(level, DemoExercises(level))
	}

	applied := s.mutate(func() bool {
		if gen != s.generation {
			return false
		}
		s.exercises = exercises
		s.loading = false
		return true
	})
	if !applied {
		s.log.WithFields(logrus.Fields{"level": level, "generation": gen}).Debug("stale exercise response discarded")
	}
	return nil
}

func (s *ExerciseStore) fetch(ctx context.Context, level entity.DifficultyLevel) ([]entity.Exercise, error) {
	raw, err := s.dir.ExercisesByLevel(ctx, level)
	if err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		return s.clean(level, raw), nil
	}

	s.log.WithField("level", level).Info("no exercises for level, requesting generation")
	if err := s.dir.GenerateExercises(ctx, level, s.generateCount); err != nil {
		s.log.WithError(err).WithField("level", level).Warn("exercise generation failed")
	}

	raw, err = s.dir.ExercisesByLevel(ctx, level)
	if err != nil {
		return nil, err
	}
	return s.clean(level, raw), nil
}

func (s *ExerciseStore) clean(level entity.DifficultyLevel, raw []entity.Exercise) []entity.Exercise {
	kept, dropped := DropMissingIDs(raw)
	if dropped > 0 {
		s.log.WithFields(logrus.Fields{"level": level, "dropped": dropped}).Warn("exercises without id discarded")
	}
	unique, duplicates := DedupeByID(kept)
	if duplicates > 0 {
		s.log.WithFields(logrus.Fields{"level": level, "duplicates": duplicates}).Warn("duplicate exercise ids collapsed")
	}
	return cloneExercises(unique)
}

// Exercise looks up an exercise of the loaded list.
func (s *ExerciseStore) Exercise(id string) (entity.Exercise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ex := range s.exercises {
		if ex.ID == id {
			return cloneExercise(ex), nil
		}
	}
	return entity.Exercise{}, fmt.Errorf("%w: %s", ErrExerciseNotFound, id)
}

// SetCurrentExercise replaces the active exercise. nil dismisses it.
func (s *ExerciseStore) SetCurrentExercise(ex *entity.Exercise) {
	s.mutate(func() bool {
		if ex == nil {
			s.current = nil
			return true
		}
		c := cloneExercise(*ex)
		s.current = &c
		return true
	})
}

// SetLastEvaluationResult replaces the evaluation result. nil dismisses it.
func (s *ExerciseStore) SetLastEvaluationResult(result *entity.EvaluationResult) {
	s.mutate(func() bool {
		if result == nil {
			s.lastResult = nil
			return true
		}
		r := *result
		s.lastResult = &r
		return true
	})
}

// Reset forgets everything loaded for the previous student. In-flight loads
// are superseded.
func (s *ExerciseStore) Reset() {
	s.mutate(func() bool {
		s.generation++
		s.exercises = []entity.Exercise{}
		s.current = nil
		s.lastResult = nil
		s.viewedLevel = ""
		s.loading = false
		return true
	})
}

func (s *ExerciseStore) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
