package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/evandrarf/chiapas-puede/internal/delivery/http/entity"
	"github.com/sirupsen/logrus"
)

var ErrStudentNotFound = errors.New("student not found")

type StudentState struct {
	Current  *entity.Student  `json:"currentStudent"`
	Students []entity.Student `json:"students"`
	Loading  bool             `json:"loadingStudents"`
}

// Completion is the signal that an exercise was answered and evaluated.
// It is the only thing that allows a local progress increment. Submission
// identifies the answer: two answers to one exercise carry different values.
type Completion struct {
	ExerciseID     string
	Submission     uint64
	IsCorrect      bool
	ResponseTimeMs int64
}

type completionKey struct {
	exerciseID string
	submission uint64
}

// StudentStore owns the roster and the active student.
type StudentStore struct {
	dir StudentDirectory
	log *logrus.Logger

	mu       sync.RWMutex
	current  *entity.Student
	students []entity.Student
	loading  bool
	closed   bool
	// last completion applied locally, per student
	applied map[string]completionKey

	observers observers[StudentState]
}

func NewStudentStore(dir StudentDirectory, log *logrus.Logger) *StudentStore {
	if log == nil {
		log = logrus.New()
	}
	return &StudentStore{
		dir:      dir,
		log:      log,
		students: []entity.Student{},
		applied:  make(map[string]completionKey),
	}
}

func (s *StudentStore) Snapshot() StudentState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *StudentStore) snapshotLocked() StudentState {
	state := StudentState{
		Students: cloneStudents(s.students),
		Loading:  s.loading,
	}
	if s.current != nil {
		c := cloneStudent(*s.current)
		state.Current = &c
	}
	return state
}

// Subscribe registers fn for every state change. The returned func unsubscribes.
func (s *StudentStore) Subscribe(fn func(StudentState)) func() {
	return s.observers.subscribe(fn)
}

// mutate runs fn under the lock and notifies observers when fn reports a
// change. Nothing is applied once the store is closed.
func (s *StudentStore) mutate(fn func() bool) bool {
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

// LoadRoster fetches the roster. The learner is never left without a
// selectable student: an empty or failed fetch stores the demo student.
func (s *StudentStore) LoadRoster(ctx context.Context) {
	if !s.mutate(func() bool {
		s.loading = true
		return true
	}) {
		return
	}

	fetched, err := s.dir.Students(ctx)

	roster := make([]entity.Student, 0, len(fetched))
	for _, st := range fetched {
		roster = append(roster, BackfillProgress(st))
	}

	switch {
	case err != nil:
		s.log.WithError(err).Warn("roster unavailable, using demo student")
		roster = []entity.Student{DemoStudent()}
	case len(roster) == 0:
		s.log.Warn("roster empty, using demo student")
		roster = []entity.Student{DemoStudent()}
	}

	applied := s.mutate(func() bool {
		s.students = roster
		s.loading = false
		return true
	})
	if !applied {
		s.log.Debug("roster response arrived after close, discarded")
	}
}

// SelectStudent makes the roster entry with id the active student.
func (s *StudentStore) SelectStudent(id string) error {
	found := false
	s.mutate(func() bool {
		for _, st := range s.students {
			if st.ID == id {
				c := cloneStudent(st)
				s.current = &c
				found = true
				return true
			}
		}
		return false
	})
	if !found {
		return fmt.Errorf("%w: %s", ErrStudentNotFound, id)
	}
	return nil
}

// SetCurrentStudent replaces the active student. nil returns to the login state.
func (s *StudentStore) SetCurrentStudent(student *entity.Student) {
	s.mutate(func() bool {
		if student == nil {
			s.current = nil
			return true
		}
		c := cloneStudent(*student)
		s.current = &c
		return true
	})
}

// RefreshProgress reloads a student's progress from the backend.
//
// A returned record replaces the roster entry and, when it is the active
// student, the active student. When the backend has no record the state is
// left alone unless done carries a completion not applied before, in which
// case the active student's counters are advanced locally. Replaying the
// same completion is a no-op; another submission of the same exercise counts. Transport errors
// leave the state unchanged and are returned.
func (s *StudentStore) RefreshProgress(ctx context.Context, studentID string, done *Completion) error {
	updated, err := s.dir.StudentProgress(ctx, studentID)
	if err != nil {
		return fmt.Errorf("refresh progress of %s: %w", studentID, err)
	}

	if updated != nil {
		record := BackfillProgress(*updated)
		s.mutate(func() bool {
			for i := range s.students {
				if s.students[i].ID == studentID {
					s.students[i] = cloneStudent(record)
				}
			}
			if s.current != nil && s.current.ID == studentID {
				c := cloneStudent(record)
				s.current = &c
			}
			return true
		})
		return nil
	}

	if done == nil || done.ExerciseID == "" {
		s.log.WithField("student_id", studentID).Debug("no progress record and no completion, state unchanged")
		return nil
	}

	s.mutate(func() bool {
		if s.current == nil || s.current.ID != studentID {
			return false
		}
		key := completionKey{exerciseID: done.ExerciseID, submission: done.Submission}
		if last, ok := s.applied[studentID]; ok && last == key {
			s.log.WithFields(logrus.Fields{
				"exercise_id": done.ExerciseID,
				"submission":  done.Submission,
			}).Debug("completion already applied")
			return false
		}
		s.applied[studentID] = key

		progress := s.current.Progress.WithCompletion(done.IsCorrect, done.ResponseTimeMs)
		c := cloneStudent(*s.current)
		c.Progress = &progress
		s.current = &c
		for i := range s.students {
			if s.students[i].ID == studentID {
				s.students[i] = cloneStudent(c)
			}
		}
		s.log.WithFields(logrus.Fields{
			"student_id":  studentID,
			"exercise_id": done.ExerciseID,
		}).Info("progress advanced locally")
		return true
	})
	return nil
}

// Close discards every response that arrives afterwards.
func (s *StudentStore) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
