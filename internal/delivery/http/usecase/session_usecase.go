package usecase

import (
	"context"
	"fmt"

	"github.com/evandrarf/chiapas-puede/internal/delivery/http/entity"
	"github.com/evandrarf/chiapas-puede/internal/session"
	"github.com/sirupsen/logrus"
)

type SessionUsecase interface {
	Start(ctx context.Context)
	Snapshot() SessionSnapshot
	Login(ctx context.Context, studentID string) (*SessionSnapshot, error)
	Logout()
	LoadLevel(ctx context.Context, level entity.DifficultyLevel) (*SessionSnapshot, error)
	Begin(exerciseID string) (*SessionSnapshot, error)
	Answer(req entity.AnswerRequest) (*SessionSnapshot, error)
	Submit(ctx context.Context) (*entity.EvaluationResult, error)
	Cancel()
	DismissResult()
	Close()
}

type SessionSnapshot struct {
	Student  session.StudentState  `json:"student"`
	Exercise session.ExerciseState `json:"exercise"`
	Flow     session.FlowState     `json:"flow"`
}

type SessionConfig struct {
	Students  *session.StudentStore
	Exercises *session.ExerciseStore
	Flow      *session.AnswerFlow
	Log       *logrus.Logger
}

type sessionUsecase struct {
	cfg SessionConfig
}

func NewSessionUsecase(cfg SessionConfig) SessionUsecase {
	if cfg.Log == nil {
		cfg.Log = logrus.New()
	}
	return &sessionUsecase{cfg: cfg}
}

// Start loads the roster. A roster of one student logs that student in.
func (u *sessionUsecase) Start(ctx context.Context) {
	u.cfg.Students.LoadRoster(ctx)

	roster := u.cfg.Students.Snapshot().Students
	if len(roster) != 1 {
		return
	}
	if _, err := u.Login(ctx, roster[0].ID); err != nil {
		u.cfg.Log.WithError(err).WithField("student_id", roster[0].ID).Warn("automatic login failed")
	}
}

func (u *sessionUsecase) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		Student:  u.cfg.Students.Snapshot(),
		Exercise: u.cfg.Exercises.Snapshot(),
		Flow:     u.cfg.Flow.Snapshot(),
	}
}

func (u *sessionUsecase) snapshot() *SessionSnapshot {
	s := u.Snapshot()
	return &s
}

// Login refreshes the student's progress and makes them the active student.
// The first login also loads the exercises of the student's level.
func (u *sessionUsecase) Login(ctx context.Context, studentID string) (*SessionSnapshot, error) {
	if err := u.cfg.Students.RefreshProgress(ctx, studentID, nil); err != nil {
		u.cfg.Log.WithError(err).WithField("student_id", studentID).Warn("progress refresh before login failed")
	}
	if err := u.cfg.Students.SelectStudent(studentID); err != nil {
		return nil, err
	}

	current := u.cfg.Students.Snapshot().Current
	if u.cfg.Exercises.Snapshot().ViewedLevel == "" && current != nil && current.CurrentLevel.Valid() {
		if err := u.cfg.Exercises.LoadExercisesByLevel(ctx, current.CurrentLevel); err != nil {
			u.cfg.Log.WithError(err).WithField("level", current.CurrentLevel).Warn("initial exercise load failed")
		}
	}

	u.cfg.Log.WithField("student_id", studentID).Info("student logged in")
	return u.snapshot(), nil
}

func (u *sessionUsecase) Logout() {
	u.cfg.Flow.Cancel()
	u.cfg.Exercises.Reset()
	u.cfg.Students.SetCurrentStudent(nil)
}

func (u *sessionUsecase) LoadLevel(ctx context.Context, level entity.DifficultyLevel) (*SessionSnapshot, error) {
	if err := u.cfg.Exercises.LoadExercisesByLevel(ctx, level); err != nil {
		return nil, err
	}
	return u.snapshot(), nil
}

func (u *sessionUsecase) Begin(exerciseID string) (*SessionSnapshot, error) {
	if u.cfg.Students.Snapshot().Current == nil {
		return nil, session.ErrNoStudent
	}
	ex, err := u.cfg.Exercises.Exercise(exerciseID)
	if err != nil {
		return nil, err
	}
	if err := u.cfg.Flow.Begin(ex); err != nil {
		return nil, err
	}
	return u.snapshot(), nil
}

func (u *sessionUsecase) Answer(req entity.AnswerRequest) (*SessionSnapshot, error) {
	var err error
	switch {
	case req.Option != nil:
		err = u.cfg.Flow.SelectOption(*req.Option)
	case req.Answer != nil:
		err = u.cfg.Flow.SetAnswer(*req.Answer)
	default:
		err = fmt.Errorf("%w: answer or option", session.ErrAnswerMissing)
	}
	if err != nil {
		return nil, err
	}
	return u.snapshot(), nil
}

func (u *sessionUsecase) Submit(ctx context.Context) (*entity.EvaluationResult, error) {
	return u.cfg.Flow.Submit(ctx)
}

func (u *sessionUsecase) Cancel() {
	u.cfg.Flow.Cancel()
}

func (u *sessionUsecase) DismissResult() {
	u.cfg.Exercises.SetLastEvaluationResult(nil)
}

func (u *sessionUsecase) Close() {
	u.cfg.Flow.Close()
	u.cfg.Exercises.Close()
	u.cfg.Students.Close()
}
