package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/evandrarf/chiapas-puede/internal/delivery/http/entity"
	"github.com/sirupsen/logrus"
)

type State string

const (
	StateIdle       State = "idle"
	StateAnswering  State = "answering"
	StateSubmitting State = "submitting"
	StateEvaluated  State = "evaluated"
	StateFailed     State = "failed"
)

var (
	ErrNoActiveExercise   = errors.New("no active exercise")
	ErrNoStudent          = errors.New("no student selected")
	ErrAnswerMissing      = errors.New("answer is required")
	ErrSubmissionInFlight = errors.New("submission already in progress")
	ErrUnknownOption      = errors.New("option not offered by exercise")
)

const DefaultDismissDelay = time.Second

type FlowConfig struct {
	// DismissDelay is how long an answered exercise stays open. Zero closes it at once.
	DismissDelay time.Duration
	TickInterval time.Duration
	Now          func() time.Time
}

type FlowState struct {
	State          State  `json:"state"`
	ExerciseID     string `json:"exerciseId,omitempty"`
	Answer         string `json:"answer,omitempty"`
	SelectedOption string `json:"selectedOption,omitempty"`
	TimeRemaining  int    `json:"timeRemaining,omitempty"`
}

// AnswerFlow drives one exercise from presentation to evaluation. It ties
// the exercise and student stores together the way the exercise view does.
type AnswerFlow struct {
	students  *StudentStore
	exercises *ExerciseStore
	evaluator Evaluator
	log       *logrus.Logger
	cfg       FlowConfig

	mu    sync.Mutex
	state State
	// bumped by every Begin, Cancel and Close; stale callbacks compare against it
	attempt      uint64
	exercise     *entity.Exercise
	answer       string
	selected     string
	hasSelection bool
	startedAt    time.Time
	remaining    int

	submitting      bool
	timerSubmitting bool

	countdown *Countdown
	dismiss   *time.Timer

	// serializes writes to the exercise store; held outside mu
	publishMu sync.Mutex

	observers observers[FlowState]
}

func NewAnswerFlow(students *StudentStore, exercises *ExerciseStore, evaluator Evaluator, cfg FlowConfig, log *logrus.Logger) *AnswerFlow {
	if log == nil {
		log = logrus.New()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	return &AnswerFlow{
		students:  students,
		exercises: exercises,
		evaluator: evaluator,
		log:       log,
		cfg:       cfg,
		state:     StateIdle,
	}
}

func (f *AnswerFlow) Snapshot() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *AnswerFlow) snapshotLocked() FlowState {
	state := FlowState{
		State:         f.state,
		Answer:        f.answer,
		TimeRemaining: f.remaining,
	}
	if f.exercise != nil {
		state.ExerciseID = f.exercise.ID
	}
	if f.hasSelection {
		state.SelectedOption = f.selected
	}
	return state
}

func (f *AnswerFlow) Subscribe(fn func(FlowState)) func() {
	return f.observers.subscribe(fn)
}

func (f *AnswerFlow) stopTimersLocked() {
	f.countdown.Stop()
	f.countdown = nil
	if f.dismiss != nil {
		f.dismiss.Stop()
		f.dismiss = nil
	}
}

// Begin presents ex: it becomes the active exercise, the answer is reset,
// the response clock starts and, with a time limit, so does the countdown.
func (f *AnswerFlow) Begin(ex entity.Exercise) error {
	if ex.ID == "" {
		return fmt.Errorf("%w: empty id", ErrExerciseNotFound)
	}

	f.mu.Lock()
	if f.submitting || f.timerSubmitting {
		f.mu.Unlock()
		return ErrSubmissionInFlight
	}
	f.stopTimersLocked()
	f.attempt++
	attempt := f.attempt

	c := cloneExercise(ex)
	f.exercise = &c
	f.answer, f.selected, f.hasSelection = "", "", false
	f.startedAt = f.cfg.Now()
	f.remaining = c.TimeLimit
	f.state = StateAnswering

	if c.TimeLimit > 0 {
		f.countdown = StartCountdown(c.TimeLimit, f.cfg.TickInterval,
			func(remaining int) { f.tick(attempt, remaining) },
			func() { f.expire(attempt) },
		)
	}
	state := f.snapshotLocked()
	f.mu.Unlock()

	f.publishCurrent(attempt, &c)
	f.observers.notify(state)
	return nil
}

// publishCurrent hands ex to the exercise store unless a later Begin or
// Cancel has already moved the flow on.
func (f *AnswerFlow) publishCurrent(attempt uint64, ex *entity.Exercise) {
	f.publishMu.Lock()
	defer f.publishMu.Unlock()

	f.mu.Lock()
	current := f.attempt == attempt
	f.mu.Unlock()
	if !current {
		return
	}
	f.exercises.SetCurrentExercise(ex)
}

func (f *AnswerFlow) tick(attempt uint64, remaining int) {
	f.mu.Lock()
	if f.attempt != attempt || f.state != StateAnswering {
		f.mu.Unlock()
		return
	}
	f.remaining = remaining
	state := f.snapshotLocked()
	f.mu.Unlock()

	f.observers.notify(state)
}

func (f *AnswerFlow) expire(attempt uint64) {
	_, err := f.submit(context.Background(), true, attempt)
	switch {
	case err == nil:
	case errors.Is(err, ErrSubmissionInFlight), errors.Is(err, ErrNoActiveExercise):
		f.log.WithError(err).Debug("timeout ignored")
	default:
		f.log.WithError(err).Warn("timed out submission failed")
	}
}

func (f *AnswerFlow) SetAnswer(text string) error {
	f.mu.Lock()
	if f.state != StateAnswering || f.exercise == nil {
		f.mu.Unlock()
		return ErrNoActiveExercise
	}
	f.answer = text
	state := f.snapshotLocked()
	f.mu.Unlock()

	f.observers.notify(state)
	return nil
}

func (f *AnswerFlow) SelectOption(option string) error {
	f.mu.Lock()
	if f.state != StateAnswering || f.exercise == nil {
		f.mu.Unlock()
		return ErrNoActiveExercise
	}
	if !slices.Contains(f.exercise.Options, option) {
		f.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownOption, option)
	}
	f.selected, f.hasSelection = option, true
	state := f.snapshotLocked()
	f.mu.Unlock()

	f.observers.notify(state)
	return nil
}

func (f *AnswerFlow) answerLocked() string {
	if f.exercise.HasOptions() {
		return f.selected
	}
	return f.answer
}

func (f *AnswerFlow) answerPresentLocked() bool {
	if f.exercise.HasOptions() {
		return f.hasSelection
	}
	return strings.TrimSpace(f.answer) != ""
}

// Submit is the explicit submission. It needs an answer to be present.
func (f *AnswerFlow) Submit(ctx context.Context) (*entity.EvaluationResult, error) {
	return f.submit(ctx, false, 0)
}

// Timeout submits whatever has been answered so far, possibly nothing.
// The countdown calls it when it reaches zero.
func (f *AnswerFlow) Timeout(ctx context.Context) (*entity.EvaluationResult, error) {
	return f.submit(ctx, true, 0)
}

// submit evaluates the active exercise. want pins the attempt a timer was
// started for; zero accepts the current one.
func (f *AnswerFlow) submit(ctx context.Context, byTimer bool, want uint64) (*entity.EvaluationResult, error) {
	student := f.students.Snapshot().Current

	f.mu.Lock()
	if f.submitting || f.timerSubmitting {
		f.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	if f.state != StateAnswering || f.exercise == nil || (want != 0 && want != f.attempt) {
		f.mu.Unlock()
		return nil, ErrNoActiveExercise
	}
	if student == nil {
		f.mu.Unlock()
		return nil, ErrNoStudent
	}
	if !byTimer && !f.answerPresentLocked() {
		f.mu.Unlock()
		return nil, ErrAnswerMissing
	}

	if byTimer {
		f.timerSubmitting = true
	} else {
		f.submitting = true
	}
	f.countdown.Stop()
	f.countdown = nil

	ex := cloneExercise(*f.exercise)
	attempt := f.attempt
	now := f.cfg.Now()
	elapsed := max(now.Sub(f.startedAt), 0)
	resp := entity.StudentResponse{
		StudentID:      student.ID,
		ExerciseID:     ex.ID,
		Answer:         f.answerLocked(),
		ResponseTimeMs: elapsed.Milliseconds(),
		Timestamp:      now,
	}
	f.state = StateSubmitting
	state := f.snapshotLocked()
	f.mu.Unlock()
	f.observers.notify(state)

	result, err := f.evaluate(ctx, ex, resp)
	if err != nil {
		f.finish(attempt, StateFailed)
		return nil, err
	}

	// Stored even when the exercise was cancelled meanwhile.
	f.exercises.SetLastEvaluationResult(result)
	f.transition(attempt, StateEvaluated)

	done := &Completion{
		ExerciseID:     ex.ID,
		Submission:     attempt,
		IsCorrect:      result.IsCorrect,
		ResponseTimeMs: resp.ResponseTimeMs,
	}
	if err := f.students.RefreshProgress(ctx, student.ID, done); err != nil {
		f.log.WithError(err).WithField("student_id", student.ID).Warn("progress refresh after evaluation failed")
	}

	f.finish(attempt, StateEvaluated)
	return result, nil
}

func (f *AnswerFlow) evaluate(ctx context.Context, ex entity.Exercise, resp entity.StudentResponse) (*entity.EvaluationResult, error) {
	result, err := f.evaluator.EvaluateResponse(ctx, resp)
	if err == nil && result != nil {
		return withDefaultFeedback(result), nil
	}

	f.log.WithError(err).WithField("exercise_id", ex.ID).Warn("evaluation service unavailable, evaluating locally")
	local, err := EvaluateLocally(ex, resp)
	if err != nil {
		f.log.WithError(err).WithFields(logrus.Fields{
			"exercise_id": ex.ID,
			"student_id":  resp.StudentID,
		}).Error("answer cannot be evaluated: exercise data incomplete")
		return nil, err
	}
	return local, nil
}

func (f *AnswerFlow) transition(attempt uint64, to State) {
	f.mu.Lock()
	if f.attempt != attempt {
		f.mu.Unlock()
		return
	}
	f.state = to
	state := f.snapshotLocked()
	f.mu.Unlock()

	f.observers.notify(state)
}

// finish releases the submission guards and schedules the return to idle.
func (f *AnswerFlow) finish(attempt uint64, final State) {
	f.mu.Lock()
	f.submitting, f.timerSubmitting = false, false
	if f.attempt != attempt {
		f.mu.Unlock()
		return
	}
	f.state = final
	delay := f.cfg.DismissDelay
	if delay > 0 {
		f.dismiss = time.AfterFunc(delay, func() { f.toIdle(attempt) })
	}
	state := f.snapshotLocked()
	f.mu.Unlock()

	f.observers.notify(state)
	if delay <= 0 {
		f.toIdle(attempt)
	}
}

func (f *AnswerFlow) toIdle(attempt uint64) {
	f.mu.Lock()
	if f.attempt != attempt || (f.state != StateEvaluated && f.state != StateFailed) {
		f.mu.Unlock()
		return
	}
	f.dismiss = nil
	f.exercise = nil
	f.answer, f.selected, f.hasSelection = "", "", false
	f.remaining = 0
	f.state = StateIdle
	state := f.snapshotLocked()
	f.mu.Unlock()

	f.publishCurrent(attempt, nil)
	f.observers.notify(state)
}

// Cancel closes the active exercise without submitting. A submission
// already in flight runs to completion and its result is still stored.
func (f *AnswerFlow) Cancel() {
	f.mu.Lock()
	if f.exercise == nil {
		f.mu.Unlock()
		return
	}
	f.stopTimersLocked()
	f.attempt++
	attempt := f.attempt
	f.exercise = nil
	f.answer, f.selected, f.hasSelection = "", "", false
	f.remaining = 0
	f.state = StateIdle
	state := f.snapshotLocked()
	f.mu.Unlock()

	f.publishCurrent(attempt, nil)
	f.observers.notify(state)
}

// Close stops the countdown and any pending dismissal.
func (f *AnswerFlow) Close() {
	f.mu.Lock()
	f.stopTimersLocked()
	f.attempt++
	f.mu.Unlock()
}
