package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/evandrarf/chiapas-puede/internal/delivery/http/entity"
)

type flowFixture struct {
	students  *StudentStore
	exercises *ExerciseStore
	evaluator *fakeEvaluator
	dir       *fakeStudents
	flow      *AnswerFlow

	mu     sync.Mutex
	states []State
}

func newFlowFixture(t *testing.T, cfg FlowConfig) *flowFixture {
	t.Helper()

	fx := &flowFixture{
		dir:       &fakeStudents{roster: []entity.Student{{ID: "s1", Name: "Ana", CurrentLevel: entity.LevelBeginner}}},
		evaluator: &fakeEvaluator{},
	}
	fx.students = NewStudentStore(fx.dir, quietLogger())
	fx.exercises = NewExerciseStore(&fakeExercises{}, 5, quietLogger())
	fx.flow = NewAnswerFlow(fx.students, fx.exercises, fx.evaluator, cfg, quietLogger())

	fx.students.LoadRoster(context.Background())
	if err := fx.students.SelectStudent("s1"); err != nil {
		t.Fatal(err)
	}

	fx.flow.Subscribe(func(s FlowState) {
		fx.mu.Lock()
		defer fx.mu.Unlock()
		if n := len(fx.states); n == 0 || fx.states[n-1] != s.State {
			fx.states = append(fx.states, s.State)
		}
	})
	t.Cleanup(fx.flow.Close)
	return fx
}

func (fx *flowFixture) transitions() []State {
	fx.mu.Lock()
	defer fx.mu.Unlock()
	return append([]State(nil), fx.states...)
}

func freeText(id, correct string) entity.Exercise {
	ex := exercise(id)
	ex.Type = entity.TypeSyllableFormation
	ex.CorrectAnswer = &correct
	return ex
}

func TestSubmitFallsBackToLocalEvaluation(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		correct bool
	}{
		{name: "exact answer", answer: "MA", correct: true},
		{name: "case and whitespace tolerant", answer: " ma ", correct: true},
		{name: "wrong answer", answer: "PA", correct: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFlowFixture(t, FlowConfig{})
			if err := fx.flow.Begin(freeText("ex-ma", "MA")); err != nil {
				t.Fatal(err)
			}
			if err := fx.flow.SetAnswer(tt.answer); err != nil {
				t.Fatal(err)
			}

			result, err := fx.flow.Submit(context.Background())
			if err != nil {
				t.Fatalf("Submit error = %v", err)
			}
			if result.IsCorrect != tt.correct {
				t.Errorf("IsCorrect = %v, want %v", result.IsCorrect, tt.correct)
			}
			if result.StudentID != "s1" || result.ExerciseID != "ex-ma" {
				t.Errorf("result ids = %q/%q, want s1/ex-ma", result.StudentID, result.ExerciseID)
			}

			want := []State{StateAnswering, StateSubmitting, StateEvaluated, StateIdle}
			if got := fx.transitions(); !equalStates(got, want) {
				t.Errorf("transitions = %v, want %v", got, want)
			}

			state := fx.exercises.Snapshot()
			if state.Current != nil {
				t.Error("active exercise not cleared after evaluation")
			}
			if state.LastResult == nil || state.LastResult.IsCorrect != tt.correct {
				t.Errorf("LastResult = %+v, want stored result", state.LastResult)
			}
		})
	}
}

func TestTimeoutSubmitsEmptyOptionAnswer(t *testing.T) {
	fx := newFlowFixture(t, FlowConfig{})

	ex := exercise("ex-opt")
	ex.Options = []string{"A", "E", "I"}
	correct := "A"
	ex.CorrectAnswer = &correct
	if err := fx.flow.Begin(ex); err != nil {
		t.Fatal(err)
	}

	if _, err := fx.flow.Submit(context.Background()); !errors.Is(err, ErrAnswerMissing) {
		t.Fatalf("Submit without selection error = %v, want ErrAnswerMissing", err)
	}

	var sent entity.StudentResponse
	fx.evaluator.fn = func(resp entity.StudentResponse) (*entity.EvaluationResult, error) {
		sent = resp
		return nil, errUnreachable
	}
	result, err := fx.flow.Timeout(context.Background())
	if err != nil {
		t.Fatalf("Timeout error = %v", err)
	}
	if sent.Answer != "" {
		t.Errorf("submitted answer = %q, want empty", sent.Answer)
	}
	if result.IsCorrect {
		t.Error("empty timed out answer evaluated as correct")
	}
}

func TestCountdownExpiryTriggersSubmission(t *testing.T) {
	fx := newFlowFixture(t, FlowConfig{TickInterval: 5 * time.Millisecond})

	results := make(chan *entity.EvaluationResult, 1)
	fx.exercises.Subscribe(func(s ExerciseState) {
		if s.LastResult != nil {
			select {
			case results <- s.LastResult:
			default:
			}
		}
	})

	ex := freeText("ex-timed", "MA")
	ex.TimeLimit = 2
	if err := fx.flow.Begin(ex); err != nil {
		t.Fatal(err)
	}

	select {
	case r := <-results:
		if r.IsCorrect {
			t.Error("timed out blank answer evaluated as correct")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("countdown expiry did not submit")
	}
	if n := fx.evaluator.callCount(); n != 1 {
		t.Errorf("evaluation calls = %d, want 1", n)
	}
}

func TestDoubleSubmitIsSuppressed(t *testing.T) {
	fx := newFlowFixture(t, FlowConfig{})

	release := make(chan struct{})
	fx.evaluator.fn = func(resp entity.StudentResponse) (*entity.EvaluationResult, error) {
		<-release
		return &entity.EvaluationResult{StudentID: resp.StudentID, ExerciseID: resp.ExerciseID, IsCorrect: true}, nil
	}

	submitting := make(chan struct{})
	var once sync.Once
	fx.flow.Subscribe(func(s FlowState) {
		if s.State == StateSubmitting {
			once.Do(func() { close(submitting) })
		}
	})

	if err := fx.flow.Begin(freeText("ex-ma", "MA")); err != nil {
		t.Fatal(err)
	}
	if err := fx.flow.SetAnswer("MA"); err != nil {
		t.Fatal(err)
	}

	errs := make(chan error, 1)
	go func() {
		_, err := fx.flow.Submit(context.Background())
		errs <- err
	}()
	<-submitting

	if _, err := fx.flow.Submit(context.Background()); !errors.Is(err, ErrSubmissionInFlight) {
		t.Errorf("second Submit error = %v, want ErrSubmissionInFlight", err)
	}
	if _, err := fx.flow.Timeout(context.Background()); !errors.Is(err, ErrSubmissionInFlight) {
		t.Errorf("Timeout during submission error = %v, want ErrSubmissionInFlight", err)
	}

	close(release)
	if err := <-errs; err != nil {
		t.Fatalf("first Submit error = %v", err)
	}
	if n := fx.evaluator.callCount(); n != 1 {
		t.Errorf("evaluation calls = %d, want 1", n)
	}
}

func TestSubmitWithoutCorrectAnswerFails(t *testing.T) {
	fx := newFlowFixture(t, FlowConfig{})

	if err := fx.flow.Begin(exercise("ex-broken")); err != nil {
		t.Fatal(err)
	}
	if err := fx.flow.SetAnswer("A"); err != nil {
		t.Fatal(err)
	}

	if _, err := fx.flow.Submit(context.Background()); !errors.Is(err, ErrMissingCorrectAnswer) {
		t.Fatalf("Submit error = %v, want ErrMissingCorrectAnswer", err)
	}

	want := []State{StateAnswering, StateSubmitting, StateFailed, StateIdle}
	if got := fx.transitions(); !equalStates(got, want) {
		t.Errorf("transitions = %v, want %v", got, want)
	}
	if fx.exercises.Snapshot().LastResult != nil {
		t.Error("a result was stored for an exercise that could not be evaluated")
	}
}

func TestSubmitUsesRemoteEvaluationAndRefreshesProgress(t *testing.T) {
	fx := newFlowFixture(t, FlowConfig{})
	fx.evaluator.fn = func(resp entity.StudentResponse) (*entity.EvaluationResult, error) {
		return &entity.EvaluationResult{StudentID: resp.StudentID, ExerciseID: resp.ExerciseID, IsCorrect: true}, nil
	}
	fx.dir.progress = map[string]*entity.Student{
		"s1": {ID: "s1", Name: "Ana", Progress: &entity.Progress{ExercisesCompleted: 7, CorrectAnswers: 6, IncorrectAnswers: 1}},
	}

	if err := fx.flow.Begin(freeText("ex-ma", "MA")); err != nil {
		t.Fatal(err)
	}
	if err := fx.flow.SetAnswer("MA"); err != nil {
		t.Fatal(err)
	}

	result, err := fx.flow.Submit(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Feedback != FeedbackCorrectDefault {
		t.Errorf("Feedback = %q, want default feedback", result.Feedback)
	}
	if fx.dir.progressCalls != 1 {
		t.Errorf("progress refreshes = %d, want 1", fx.dir.progressCalls)
	}
	if got := fx.students.Snapshot().Current.Progress.ExercisesCompleted; got != 7 {
		t.Errorf("ExercisesCompleted = %d, want 7 from the backend", got)
	}
}

func TestRefreshFailureKeepsEvaluation(t *testing.T) {
	fx := newFlowFixture(t, FlowConfig{})
	fx.dir.progressErr = errUnreachable

	if err := fx.flow.Begin(freeText("ex-ma", "MA")); err != nil {
		t.Fatal(err)
	}
	_ = fx.flow.SetAnswer("MA")

	if _, err := fx.flow.Submit(context.Background()); err != nil {
		t.Fatalf("Submit error = %v", err)
	}
	if r := fx.exercises.Snapshot().LastResult; r == nil || !r.IsCorrect {
		t.Errorf("LastResult = %+v, want kept correct result", r)
	}
}

func TestCancel(t *testing.T) {
	fx := newFlowFixture(t, FlowConfig{})

	ex := freeText("ex-ma", "MA")
	ex.TimeLimit = 30
	if err := fx.flow.Begin(ex); err != nil {
		t.Fatal(err)
	}
	fx.flow.Cancel()

	if fx.exercises.Snapshot().Current != nil {
		t.Error("active exercise not cleared by cancel")
	}
	if s := fx.flow.Snapshot(); s.State != StateIdle {
		t.Errorf("State = %q, want idle", s.State)
	}
	if _, err := fx.flow.Submit(context.Background()); !errors.Is(err, ErrNoActiveExercise) {
		t.Errorf("Submit after cancel error = %v, want ErrNoActiveExercise", err)
	}
	if n := fx.evaluator.callCount(); n != 0 {
		t.Errorf("evaluation calls = %d, want 0", n)
	}
}

func TestStalePublishLeavesNewerExercise(t *testing.T) {
	fx := newFlowFixture(t, FlowConfig{})

	if err := fx.flow.Begin(freeText("ex-1", "MA")); err != nil {
		t.Fatal(err)
	}
	fx.flow.mu.Lock()
	stale := fx.flow.attempt
	fx.flow.mu.Unlock()

	if err := fx.flow.Begin(freeText("ex-2", "PA")); err != nil {
		t.Fatal(err)
	}
	// a dismissal or cancel from the first exercise landing late
	fx.flow.publishCurrent(stale, nil)

	if cur := fx.exercises.Snapshot().Current; cur == nil || cur.ID != "ex-2" {
		t.Errorf("Current = %+v, want ex-2", cur)
	}
}

func TestConcurrentBeginAndCancelAgree(t *testing.T) {
	fx := newFlowFixture(t, FlowConfig{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = fx.flow.Begin(freeText("ex-ma", "MA"))
		}()
		go func() {
			defer wg.Done()
			fx.flow.Cancel()
		}()
	}
	wg.Wait()

	flow := fx.flow.Snapshot()
	cur := fx.exercises.Snapshot().Current
	switch flow.State {
	case StateAnswering:
		if cur == nil || cur.ID != flow.ExerciseID {
			t.Errorf("flow answering %q but store holds %+v", flow.ExerciseID, cur)
		}
	case StateIdle:
		if cur != nil {
			t.Errorf("flow idle but store holds %q", cur.ID)
		}
	default:
		t.Errorf("State = %q, want answering or idle", flow.State)
	}
}

func TestAnsweringSameExerciseTwiceCountsBoth(t *testing.T) {
	fx := newFlowFixture(t, FlowConfig{})

	for i := 0; i < 2; i++ {
		if err := fx.flow.Begin(freeText("ex-ma", "MA")); err != nil {
			t.Fatal(err)
		}
		if err := fx.flow.SetAnswer("MA"); err != nil {
			t.Fatal(err)
		}
		if _, err := fx.flow.Submit(context.Background()); err != nil {
			t.Fatalf("Submit #%d error = %v", i+1, err)
		}
	}

	p := fx.students.Snapshot().Current.Progress
	if p.ExercisesCompleted != 2 || p.CorrectAnswers != 2 {
		t.Errorf("Progress = %+v, want two correct completions", *p)
	}
}

func TestDismissDelayKeepsExerciseOpen(t *testing.T) {
	fx := newFlowFixture(t, FlowConfig{DismissDelay: 20 * time.Millisecond})

	if err := fx.flow.Begin(freeText("ex-ma", "MA")); err != nil {
		t.Fatal(err)
	}
	_ = fx.flow.SetAnswer("ma")
	if _, err := fx.flow.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}

	if fx.exercises.Snapshot().Current == nil {
		t.Fatal("exercise closed before the dismiss delay")
	}

	deadline := time.Now().Add(2 * time.Second)
	for fx.flow.Snapshot().State != StateIdle {
		if time.Now().After(deadline) {
			t.Fatal("flow did not return to idle")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if fx.exercises.Snapshot().Current != nil {
		t.Error("exercise still active after the dismiss delay")
	}
	if fx.exercises.Snapshot().LastResult == nil {
		t.Error("result dismissed together with the exercise")
	}
}

func TestResponseTimeIsMeasured(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	fx := newFlowFixture(t, FlowConfig{Now: clock})

	var sent entity.StudentResponse
	fx.evaluator.fn = func(resp entity.StudentResponse) (*entity.EvaluationResult, error) {
		sent = resp
		return &entity.EvaluationResult{IsCorrect: true, Feedback: "bien"}, nil
	}

	if err := fx.flow.Begin(freeText("ex-ma", "MA")); err != nil {
		t.Fatal(err)
	}
	mu.Lock()
	now = now.Add(2500 * time.Millisecond)
	mu.Unlock()
	_ = fx.flow.SetAnswer("MA")
	if _, err := fx.flow.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}

	if sent.ResponseTimeMs != 2500 {
		t.Errorf("ResponseTimeMs = %d, want 2500", sent.ResponseTimeMs)
	}
}

func TestSelectOptionRejectsUnknownOption(t *testing.T) {
	fx := newFlowFixture(t, FlowConfig{})

	ex := exercise("ex-opt")
	ex.Options = []string{"A", "E"}
	if err := fx.flow.Begin(ex); err != nil {
		t.Fatal(err)
	}
	if err := fx.flow.SelectOption("Z"); !errors.Is(err, ErrUnknownOption) {
		t.Errorf("SelectOption(Z) error = %v, want ErrUnknownOption", err)
	}
	if err := fx.flow.SelectOption("E"); err != nil {
		t.Errorf("SelectOption(E) error = %v", err)
	}
	if s := fx.flow.Snapshot(); s.SelectedOption != "E" {
		t.Errorf("SelectedOption = %q, want E", s.SelectedOption)
	}
}

func equalStates(a, b []State) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
