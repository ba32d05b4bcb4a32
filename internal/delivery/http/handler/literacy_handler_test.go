package handler_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/evandrarf/chiapas-puede/database"
	"github.com/evandrarf/chiapas-puede/internal/delivery/http/entity"
	"github.com/evandrarf/chiapas-puede/internal/delivery/http/handler"
	"github.com/evandrarf/chiapas-puede/internal/delivery/http/middleware"
	"github.com/evandrarf/chiapas-puede/internal/delivery/http/repository"
	"github.com/evandrarf/chiapas-puede/internal/delivery/http/route"
	"github.com/evandrarf/chiapas-puede/internal/delivery/http/usecase"
	"github.com/evandrarf/chiapas-puede/internal/pkg/apiclient"
	"github.com/evandrarf/chiapas-puede/internal/pkg/validate"
	"github.com/evandrarf/chiapas-puede/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
)

func newBackendApp(t *testing.T) *fiber.App {
	t.Helper()
	log := quietLogger()

	config := viper.New()
	config.Set("database.driver", "sqlite")
	config.Set("database.sqlite.path", "file:"+strings.ReplaceAll(t.Name(), "/", "_")+"?mode=memory&cache=shared")

	db := database.New(config)
	if err := database.Migrate(db); err != nil {
		t.Fatal(err)
	}
	if err := database.SeedExerciseBank(db, log); err != nil {
		t.Fatal(err)
	}
	if err := database.SeedStudents(db, log); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	uc := usecase.NewLiteracyUsecase(usecase.LiteracyConfig{
		DB:         db,
		Repository: repository.NewLiteracyRepository(db),
		Log:        log,
	})

	app := fiber.New()
	route.Setup(&route.RouteConfig{
		Api:             app,
		Middleware:      middleware.NewMiddleware(nil),
		LiteracyHandler: handler.NewLiteracyHandler(validate.NewValidator(), log, uc),
	})
	return app
}

func send(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	var raw json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return res.StatusCode, raw
}

func TestBackendRoutes(t *testing.T) {
	app := newBackendApp(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
		check  func(t *testing.T, raw []byte)
	}{
		{
			name: "students", method: http.MethodGet, path: "/students", want: fiber.StatusOK,
			check: func(t *testing.T, raw []byte) {
				var students []entity.Student
				if err := json.Unmarshal(raw, &students); err != nil || len(students) != 2 {
					t.Errorf("students = %s (%v)", raw, err)
				}
			},
		},
		{
			name: "known progression", method: http.MethodGet, path: "/progression/est-001", want: fiber.StatusOK,
			check: func(t *testing.T, raw []byte) {
				var s entity.Student
				if err := json.Unmarshal(raw, &s); err != nil || s.ID != "est-001" || s.Progress == nil {
					t.Errorf("progression = %s (%v)", raw, err)
				}
			},
		},
		{
			name: "unknown progression is null", method: http.MethodGet, path: "/progression/nobody", want: fiber.StatusOK,
			check: func(t *testing.T, raw []byte) {
				if string(raw) != "null" {
					t.Errorf("body = %s, want null", raw)
				}
			},
		},
		{
			name: "no exercises yet", method: http.MethodGet, path: "/exercises/advanced", want: fiber.StatusOK,
			check: func(t *testing.T, raw []byte) {
				if string(raw) != "[]" {
					t.Errorf("body = %s, want []", raw)
				}
			},
		},
		{name: "invalid level", method: http.MethodGet, path: "/exercises/expert", want: fiber.StatusBadRequest},
		{name: "invalid count", method: http.MethodGet, path: "/exercises/generate/beginner?count=many", want: fiber.StatusBadRequest},
		{
			name: "generate", method: http.MethodGet, path: "/exercises/generate/advanced?count=4", want: fiber.StatusOK,
			check: func(t *testing.T, raw []byte) {
				var exercises []entity.Exercise
				if err := json.Unmarshal(raw, &exercises); err != nil || len(exercises) != 4 {
					t.Errorf("generated = %s (%v)", raw, err)
				}
			},
		},
		{name: "evaluation without ids", method: http.MethodPost, path: "/evaluation", body: `{"answer":"A"}`, want: fiber.StatusBadRequest},
		{name: "evaluation of unknown exercise", method: http.MethodPost, path: "/evaluation", body: `{"studentId":"est-001","exerciseId":"missing","answer":"A"}`, want: fiber.StatusNotFound},
		{name: "evaluation history", method: http.MethodGet, path: "/students/est-001/evaluations", want: fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, raw := send(t, app, tt.method, tt.path, tt.body)
			if code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", code, tt.want, raw)
			}
			if tt.check != nil {
				tt.check(t, raw)
			}
		})
	}
}

// TestSessionAgainstBackend runs the session client over HTTP against the
// reference backend.
func TestSessionAgainstBackend(t *testing.T) {
	app := newBackendApp(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	log := quietLogger()
	client := apiclient.NewClient("http://"+ln.Addr().String(), 5*time.Second, log)
	students := session.NewStudentStore(apiclient.NewStudentAPI(client), log)
	exercises := session.NewExerciseStore(apiclient.NewExerciseAPI(client), 3, log)
	flow := session.NewAnswerFlow(students, exercises, apiclient.NewEvaluationAPI(client), session.FlowConfig{}, log)
	uc := usecase.NewSessionUsecase(usecase.SessionConfig{Students: students, Exercises: exercises, Flow: flow, Log: log})
	t.Cleanup(uc.Close)

	ctx := context.Background()
	uc.Start(ctx)
	if got := len(students.Snapshot().Students); got != 2 {
		t.Fatalf("roster = %d students, want 2", got)
	}

	snap, err := uc.Login(ctx, "est-001")
	if err != nil {
		t.Fatal(err)
	}
	// the bank starts empty, so the login load generated the exercises
	if got := len(snap.Exercise.Exercises); got != 3 {
		t.Fatalf("exercises = %d, want 3 generated", got)
	}

	ex := snap.Exercise.Exercises[0]
	if _, err := uc.Begin(ex.ID); err != nil {
		t.Fatal(err)
	}
	req := entity.AnswerRequest{Answer: ex.CorrectAnswer}
	if ex.HasOptions() {
		req = entity.AnswerRequest{Option: ex.CorrectAnswer}
	}
	if _, err := uc.Answer(req); err != nil {
		t.Fatal(err)
	}

	result, err := uc.Submit(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsCorrect || result.SuggestedNextExerciseType == nil {
		t.Errorf("result = %+v, want a correct remote evaluation", result)
	}

	current := students.Snapshot().Current
	if current.Progress.ExercisesCompleted != 1 || current.Progress.CorrectAnswers != 1 {
		t.Errorf("progress = %+v, want the backend's updated counters", current.Progress)
	}
}
