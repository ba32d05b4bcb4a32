package config

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

func TestNewViperDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BACKEND_BASE_URL", "http://backend:9000")

	config := NewViper()

	if got := config.GetString("backend.base_url"); got != "http://backend:9000" {
		t.Errorf("backend.base_url = %q, want value from the environment", got)
	}
	if got := config.GetDuration("session.dismiss_delay"); got != time.Second {
		t.Errorf("session.dismiss_delay = %v, want 1s", got)
	}
	if got := config.GetInt("session.generate_count"); got != 5 {
		t.Errorf("session.generate_count = %d, want 5", got)
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level     string
		format    string
		wantLevel logrus.Level
		wantJSON  bool
	}{
		{level: "debug", format: "json", wantLevel: logrus.DebugLevel, wantJSON: true},
		{level: "warn", format: "text", wantLevel: logrus.WarnLevel},
		{level: "loud", format: "", wantLevel: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			config := viper.New()
			config.Set("log.level", tt.level)
			config.Set("log.format", tt.format)

			log := NewLogger(config)
			if log.GetLevel() != tt.wantLevel {
				t.Errorf("level = %v, want %v", log.GetLevel(), tt.wantLevel)
			}
			if _, isJSON := log.Formatter.(*logrus.JSONFormatter); isJSON != tt.wantJSON {
				t.Errorf("json formatter = %v, want %v", isJSON, tt.wantJSON)
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	config := viper.New()
	api := NewAPI(config, log)
	api.Get("/missing", func(ctx *fiber.Ctx) error { return fiber.ErrNotFound })
	api.Get("/broken", func(ctx *fiber.Ctx) error { return io.ErrUnexpectedEOF })

	tests := []struct {
		path string
		want int
	}{
		{path: "/missing", want: fiber.StatusNotFound},
		{path: "/broken", want: fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		res, err := api.Test(httptest.NewRequest(http.MethodGet, tt.path, nil), -1)
		if err != nil {
			t.Fatal(err)
		}
		var body struct {
			Success bool `json:"success"`
		}
		_ = json.NewDecoder(res.Body).Decode(&body)
		res.Body.Close()

		if res.StatusCode != tt.want || body.Success {
			t.Errorf("%s: status = %d success = %v, want %d and false", tt.path, res.StatusCode, body.Success, tt.want)
		}
	}
}
