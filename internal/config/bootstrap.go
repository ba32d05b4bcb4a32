package config

import (
	"github.com/evandrarf/chiapas-puede/internal/delivery/http/handler"
	"github.com/evandrarf/chiapas-puede/internal/delivery/http/middleware"
	"github.com/evandrarf/chiapas-puede/internal/delivery/http/repository"
	"github.com/evandrarf/chiapas-puede/internal/delivery/http/route"
	"github.com/evandrarf/chiapas-puede/internal/delivery/http/usecase"
	"github.com/evandrarf/chiapas-puede/internal/pkg/apiclient"
	"github.com/evandrarf/chiapas-puede/internal/pkg/validate"
	"github.com/evandrarf/chiapas-puede/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

type BootstrapConfig struct {
	Api       *fiber.App
	Config    *viper.Viper
	DB        *gorm.DB
	Log       *logrus.Logger
	Validator *validate.Validator
}

// Bootstrap mounts the reference backend on config.Api.
func Bootstrap(config *BootstrapConfig) {

	mid := middleware.NewMiddleware(&middleware.MiddlewareConfig{
		Log:    config.Log,
		Config: config.Config,
	})

	literacyRepo := repository.NewLiteracyRepository(config.DB)
	literacyUsecase := usecase.NewLiteracyUsecase(usecase.LiteracyConfig{
		DB:         config.DB,
		Repository: literacyRepo,
		Log:        config.Log,
	})
	literacyHandler := handler.NewLiteracyHandler(config.Validator, config.Log, literacyUsecase)

	route.Setup(&route.RouteConfig{
		Api:             config.Api,
		Middleware:      mid,
		LiteracyHandler: literacyHandler,
	})

}

// BootstrapSession mounts the learner session host on config.Api. The
// returned usecase owns the session and must be started and closed by the
// caller.
func BootstrapSession(config *BootstrapConfig) usecase.SessionUsecase {

	mid := middleware.NewMiddleware(&middleware.MiddlewareConfig{
		Log:    config.Log,
		Config: config.Config,
	})

	client := apiclient.NewClient(
		config.Config.GetString("backend.base_url"),
		config.Config.GetDuration("backend.timeout"),
		config.Log,
	)

	students := session.NewStudentStore(apiclient.NewStudentAPI(client), config.Log)
	exercises := session.NewExerciseStore(
		apiclient.NewExerciseAPI(client),
		config.Config.GetInt("session.generate_count"),
		config.Log,
	)
	flow := session.NewAnswerFlow(students, exercises, apiclient.NewEvaluationAPI(client), session.FlowConfig{
		DismissDelay: config.Config.GetDuration("session.dismiss_delay"),
		TickInterval: config.Config.GetDuration("session.tick_interval"),
	}, config.Log)

	sessionUsecase := usecase.NewSessionUsecase(usecase.SessionConfig{
		Students:  students,
		Exercises: exercises,
		Flow:      flow,
		Log:       config.Log,
	})
	sessionHandler := handler.NewSessionHandler(config.Validator, config.Log, sessionUsecase)

	route.Setup(&route.RouteConfig{
		Api:            config.Api,
		Middleware:     mid,
		SessionHandler: sessionHandler,
	})

	return sessionUsecase
}
