package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/evandrarf/chiapas-puede/internal/delivery/http/domain"
	"github.com/evandrarf/chiapas-puede/internal/delivery/http/entity"
	"github.com/evandrarf/chiapas-puede/internal/delivery/http/usecase"
	"github.com/evandrarf/chiapas-puede/internal/pkg/response"
	"github.com/evandrarf/chiapas-puede/internal/pkg/validate"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// LiteracyHandler serves the backend contract the session client consumes.
// Successful answers are the bare JSON documents the client decodes; failures
// use the response envelope.
type (
	LiteracyHandler interface {
		Students(ctx *fiber.Ctx) error
		Progression(ctx *fiber.Ctx) error
		Evaluations(ctx *fiber.Ctx) error
		ExercisesByLevel(ctx *fiber.Ctx) error
		Generate(ctx *fiber.Ctx) error
		Evaluate(ctx *fiber.Ctx) error
	}

	literacyHandler struct {
		validator *validate.Validator
		logger    *logrus.Logger
		usecase   usecase.LiteracyUsecase
	}
)

func NewLiteracyHandler(validator *validate.Validator, logger *logrus.Logger, usecase usecase.LiteracyUsecase) LiteracyHandler {
	return &literacyHandler{
		validator: validator,
		logger:    logger,
		usecase:   usecase,
	}
}

func literacyStatus(err error) int {
	switch {
	case errors.Is(err, usecase.ErrStudentNotFound), errors.Is(err, usecase.ErrExerciseNotFound), errors.Is(err, usecase.ErrNoTemplates):
		return fiber.StatusNotFound
	case errors.Is(err, usecase.ErrInvalidLevel):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *literacyHandler) fail(ctx *fiber.Ctx, msg string, err error) error {
	code := literacyStatus(err)
	if code >= fiber.StatusInternalServerError {
		return response.NewFailed(msg, err, h.logger).Send(ctx)
	}
	return response.NewFailed(msg, fiber.NewError(code, err.Error()), h.logger).Send(ctx)
}

// GET /students
func (h *literacyHandler) Students(ctx *fiber.Ctx) error {
	students, err := h.usecase.Students(ctx.UserContext())
	if err != nil {
		return h.fail(ctx, domain.STUDENT_LIST_FAILED, err)
	}
	return ctx.JSON(students)
}

// GET /progression/:id
func (h *literacyHandler) Progression(ctx *fiber.Ctx) error {
	student, err := h.usecase.Progression(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return h.fail(ctx, domain.STUDENT_PROGRESS_FAILED, err)
	}
	// an unknown student is answered with a JSON null
	return ctx.JSON(student)
}

// GET /students/:id/evaluations
func (h *literacyHandler) Evaluations(ctx *fiber.Ctx) error {
	evaluations, err := h.usecase.Evaluations(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return h.fail(ctx, domain.EVALUATION_HISTORY_FAILED, err)
	}
	return response.NewSuccess(domain.EVALUATION_HISTORY_SUCCESS, evaluations, nil).Send(ctx)
}

// GET /exercises/:level
func (h *literacyHandler) ExercisesByLevel(ctx *fiber.Ctx) error {
	level := entity.DifficultyLevel(strings.ToLower(ctx.Params("level")))

	exercises, err := h.usecase.ExercisesByLevel(ctx.UserContext(), level)
	if err != nil {
		return h.fail(ctx, domain.EXERCISE_LIST_FAILED, err)
	}
	return ctx.JSON(exercises)
}

// GET /exercises/generate/:level?count=5
func (h *literacyHandler) Generate(ctx *fiber.Ctx) error {
	level := entity.DifficultyLevel(strings.ToLower(ctx.Params("level")))

	count := 0
	if v := strings.TrimSpace(ctx.Query("count")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return response.NewFailed(domain.EXERCISE_GENERATE_FAILED, fiber.NewError(fiber.StatusBadRequest, "count must be a number"), h.logger).Send(ctx)
		}
		count = n
	}

	exercises, err := h.usecase.Generate(ctx.UserContext(), level, count)
	if err != nil {
		return h.fail(ctx, domain.EXERCISE_GENERATE_FAILED, err)
	}
	return ctx.JSON(exercises)
}

// POST /evaluation
func (h *literacyHandler) Evaluate(ctx *fiber.Ctx) error {
	var req entity.StudentResponse
	if err := h.validator.ParseAndValidate(ctx, &req); err != nil {
		return response.NewFailed(domain.EVALUATION_FAILED, requestError(err), h.logger).Send(ctx)
	}

	result, err := h.usecase.Evaluate(ctx.UserContext(), req)
	if err != nil {
		return h.fail(ctx, domain.EVALUATION_FAILED, err)
	}
	return ctx.JSON(result)
}
