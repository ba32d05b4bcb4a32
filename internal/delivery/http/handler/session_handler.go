package handler

import (
	"errors"
	"strings"

	"github.com/evandrarf/chiapas-puede/internal/delivery/http/domain"
	"github.com/evandrarf/chiapas-puede/internal/delivery/http/entity"
	"github.com/evandrarf/chiapas-puede/internal/delivery/http/usecase"
	"github.com/evandrarf/chiapas-puede/internal/pkg/response"
	"github.com/evandrarf/chiapas-puede/internal/pkg/validate"
	"github.com/evandrarf/chiapas-puede/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type (
	SessionHandler interface {
		Get(ctx *fiber.Ctx) error
		Login(ctx *fiber.Ctx) error
		Logout(ctx *fiber.Ctx) error
		LoadLevel(ctx *fiber.Ctx) error
		Begin(ctx *fiber.Ctx) error
		Answer(ctx *fiber.Ctx) error
		Submit(ctx *fiber.Ctx) error
		Cancel(ctx *fiber.Ctx) error
		DismissResult(ctx *fiber.Ctx) error
	}

	sessionHandler struct {
		validator *validate.Validator
		logger    *logrus.Logger
		usecase   usecase.SessionUsecase
	}
)

func NewSessionHandler(validator *validate.Validator, logger *logrus.Logger, usecase usecase.SessionUsecase) SessionHandler {
	return &sessionHandler{
		validator: validator,
		logger:    logger,
		usecase:   usecase,
	}
}

func sessionStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrStudentNotFound), errors.Is(err, session.ErrExerciseNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, session.ErrSubmissionInFlight),
		errors.Is(err, session.ErrNoActiveExercise),
		errors.Is(err, session.ErrNoStudent),
		errors.Is(err, session.ErrClosed):
		return fiber.StatusConflict
	case errors.Is(err, session.ErrMissingCorrectAnswer):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusBadRequest
	}
}

// requestError keeps per-field validation messages and turns anything
// else the body parser reports into a 400.
func requestError(err error) error {
	var fields *validate.FieldsError
	if errors.As(err, &fields) {
		return fields
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe
	}
	return fiber.NewError(fiber.StatusBadRequest, err.Error())
}

// GET /session
func (h *sessionHandler) Get(ctx *fiber.Ctx) error {
	return response.NewSuccess(domain.SESSION_GET_SUCCESS, h.usecase.Snapshot(), nil).Send(ctx)
}

// POST /session/login
func (h *sessionHandler) Login(ctx *fiber.Ctx) error {
	var req entity.LoginRequest
	if err := h.validator.ParseAndValidate(ctx, &req); err != nil {
		return response.NewFailed(domain.SESSION_LOGIN_FAILED, requestError(err), h.logger).Send(ctx)
	}

	snapshot, err := h.usecase.Login(ctx.UserContext(), strings.TrimSpace(req.StudentID))
	if err != nil {
		return response.NewFailed(domain.SESSION_LOGIN_FAILED, fiber.NewError(sessionStatus(err), err.Error()), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.SESSION_LOGIN_SUCCESS, snapshot, nil).Send(ctx)
}

// DELETE /session/login
func (h *sessionHandler) Logout(ctx *fiber.Ctx) error {
	h.usecase.Logout()
	return response.NewSuccess(domain.SESSION_LOGOUT_SUCCESS, h.usecase.Snapshot(), nil).Send(ctx)
}

// POST /session/exercises/:level
func (h *sessionHandler) LoadLevel(ctx *fiber.Ctx) error {
	level := entity.DifficultyLevel(strings.ToLower(ctx.Params("level")))

	snapshot, err := h.usecase.LoadLevel(ctx.UserContext(), level)
	if err != nil {
		return response.NewFailed(domain.SESSION_LOAD_LEVEL_FAILED, fiber.NewError(sessionStatus(err), err.Error()), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.SESSION_LOAD_LEVEL_SUCCESS, snapshot, nil).Send(ctx)
}

// POST /session/exercise/:id
func (h *sessionHandler) Begin(ctx *fiber.Ctx) error {
	snapshot, err := h.usecase.Begin(ctx.Params("id"))
	if err != nil {
		return response.NewFailed(domain.SESSION_BEGIN_FAILED, fiber.NewError(sessionStatus(err), err.Error()), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.SESSION_BEGIN_SUCCESS, snapshot, nil).Send(ctx)
}

// PUT /session/answer
func (h *sessionHandler) Answer(ctx *fiber.Ctx) error {
	var req entity.AnswerRequest
	if err := h.validator.ParseAndValidate(ctx, &req); err != nil {
		return response.NewFailed(domain.SESSION_ANSWER_FAILED, requestError(err), h.logger).Send(ctx)
	}

	snapshot, err := h.usecase.Answer(req)
	if err != nil {
		return response.NewFailed(domain.SESSION_ANSWER_FAILED, fiber.NewError(sessionStatus(err), err.Error()), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.SESSION_ANSWER_SUCCESS, snapshot, nil).Send(ctx)
}

// POST /session/submit
func (h *sessionHandler) Submit(ctx *fiber.Ctx) error {
	result, err := h.usecase.Submit(ctx.UserContext())
	if err != nil {
		return response.NewFailed(domain.SESSION_SUBMIT_FAILED, fiber.NewError(sessionStatus(err), err.Error()), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.SESSION_SUBMIT_SUCCESS, result, nil).Send(ctx)
}

// DELETE /session/exercise
func (h *sessionHandler) Cancel(ctx *fiber.Ctx) error {
	h.usecase.Cancel()
	return response.NewSuccess(domain.SESSION_CANCEL_SUCCESS, h.usecase.Snapshot(), nil).Send(ctx)
}

// DELETE /session/result
func (h *sessionHandler) DismissResult(ctx *fiber.Ctx) error {
	h.usecase.DismissResult()
	return response.NewSuccess(domain.SESSION_DISMISS_SUCCESS, h.usecase.Snapshot(), nil).Send(ctx)
}
