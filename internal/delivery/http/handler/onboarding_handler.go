package handler

import (
	"errors"

	"careerconnect/internal/delivery/http/middleware"
	"careerconnect/internal/domain/onboarding/form"
	"careerconnect/internal/infrastructure/upstream"
	"careerconnect/internal/pkg/response"
	"careerconnect/internal/pkg/session"
	"careerconnect/internal/usecase/onboarding"

	"github.com/gofiber/fiber/v3"
)

type OnboardingHandler struct {
	sessions *onboarding.Manager
}

func NewOnboardingHandler(sessions *onboarding.Manager) *OnboardingHandler {
	return &OnboardingHandler{sessions: sessions}
}

type setFieldsRequest struct {
	Fields map[string]any `json:"fields"`
}

func (h *OnboardingHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/onboarding/sessions")
	grp.Post("/", h.Open)
	grp.Get("/:id", h.Get)
	grp.Patch("/:id/fields", h.SetFields)
	grp.Post("/:id/advance", h.Advance)
	grp.Post("/:id/retreat", h.Retreat)
	grp.Post("/:id/submit", h.Submit)
	grp.Delete("/:id", h.Close)
}

func (h *OnboardingHandler) Open(c fiber.Ctx) error {
	id := onboarding.Identity{UserID: middleware.UserID(c), Role: middleware.Role(c)}
	v, err := h.sessions.Open(c.Context(), id, middleware.Credentials(c))
	if err != nil {
		return onboardingError(c, v, err)
	}
	return response.Success(c, fiber.StatusCreated, "Onboarding session opened", v)
}

func (h *OnboardingHandler) Get(c fiber.Ctx) error {
	v, err := h.sessions.Get(c.Context(), middleware.UserID(c), c.Params("id"), middleware.Credentials(c))
	if err != nil {
		return onboardingError(c, v, err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, v)
}

func (h *OnboardingHandler) SetFields(c fiber.Ctx) error {
	var req setFieldsRequest
	if err := c.Bind().Body(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, response.MessageBadRequest, nil)
	}

	v, err := h.sessions.SetFields(c.Context(), middleware.UserID(c), c.Params("id"), req.Fields)
	if err != nil {
		return onboardingError(c, v, err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, v)
}

func (h *OnboardingHandler) Advance(c fiber.Ctx) error {
	v, err := h.sessions.Advance(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return onboardingError(c, v, err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, v)
}

func (h *OnboardingHandler) Retreat(c fiber.Ctx) error {
	v, err := h.sessions.Retreat(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return onboardingError(c, v, err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, v)
}

func (h *OnboardingHandler) Submit(c fiber.Ctx) error {
	creds := middleware.Credentials(c)
	v, err := h.sessions.Submit(c.Context(), middleware.UserID(c), c.Params("id"), creds)
	session.Store(c, creds, 0)
	if err != nil {
		return onboardingError(c, v, err)
	}
	return response.Success(c, fiber.StatusOK, "Onboarding submitted", v)
}

func (h *OnboardingHandler) Close(c fiber.Ctx) error {
	if err := h.sessions.Close(c.Context(), middleware.UserID(c), c.Params("id")); err != nil {
		return onboardingError(c, onboarding.View{}, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func onboardingError(c fiber.Ctx, v onboarding.View, err error) error {
	var verr *form.ValidationError
	switch {
	case errors.As(err, &verr):
		return response.Error(c, fiber.StatusUnprocessableEntity, "Validation failed", verr.Fields)
	case errors.Is(err, onboarding.ErrSessionNotFound):
		return response.Error(c, fiber.StatusNotFound, "Onboarding session not found", nil)
	case errors.Is(err, onboarding.ErrNoFormVariant):
		return response.Error(c, fiber.StatusUnprocessableEntity, "No onboarding flow for this role", nil)
	case errors.Is(err, form.ErrUnknownField), errors.Is(err, form.ErrInvalidValue):
		return response.Error(c, fiber.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, form.ErrFirstStep), errors.Is(err, form.ErrLastStep),
		errors.Is(err, form.ErrNotFinalStep), errors.Is(err, form.ErrSubmitted):
		return response.Error(c, fiber.StatusConflict, err.Error(), v)
	case upstream.IsAuth(err):
		return response.Error(c, fiber.StatusUnauthorized, middleware.MessageAuthRequired, nil)
	case upstream.IsTransport(err) || upstream.StatusOf(err) > 0:
		return response.Error(c, fiber.StatusBadGateway, "Onboarding could not be saved, please retry", v)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, "", nil, err)
	}
}
