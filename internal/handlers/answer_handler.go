package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/RostislavDaniliv/eddy-school/internal/repositories"
	"github.com/RostislavDaniliv/eddy-school/internal/services"
)

// Answerer runs the answering pipeline; *services.AnswerService implements it.
type Answerer interface {
	Answer(ctx context.Context, req *services.AnswerRequest) (*services.AnswerResponse, error)
}

type AnswerHandler struct {
	svc Answerer
}

func NewAnswerHandler(svc Answerer) *AnswerHandler {
	return &AnswerHandler{svc: svc}
}

// Answer godoc
// @Summary Answer a user question
// @Description Runs the question through FAQ matching, document retrieval and the tenant's LLM, then delivers the response through the tenant's messaging channel
// @Tags Answering
// @Accept json
// @Produce json
// @Param request body services.AnswerRequest true "Question payload"
// @Success 200 {object} services.AnswerResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/1.0/answering_gpt/ [post]
func (h *AnswerHandler) Answer(c *fiber.Ctx) error {
	var req services.AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	resp, err := h.svc.Answer(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingAPIKey):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, repositories.ErrBusinessUnitNotFound),
			errors.Is(err, services.ErrInactiveBusinessUnit):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to process question",
			})
		}
	}

	return c.JSON(resp)
}
