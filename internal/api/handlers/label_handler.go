package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"recipe-api/domain"
	"recipe-api/internal/api/presenters"
	"recipe-api/pkg/recipe"
)

type (
	LabelHandler interface {
		GetLabels(c *fiber.Ctx) error
		GetPopularLabels(c *fiber.Ctx) error
		GetMeasurements(c *fiber.Ctx) error
	}

	labelHandler struct {
		queries recipe.QueryService
		logger  *zap.Logger
	}
)

func NewLabelHandler(queries recipe.QueryService, logger *zap.Logger) LabelHandler {
	return &labelHandler{queries: queries, logger: logger}
}

func (h *labelHandler) GetLabels(c *fiber.Ctx) error {
	facets, err := h.queries.Labels(c.Context())
	if err != nil {
		h.logger.Error("failed to aggregate labels", zap.Error(err))
		return presenters.ErrorResponse(c, domain.MessageFailedGetLabels, err)
	}
	return presenters.SuccessResponse(c, facets, fiber.StatusOK, domain.MessageSuccessGetLabels)
}

func (h *labelHandler) GetPopularLabels(c *fiber.Ctx) error {
	labels, err := h.queries.PopularLabels(c.Context())
	if err != nil {
		h.logger.Error("failed to aggregate popular labels", zap.Error(err))
		return presenters.ErrorResponse(c, domain.MessageFailedGetLabels, err)
	}
	return presenters.SuccessResponse(c, labels, fiber.StatusOK, domain.MessageSuccessGetLabels)
}

func (h *labelHandler) GetMeasurements(c *fiber.Ctx) error {
	measurements, err := h.queries.Measurements(c.Context())
	if err != nil {
		h.logger.Error("failed to aggregate measurements", zap.Error(err))
		return presenters.ErrorResponse(c, domain.MessageFailedGetMeasurements, err)
	}
	return presenters.SuccessResponse(c, measurements, fiber.StatusOK, domain.MessageSuccessGetMeasurements)
}
