package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"social-search-service/internal/app/service"
	"social-search-service/internal/transport/httpserver/dto"
	"social-search-service/internal/validator"
)

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	service   *service.SearchService
	validator *validator.Validator
	logger    *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc *service.SearchService, v *validator.Validator, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		service:   svc,
		validator: v,
		logger:    logger,
	}
}

// InvalidateCache handles POST /api/v1/admin/cache/invalidate
//
// An empty body or a body without requester_id flushes the entire result
// cache; with requester_id only that user's entries are evicted.
func (h *AdminHandler) InvalidateCache(c *fiber.Ctx) error {
	var req dto.InvalidateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body", "INVALID_BODY")
		}
		if err := h.validator.Validate(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error:   "validation failed",
				Code:    "VALIDATION_ERROR",
				Details: err,
			})
		}
	}

	if req.RequesterID != nil {
		h.logger.Info("cache invalidation triggered",
			zap.Int64("requester_id", *req.RequesterID))
	} else {
		h.logger.Info("full cache flush triggered")
	}

	if err := h.service.InvalidateCache(c.Context(), req.RequesterID); err != nil {
		h.logger.Error("cache invalidation failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "cache invalidation failed",
			Code:  "INVALIDATION_FAILED",
		})
	}

	scope := "all"
	if req.RequesterID != nil {
		scope = "requester"
	}

	return c.JSON(dto.Success(dto.InvalidateResponse{Scope: scope}))
}
