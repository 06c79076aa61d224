// Package handler provides HTTP handlers for the API.
package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"social-search-service/internal/app/service"
	"social-search-service/internal/domain"
	"social-search-service/internal/transport/httpserver/dto"
	"social-search-service/internal/validator"
)

// requesterHeader carries the authenticated user id, set by the gateway
// in front of this service.
const requesterHeader = "X-User-ID"

// SearchHandler handles search-related HTTP requests.
type SearchHandler struct {
	service   *service.SearchService
	validator *validator.Validator
	logger    *zap.Logger
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(svc *service.SearchService, v *validator.Validator, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		service:   svc,
		validator: v,
		logger:    logger,
	}
}

// Search handles GET /api/v1/search
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	requesterID, err := parseRequesterID(c)
	if err != nil {
		return badRequest(c, err.Error(), "MISSING_REQUESTER")
	}

	var req dto.SearchRequest
	if err := c.QueryParser(&req); err != nil {
		return badRequest(c, "invalid query parameters", "INVALID_PARAMS")
	}
	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	filter, err := req.ToFilter(requesterID)
	if err != nil {
		return h.domainError(c, err)
	}

	result, err := h.service.Search(c.Context(), filter)
	if err != nil {
		return h.domainError(c, err)
	}

	return c.JSON(dto.Success(dto.FromSearchResult(result)))
}

// Suggest handles GET /api/v1/search/suggest
func (h *SearchHandler) Suggest(c *fiber.Ctx) error {
	requesterID, err := parseRequesterID(c)
	if err != nil {
		return badRequest(c, err.Error(), "MISSING_REQUESTER")
	}

	var req dto.SuggestRequest
	if err := c.QueryParser(&req); err != nil {
		return badRequest(c, "invalid query parameters", "INVALID_PARAMS")
	}
	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	titles, err := h.service.Suggest(c.Context(), requesterID, req.Prefix, req.Limit)
	if err != nil {
		return h.domainError(c, err)
	}

	return c.JSON(dto.Success(dto.SuggestResponse{Suggestions: titles}))
}

// PopularTags handles GET /api/v1/search/tags
func (h *SearchHandler) PopularTags(c *fiber.Ctx) error {
	requesterID, err := parseRequesterID(c)
	if err != nil {
		return badRequest(c, err.Error(), "MISSING_REQUESTER")
	}

	var req dto.TagsRequest
	if err := c.QueryParser(&req); err != nil {
		return badRequest(c, "invalid query parameters", "INVALID_PARAMS")
	}
	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	tags, err := h.service.PopularTags(c.Context(), requesterID, req.Limit)
	if err != nil {
		return h.domainError(c, err)
	}

	return c.JSON(dto.Success(dto.TagsResponse{Tags: tags}))
}

// Trending handles GET /api/v1/search/trending
func (h *SearchHandler) Trending(c *fiber.Ctx) error {
	var req dto.TrendingRequest
	if err := c.QueryParser(&req); err != nil {
		return badRequest(c, "invalid query parameters", "INVALID_PARAMS")
	}
	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	queries, err := h.service.Trending(c.Context(), req.Limit)
	if err != nil {
		return h.domainError(c, err)
	}

	return c.JSON(dto.Success(dto.FromTrendingQueries(queries)))
}

// domainError maps a domain error kind to an HTTP status. Non-domain
// errors become opaque 500s so backend internals never leak to clients.
func (h *SearchHandler) domainError(c *fiber.Ctx, err error) error {
	kind := domain.KindOf(err)
	if kind == "" {
		h.logger.Error("search request failed",
			zap.String("path", c.Path()),
			zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "internal server error",
			Code:  "INTERNAL_ERROR",
		})
	}

	status := dto.StatusForKind(kind)
	if status >= fiber.StatusInternalServerError {
		h.logger.Error("search request failed",
			zap.String("path", c.Path()),
			zap.String("kind", string(kind)),
			zap.Error(err))
	}

	// Clients get the stable message, never the wrapped cause.
	message := err.Error()
	if de, ok := err.(*domain.Error); ok {
		message = de.Message
	}

	return c.Status(status).JSON(dto.ErrorResponse{
		Error: message,
		Code:  string(kind),
	})
}

func parseRequesterID(c *fiber.Ctx) (int64, error) {
	raw := c.Get(requesterHeader)
	if raw == "" {
		return 0, domain.NewValidationError("%s header is required", requesterHeader)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("%s must be a positive integer", requesterHeader)
	}

	return id, nil
}

func badRequest(c *fiber.Ctx, message, code string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
