package handlers

import (
	"encoding/json"
	"io"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"recipe-api/domain"
	"recipe-api/internal/api/presenters"
	"recipe-api/internal/middleware"
	"recipe-api/pkg/recipe"
)

type (
	RecipeHandler interface {
		GetRecipes(c *fiber.Ctx) error
		GetMyRecipes(c *fiber.Ctx) error
		GetRecipeDetail(c *fiber.Ctx) error
		CreateRecipe(c *fiber.Ctx) error
		UpdateRecipe(c *fiber.Ctx) error
	}

	recipeHandler struct {
		queries   recipe.QueryService
		mutations recipe.MutationService
		logger    *zap.Logger
	}
)

func NewRecipeHandler(queries recipe.QueryService, mutations recipe.MutationService, logger *zap.Logger) RecipeHandler {
	return &recipeHandler{
		queries:   queries,
		mutations: mutations,
		logger:    logger,
	}
}

func (h *recipeHandler) GetRecipes(c *fiber.Ctx) error {
	result, err := h.queries.Search(c.Context(), c.Query("search"), c.Query("label"))
	if err != nil {
		h.logger.Error("failed to search recipes", zap.Error(err))
		return presenters.ErrorResponse(c, domain.MessageFailedGetRecipes, err)
	}
	return presenters.SuccessResponse(c, result, fiber.StatusOK, domain.MessageSuccessGetRecipes)
}

func (h *recipeHandler) GetMyRecipes(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return presenters.ErrorResponse(c, domain.MessageFailedUnauthorized, domain.ErrNoCredentials)
	}

	result, err := h.queries.SearchMine(c.Context(), principal, c.Query("search"), c.Query("label"))
	if err != nil {
		h.logger.Error("failed to search own recipes", zap.Error(err))
		return presenters.ErrorResponse(c, domain.MessageFailedGetRecipes, err)
	}
	return presenters.SuccessResponse(c, result, fiber.StatusOK, domain.MessageSuccessGetRecipes)
}

func (h *recipeHandler) GetRecipeDetail(c *fiber.Ctx) error {
	found, err := h.queries.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return presenters.ErrorResponse(c, domain.MessageFailedGetRecipeDetail, err)
	}

	// The route is public; isAuthor only flips for an authenticated owner.
	isAuthor := false
	if principal, ok := middleware.PrincipalFrom(c); ok {
		isAuthor = principal.SubjectID == found.CreatorID
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"recipe":   found,
		"isAuthor": isAuthor,
	}, fiber.StatusOK, domain.MessageSuccessGetRecipeDetail)
}

func (h *recipeHandler) CreateRecipe(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return presenters.ErrorResponse(c, domain.MessageFailedUnauthorized, domain.ErrNoCredentials)
	}

	req, image, err := h.parseMutationPayload(c)
	if err != nil {
		return presenters.ErrorResponse(c, domain.MessageFailedBodyRequest, err)
	}

	created, err := h.mutations.Create(c.Context(), principal, req, image)
	if err != nil {
		h.logger.Error("failed to create recipe",
			zap.String("requestId", middleware.RequestIDFrom(c)),
			zap.String("userId", principal.SubjectID),
			zap.Error(err),
		)
		return presenters.ErrorResponse(c, domain.MessageFailedCreateRecipe, err)
	}
	return presenters.SuccessResponse(c, created, fiber.StatusCreated, domain.MessageSuccessCreateRecipe)
}

func (h *recipeHandler) UpdateRecipe(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return presenters.ErrorResponse(c, domain.MessageFailedUnauthorized, domain.ErrNoCredentials)
	}

	req, image, err := h.parseMutationPayload(c)
	if err != nil {
		return presenters.ErrorResponse(c, domain.MessageFailedBodyRequest, err)
	}

	updated, err := h.mutations.Update(c.Context(), principal, c.Params("id"), req, image)
	if err != nil {
		h.logger.Error("failed to update recipe",
			zap.String("requestId", middleware.RequestIDFrom(c)),
			zap.String("recipeId", c.Params("id")),
			zap.String("userId", principal.SubjectID),
			zap.Error(err),
		)
		return presenters.ErrorResponse(c, domain.MessageFailedUpdateRecipe, err)
	}
	return presenters.SuccessResponse(c, updated, fiber.StatusOK, domain.MessageSuccessUpdateRecipe)
}

// parseMutationPayload splits the multipart body into the JSON document and
// the image part. A missing image is not an error here; the mutation
// pipeline rejects it after schema validation so field errors surface first.
func (h *recipeHandler) parseMutationPayload(c *fiber.Ctx) (domain.CreateRecipeRequest, *domain.RecipeImage, error) {
	var req domain.CreateRecipeRequest
	if err := json.Unmarshal([]byte(c.FormValue("jsonData")), &req); err != nil {
		return req, nil, domain.NewValidationError(map[string]string{"jsonData": "must be a valid JSON document"})
	}

	header, err := c.FormFile("imageSrc")
	if err != nil {
		return req, nil, nil
	}

	file, err := header.Open()
	if err != nil {
		return req, nil, domain.NewValidationError(map[string]string{"imageSrc": "could not be read"})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return req, nil, domain.NewValidationError(map[string]string{"imageSrc": "could not be read"})
	}

	return req, &domain.RecipeImage{
		Data:             data,
		ContentType:      header.Header.Get("Content-Type"),
		OriginalFilename: header.Filename,
	}, nil
}
