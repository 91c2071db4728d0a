package routes

import (
	"github.com/gofiber/fiber/v2"

	"recipe-api/domain"
	"recipe-api/internal/api/handlers"
	"recipe-api/internal/middleware"
)

type Config struct {
	App           *fiber.App
	RecipeHandler handlers.RecipeHandler
	LabelHandler  handlers.LabelHandler
	AuthHandler   handlers.AuthHandler
	Middleware    middleware.Middleware
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORS())
	c.App.Use(c.Middleware.RequestID())

	c.SetupRecipeRoute()
	c.SetupLabelRoute()
	c.SetupAuthRoute()
}

func (c *Config) SetupRecipeRoute() {
	recipes := c.App.Group("/api/v1/recipes")
	recipes.Get("", c.RecipeHandler.GetRecipes)
	recipes.Get("/mine", c.Middleware.Authenticated(), c.RecipeHandler.GetMyRecipes)
	recipes.Get("/:id", c.Middleware.MaybeAuthenticated(), c.RecipeHandler.GetRecipeDetail)
	recipes.Post("", c.Middleware.Authenticated(), c.RecipeHandler.CreateRecipe)
	recipes.Put("/:id", c.Middleware.Authenticated(), c.RecipeHandler.UpdateRecipe)
}

func (c *Config) SetupLabelRoute() {
	labels := c.App.Group("/api/v1/labels")
	labels.Get("", c.LabelHandler.GetLabels)
	labels.Get("/popular", c.LabelHandler.GetPopularLabels)

	c.App.Get("/api/v1/measurements", c.LabelHandler.GetMeasurements)
}

func (c *Config) SetupAuthRoute() {
	auth := c.App.Group("/api/v1/auth")
	auth.Get("/me", c.Middleware.Authenticated(), c.AuthHandler.Me)
	auth.Post("/logout", c.AuthHandler.Logout)

	// Moderation surface is admin only.
	c.App.Get("/api/v1/admin/ping",
		c.Middleware.Authenticated(),
		c.Middleware.RequireRole(domain.RoleAdmin),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"message": "pong"})
		},
	)
}
