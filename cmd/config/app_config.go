package config

import (
	"context"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"recipe-api/internal/api/handlers"
	"recipe-api/internal/api/routes"
	"recipe-api/internal/middleware"
	"recipe-api/internal/utils"
	"recipe-api/internal/utils/storage"
	"recipe-api/pkg/auth"
	"recipe-api/pkg/recipe"
)

func NewApp(ctx context.Context, client *mongo.Client, cfg *utils.Config, log *zap.Logger) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
		BodyLimit:         10 * 1024 * 1024,
	})

	// setting up logging and limiter
	if err := os.MkdirAll("./logs", os.ModePerm); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		return nil, err
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	// utils
	s3, err := storage.NewAwsS3(ctx, cfg)
	if err != nil {
		return nil, err
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKey, cfg.AWSSecretKey, ""),
		),
	)
	if err != nil {
		return nil, err
	}
	sessions := middleware.NewSessionStore()

	// Store
	recipeStore := recipe.NewRecipeStore(client, cfg.MongoDatabase, log.Named("RecipeStore"))

	// Service
	identityProvider := auth.NewCognitoProvider(awsCfg, cfg.CognitoUserPoolID)
	authenticator, err := auth.NewAuthenticator(auth.Config{
		Issuer:        cfg.CognitoIssuer(),
		ClientID:      cfg.CognitoClientID,
		JWKSURL:       cfg.CognitoJWKSURL(),
		StatusTimeout: cfg.AuthStatusTimeout(),
	}, identityProvider, log.Named("Authenticator"))
	if err != nil {
		return nil, err
	}
	app.Hooks().OnShutdown(func() error {
		authenticator.Close()
		return nil
	})

	mutationService := recipe.NewMutationService(recipeStore, s3, utils.Validate, log.Named("RecipeMutation"))
	queryService := recipe.NewQueryService(recipeStore, log.Named("RecipeQuery"))

	// Handler
	recipeHandler := handlers.NewRecipeHandler(queryService, mutationService, log.Named("RecipeHandler"))
	labelHandler := handlers.NewLabelHandler(queryService, log.Named("LabelHandler"))
	authHandler := handlers.NewAuthHandler(sessions, log.Named("AuthHandler"))

	middlewares := middleware.NewMiddleware(authenticator, sessions, log.Named("Middleware"))

	// routes
	routesConfig := routes.Config{
		App:           app,
		RecipeHandler: recipeHandler,
		LabelHandler:  labelHandler,
		AuthHandler:   authHandler,
		Middleware:    middlewares,
	}
	routesConfig.Setup()
	return app, nil
}
