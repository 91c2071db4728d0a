package migration

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"recipe-api/internal/utils"
	"recipe-api/pkg/recipe"
)

// Migrate creates the recipe collection indexes. Safe to run repeatedly.
func Migrate(ctx context.Context, client *mongo.Client, cfg *utils.Config, logger *zap.Logger) error {
	store := recipe.NewRecipeStore(client, cfg.MongoDatabase, logger.Named("RecipeStore"))
	if err := store.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("error creating recipe indexes: %w", err)
	}
	fmt.Println("Database migration complete")
	return nil
}
