package main

import (
	"context"
	"log"

	"recipe-api/cmd/config"
	migration "recipe-api/cmd/database/migrate"
	"recipe-api/internal/utils"
)

func main() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	logger, err := utils.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("error building logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	client, err := config.ConnectDB(ctx, cfg)
	if err != nil {
		log.Fatalf("error connecting to database: %v", err)
	}
	defer client.Disconnect(context.Background())

	if err := migration.Migrate(ctx, client, cfg, logger); err != nil {
		log.Fatalf("error migrating database: %v", err)
	}

	app, err := config.NewApp(ctx, client, cfg, logger)
	if err != nil {
		log.Fatalf("error building app: %v", err)
	}

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
