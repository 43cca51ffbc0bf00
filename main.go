package main

import (
	"context"
	"log"

	"github.com/locvowork/asset_management/internal/bootstrap"
	"github.com/locvowork/asset_management/internal/logger"
)

func main() {
	ctx := context.Background()

	app := bootstrap.NewApp()
	if err := app.Initialize(ctx); err != nil {
		log.Fatal(err)
	}

	logger.InfoLog(ctx, "Starting asset ownership API")
	if err := app.Run(); err != nil {
		logger.ErrorLog(ctx, "Server stopped", err)
	}
}
