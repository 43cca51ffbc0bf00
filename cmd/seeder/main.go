package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/locvowork/asset_management/internal/bootstrap"
	"github.com/locvowork/asset_management/internal/config"
	"github.com/locvowork/asset_management/internal/database"
	"github.com/locvowork/asset_management/internal/logger"
)

func main() {
	action := flag.String("action", "seed", "Action to perform: seed, clear")
	file := flag.String("file", "fixtures.yaml", "YAML fixture file (seed only)")
	yes := flag.Bool("yes", false, "Skip the confirmation prompt for clear")

	flag.Parse()

	ctx := context.Background()

	fmt.Println("Asset Data Seeder")
	fmt.Println(strings.Repeat("=", 50))

	app := bootstrap.NewApp()
	if err := app.InitCore(ctx); err != nil {
		logger.ErrorLog(ctx, "Failed to initialize application", err)
		log.Fatal(err)
	}
	defer app.Close(ctx)

	seeder := database.NewDataSeeder(app.Employees, app.Assets, app.Indexer, config.DefaultEnvConfig.SWEEP_WORKERS)

	switch *action {
	case "seed":
		performSeed(ctx, seeder, *file)

	case "clear":
		performClear(ctx, seeder, *yes)

	default:
		fmt.Printf("Unknown action: %s\n", *action)
		flag.PrintDefaults()
		return
	}

	fmt.Println("\nDone!")
}

func performSeed(ctx context.Context, seeder *database.DataSeeder, path string) {
	fixtures, err := database.LoadFixturesFile(path)
	if err != nil {
		log.Fatalf("Loading fixtures failed: %v", err)
	}

	stats, err := seeder.SeedData(ctx, fixtures)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	fmt.Printf("Seeded %d employees and %d assets from %s\n", stats.Employees, stats.Assets, path)
}

func performClear(ctx context.Context, seeder *database.DataSeeder, yes bool) {
	if !yes {
		fmt.Println("This will delete all employees and assets!")
		fmt.Print("Continue? (yes/no): ")

		var response string
		fmt.Scanln(&response)
		if response != "yes" {
			fmt.Println("Cancelled.")
			return
		}
	}

	if err := seeder.ClearData(ctx); err != nil {
		log.Fatalf("Clear failed: %v", err)
	}
}
