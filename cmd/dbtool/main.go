package main

import (
	"context"
	"database/sql"
	"disposal-route-service/internal/adapters/repositories"
	"disposal-route-service/internal/config"
	"disposal-route-service/internal/platform/db"
	"log"
	"strings"
)

func main() {
	config.LoadDotEnv()

	databaseURL := config.Get("DATABASE_URL", "")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	db, err := db.Open(ctx, databaseURL, db.PoolOptions{MaxOpenConns: 2})
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/network.yaml")
	if err := initAndSeed(ctx, db, seedPath); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(ctx context.Context, db *sql.DB, seedPath string) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(ctx, db); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Printf("Seeding database from %s...", seedPath)
	if err := repositories.SeedFromYAML(ctx, db, seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")

	return nil
}
