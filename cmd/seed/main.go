// Command seed fills the database with generated demo leads, on top of
// the built-in sample data.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/jordanlanch/leadpipe/config"
	"github.com/jordanlanch/leadpipe/pkg/database"
	"github.com/jordanlanch/leadpipe/pkg/testdata"
)

func main() {
	count := flag.Int("count", 100, "number of demo leads to generate")
	batchSize := flag.Int("batch", 25, "insert batch size")
	reset := flag.Bool("reset", false, "drop and recreate the schema first")
	flag.Parse()

	if err := godotenv.Load(); err == nil {
		log.Printf("📄 Loaded environment from .env")
	}

	cfg := config.Load()

	db, err := database.NewClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := database.Initialize(ctx, db.DB, *reset); err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	log.Printf("🌱 Generating %d demo leads...", *count)
	leads := testdata.GenerateLeads(testdata.DefaultConfig(*count))

	if err := testdata.BulkInsertLeads(ctx, db.DB, leads, *batchSize); err != nil {
		log.Fatalf("❌ Failed to insert demo leads: %v", err)
	}

	log.Printf("✅ Inserted %d demo leads", len(leads))
}
