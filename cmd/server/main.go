package main

import (
	"context"
	"log"
	"os"

	"github.com/wkmg/rfp-radar/internal/ai"
	"github.com/wkmg/rfp-radar/internal/api"
	"github.com/wkmg/rfp-radar/internal/db"
	"github.com/wkmg/rfp-radar/internal/ingest"
	"github.com/wkmg/rfp-radar/internal/scoring"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	reg, err := ingest.LoadRegistry()
	if err != nil {
		log.Fatalf("Failed to load site registry: %v", err)
	}
	rules, err := scoring.LoadRules(reg.PartnerAgencies())
	if err != nil {
		log.Fatalf("Failed to load scoring rules: %v", err)
	}

	aiClient, err := ai.NewOpenAIClientFromEnv()
	if err != nil {
		log.Printf("[Server] Running without AI features: %v", err)
		aiClient = nil
	}

	pipeline := ingest.NewPipeline(db.NewStore(pool), reg, rules, aiClient)
	srv := api.NewServer(pool, pipeline, aiClient)
	log.Printf("Server starting on port %s...", port)
	if err := srv.Start(port); err != nil {
		log.Fatal(err)
	}
}
