package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/wkmg/rfp-radar/internal/ai"
	"github.com/wkmg/rfp-radar/internal/db"
	"github.com/wkmg/rfp-radar/internal/proposals"
)

// indexdocs chunks and embeds past proposal PDFs so go/no-go analysis
// can cite similar work. Point it at a directory of PDF files.
func main() {
	dir := flag.String("dir", os.Getenv("PROPOSALS_DIR"), "directory of proposal PDFs to index")
	flag.Parse()

	if *dir == "" {
		log.Fatal("Usage: indexdocs -dir <path> (or set PROPOSALS_DIR)")
	}

	ctx := context.Background()

	aiClient, err := ai.NewOpenAIClientFromEnv()
	if err != nil {
		log.Fatalf("Embeddings unavailable: %v", err)
	}

	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()
	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	indexer := &proposals.Indexer{
		Store:    db.NewStore(pool),
		Embedder: aiClient,
	}
	if _, err := indexer.IndexDir(ctx, *dir); err != nil {
		log.Fatalf("Indexing failed: %v", err)
	}
	log.Print("[Proposals] Indexing complete")
}
