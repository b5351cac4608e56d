package main

import (
	"context"
	"log"
	"time"

	"github.com/wkmg/rfp-radar/internal/db"
	"github.com/wkmg/rfp-radar/internal/ingest"
	"github.com/wkmg/rfp-radar/internal/scoring"
)

// rescore recomputes keyword scores for every stored bid. Run it after
// editing the rule tables so the dashboard reflects the new weights.
func main() {
	ctx := context.Background()

	reg, err := ingest.LoadRegistry()
	if err != nil {
		log.Fatalf("Failed to load site registry: %v", err)
	}
	rules, err := scoring.LoadRules(reg.PartnerAgencies())
	if err != nil {
		log.Fatalf("Failed to load scoring rules: %v", err)
	}

	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()
	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	store := db.NewStore(pool)
	bids, err := store.AllBids(ctx)
	if err != nil {
		log.Fatalf("Failed to load bids: %v", err)
	}
	log.Printf("[Rescore] Loaded %d bids", len(bids))

	now := time.Now()
	var updated, removed, failed int
	for _, bid := range bids {
		if bid.Fingerprint == "" {
			bid.Fingerprint = scoring.Fingerprint(bid.Title, bid.Agency)
		}
		res := scoring.Score(bid, rules, now)
		if !res.Relevant {
			// Only relevant bids are stored; a bid the edited tables now
			// exclude must not keep its old score and ranking.
			if err := store.DeleteBid(ctx, bid.Fingerprint); err != nil {
				log.Printf("[Rescore] Failed to remove %s: %v", bid.Fingerprint, err)
				failed++
				continue
			}
			log.Printf("[Rescore] Removed %q: %s", bid.Title, res.ExclusionReason)
			removed++
			continue
		}
		if err := store.UpsertScoredBid(ctx, bid, res); err != nil {
			log.Printf("[Rescore] Failed to save %s: %v", bid.Fingerprint, err)
			failed++
			continue
		}
		updated++
	}

	log.Printf("[Rescore] Done: %d updated, %d removed as irrelevant, %d failed", updated, removed, failed)
}
