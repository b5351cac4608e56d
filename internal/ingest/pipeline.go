package ingest

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/wkmg/rfp-radar/internal/ai"
	"github.com/wkmg/rfp-radar/internal/db"
	"github.com/wkmg/rfp-radar/internal/models"
	"github.com/wkmg/rfp-radar/internal/scoring"
)

// Pipeline runs one collection cycle: fetch from every enabled source,
// dedup, score, second-opinion the high scorers, persist.
type Pipeline struct {
	Store    *db.Store
	Registry *Registry
	Rules    *scoring.RuleTables
	AI       *ai.OpenAIClient
	Koneps   *KonepsFetcher
	Crawler  Fetcher
	Parser   *BoardParser
}

func NewPipeline(store *db.Store, reg *Registry, rules *scoring.RuleTables, aiClient *ai.OpenAIClient) *Pipeline {
	return &Pipeline{
		Store:    store,
		Registry: reg,
		Rules:    rules,
		AI:       aiClient,
		Koneps:   NewKonepsFetcher(reg.Koneps),
		Crawler:  NewCollyFetcher(),
		Parser:   &BoardParser{AI: aiClient},
	}
}

// RunReport is what one cycle produced, ready for the digest.
type RunReport struct {
	Stats   RunStats
	Scored  []scoring.ScoredBid
	Buckets scoring.Buckets
}

// Run executes a full collection cycle. Per-source failures are logged and
// counted, not fatal: a broken board must not sink the daily run.
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	now := time.Now()
	stats := RunStats{Started: now}

	runID, err := p.Store.StartRun(ctx)
	if err != nil {
		log.Printf("[Pipeline] Failed to record run start: %v", err)
	}

	raw := p.collect(ctx, now, &stats)
	stats.Found = len(raw)

	bids := make([]models.Bid, 0, len(raw))
	for _, r := range raw {
		site, _ := p.Registry.SiteByAgency(r.Agency)
		bids = append(bids, Normalize(r, site, now))
	}
	bids = scoring.Dedup(bids)
	stats.AfterDedup = len(bids)
	log.Printf("[Pipeline] %d announcements after dedup (%d collected)", len(bids), stats.Found)

	scored := make([]scoring.ScoredBid, 0, len(bids))
	for _, bid := range bids {
		res := scoring.Score(bid, p.Rules, now)
		if res.Relevant {
			stats.Relevant++
			if p.AI != nil && res.Total >= p.Rules.FitThreshold {
				res = p.secondOpinion(ctx, bid, res, &stats)
			}
		}
		scored = append(scored, scoring.ScoredBid{Bid: bid, Result: res})
	}

	for _, s := range scored {
		if !s.Result.Relevant {
			continue
		}
		if err := p.Store.UpsertScoredBid(ctx, s.Bid, s.Result); err != nil {
			log.Printf("[Pipeline] Failed to save %q: %v", s.Bid.Title, err)
			continue
		}
		stats.Saved++
	}

	stats.Duration = time.Since(now)
	if runID != "" {
		status := "completed"
		if stats.Saved == 0 && stats.SourceErrors > 0 {
			status = "failed"
		}
		if err := p.Store.FinishRun(ctx, runID, status, stats.Found, stats.Relevant, stats.Saved, stats.SourceErrors); err != nil {
			log.Printf("[Pipeline] Failed to record run end: %v", err)
		}
	}

	log.Printf("[Pipeline] Run complete: found=%d deduped=%d relevant=%d evaluated=%d saved=%d errors=%d in %s",
		stats.Found, stats.AfterDedup, stats.Relevant, stats.Evaluated, stats.Saved, stats.SourceErrors, stats.Duration.Round(time.Second))

	return &RunReport{
		Stats:   stats,
		Scored:  scored,
		Buckets: scoring.Bucketize(scored, p.Rules, now),
	}, nil
}

// collect gathers raw records from the API and every enabled crawl site.
// API results come first so dedup keeps them over crawl duplicates.
func (p *Pipeline) collect(ctx context.Context, now time.Time, stats *RunStats) []RawBid {
	var raw []RawBid

	if len(p.Registry.EnabledSites(MethodG2BAPI)) > 0 {
		stats.SourcesTried++
		apiBids, err := p.Koneps.FetchAll(ctx, now)
		if err != nil {
			stats.SourceErrors++
			log.Printf("[Pipeline] KONEPS fetch failed: %v", err)
		}
		raw = append(raw, apiBids...)
	}

	for _, site := range p.Registry.EnabledSites(MethodWebCrawl) {
		stats.SourcesTried++
		bids, err := p.crawlSite(ctx, site, now)
		if err != nil {
			stats.SourceErrors++
			log.Printf("[Pipeline] Crawl failed for %s: %v", site.ID, err)
			continue
		}
		raw = append(raw, bids...)
	}
	return raw
}

func (p *Pipeline) crawlSite(ctx context.Context, site Site, now time.Time) ([]RawBid, error) {
	doc, err := p.Crawler.Fetch(ctx, site.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer doc.Body.Close()

	html, err := io.ReadAll(doc.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return p.Parser.Parse(ctx, site, string(html), p.Registry.CrawlLookbackDays, now)
}

// secondOpinion runs the model review on a high scorer and folds the
// adjustment in. Evaluation failures keep the keyword score.
func (p *Pipeline) secondOpinion(ctx context.Context, bid models.Bid, res scoring.ScoreResult, stats *RunStats) scoring.ScoreResult {
	eval, err := p.AI.EvaluateBidFit(ctx, bid, res.Total)
	if err != nil {
		log.Printf("[Pipeline] Fit evaluation failed for %q: %v", bid.Title, err)
		return res
	}
	stats.Evaluated++
	return scoring.ApplyAdjustment(res, p.Rules, eval.Adjustment, eval.Verdict, eval.Reason)
}
