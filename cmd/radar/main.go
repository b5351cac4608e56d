package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/wkmg/rfp-radar/internal/ai"
	"github.com/wkmg/rfp-radar/internal/db"
	"github.com/wkmg/rfp-radar/internal/ingest"
	"github.com/wkmg/rfp-radar/internal/report"
	"github.com/wkmg/rfp-radar/internal/scoring"
)

// radar runs one full collection cycle and sends the daily digest.
func main() {
	noEmail := flag.Bool("no-email", false, "print the digest to stdout instead of mailing it")
	noAI := flag.Bool("no-ai", false, "skip the model second opinion even if OPENAI_API_KEY is set")
	flag.Parse()

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

	var aiClient *ai.OpenAIClient
	if !*noAI {
		aiClient, err = ai.NewOpenAIClientFromEnv()
		if err != nil {
			log.Printf("[Radar] Running without AI evaluation: %v", err)
		}
	}

	pipeline := ingest.NewPipeline(db.NewStore(pool), reg, rules, aiClient)
	rep, err := pipeline.Run(ctx)
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	report.WriteTable(os.Stdout, rep.Buckets.Candidates)

	digest := report.BuildDigest(rep, time.Now())
	if *noEmail {
		html, err := digest.HTML()
		if err != nil {
			log.Fatalf("Failed to render digest: %v", err)
		}
		os.Stdout.WriteString(html)
		return
	}

	mailer, err := report.NewMailerFromEnv()
	if err != nil {
		log.Printf("[Radar] Digest not mailed: %v", err)
		return
	}
	html, err := digest.HTML()
	if err != nil {
		log.Fatalf("Failed to render digest: %v", err)
	}
	csvData, err := report.CSV(rep.Buckets.Candidates)
	if err != nil {
		log.Fatalf("Failed to build CSV attachment: %v", err)
	}
	attachment := report.Attachment{
		Filename:    "rfp-radar-" + time.Now().Format("20060102") + ".csv",
		ContentType: "text/csv; charset=utf-8",
		Data:        csvData,
	}
	if err := mailer.Send(digest.Subject(), html, attachment); err != nil {
		log.Fatalf("Failed to send digest: %v", err)
	}
	log.Printf("[Radar] Digest sent to %d recipients", len(mailer.To))
}
