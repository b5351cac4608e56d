package ingest

import (
	"context"
	"io"
	"time"
)

// RawBid is the untrusted record a source hands to the normalizer. Budget
// and deadline stay as strings until normalization.
type RawBid struct {
	Title     string
	Agency    string
	BudgetRaw string
	Deadline  string
	BidNo     string
	BidSeq    string
	URL       string
	Source    string
}

// FetchedDocument is a fetched page plus transport metadata.
type FetchedDocument struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        io.ReadCloser
	FetchedAt   time.Time
}

// Fetcher retrieves one URL. Implementations handle retries and rate
// limiting themselves.
type Fetcher interface {
	Fetch(ctx context.Context, targetURL string) (*FetchedDocument, error)
}

// RunStats summarizes one collection run.
type RunStats struct {
	SourcesTried int
	SourceErrors int
	Found        int
	AfterDedup   int
	Relevant     int
	Evaluated    int
	Saved        int
	Started      time.Time
	Duration     time.Duration
}
