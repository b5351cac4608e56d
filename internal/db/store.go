package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/wkmg/rfp-radar/internal/models"
	"github.com/wkmg/rfp-radar/internal/scoring"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const bidCols = `fingerprint, id, title, agency, budget_raw, budget, deadline,
	bid_no, bid_seq, source, url, wkmg_partner, site_priority,
	domain, domain_score, matched_keywords, industry_score, scale_score,
	competition_score, penalty, trend_bonus, adjustment, verdict,
	adjustment_reason, total, grade, created_at, updated_at`

// UpsertScoredBid inserts or refreshes one scored announcement. On conflict
// the score columns and mutable bid fields are replaced; created_at stays.
func (s *Store) UpsertScoredBid(ctx context.Context, bid models.Bid, res scoring.ScoreResult) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO bids (`+bidCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,NOW(),NOW())
		ON CONFLICT (fingerprint) DO UPDATE SET
			title = EXCLUDED.title,
			agency = EXCLUDED.agency,
			budget_raw = EXCLUDED.budget_raw,
			budget = EXCLUDED.budget,
			deadline = EXCLUDED.deadline,
			url = EXCLUDED.url,
			wkmg_partner = EXCLUDED.wkmg_partner,
			site_priority = EXCLUDED.site_priority,
			domain = EXCLUDED.domain,
			domain_score = EXCLUDED.domain_score,
			matched_keywords = EXCLUDED.matched_keywords,
			industry_score = EXCLUDED.industry_score,
			scale_score = EXCLUDED.scale_score,
			competition_score = EXCLUDED.competition_score,
			penalty = EXCLUDED.penalty,
			trend_bonus = EXCLUDED.trend_bonus,
			adjustment = EXCLUDED.adjustment,
			verdict = EXCLUDED.verdict,
			adjustment_reason = EXCLUDED.adjustment_reason,
			total = EXCLUDED.total,
			grade = EXCLUDED.grade,
			updated_at = NOW()`,
		bid.Fingerprint, bid.ID, bid.Title, bid.Agency, bid.BudgetRaw, bid.Budget, bid.Deadline,
		bid.BidNo, bid.BidSeq, bid.Source, bid.URL, bid.WKMGPartner, bid.SitePriority,
		res.Domain, res.DomainScore, res.MatchedKeywords, res.IndustryScore, res.ScaleScore,
		res.CompetitionScore, res.Penalty, res.TrendBonus, res.Adjustment, res.Verdict,
		res.AdjustmentReason, res.Total, res.Grade)
	if err != nil {
		return fmt.Errorf("upsert bid %s: %w", bid.Fingerprint, err)
	}
	return nil
}

// ListParams filters the stored announcements.
type ListParams struct {
	Grade          string
	MinTotal       int
	Source         string
	Agency         string
	ExcludeExpired bool
	Limit          int
	Offset         int
}

func (s *Store) ListScored(ctx context.Context, p ListParams) ([]scoring.ScoredBid, error) {
	var conds []string
	var args []any

	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if p.Grade != "" {
		add("grade = $%d", p.Grade)
	}
	if p.MinTotal > 0 {
		add("total >= $%d", p.MinTotal)
	}
	if p.Source != "" {
		add("source = $%d", p.Source)
	}
	if p.Agency != "" {
		add("agency ILIKE $%d", "%"+p.Agency+"%")
	}
	if p.ExcludeExpired {
		add("(deadline = '' OR deadline >= $%d)", time.Now().Format("2006-01-02"))
	}

	query := "SELECT " + bidCols + " FROM bids"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY total DESC, updated_at DESC"
	if p.Limit > 0 {
		args = append(args, p.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if p.Offset > 0 {
		args = append(args, p.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}
	defer rows.Close()

	var out []scoring.ScoredBid
	for rows.Next() {
		sb, err := scanScoredBid(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sb)
	}
	return out, rows.Err()
}

func (s *Store) GetByFingerprint(ctx context.Context, fingerprint string) (scoring.ScoredBid, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+bidCols+" FROM bids WHERE fingerprint = $1", fingerprint)
	sb, err := scanScoredBid(row)
	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return scoring.ScoredBid{}, ErrNotFound
	}
	return sb, err
}

func scanScoredBid(row pgx.Row) (scoring.ScoredBid, error) {
	var sb scoring.ScoredBid
	err := row.Scan(
		&sb.Bid.Fingerprint, &sb.Bid.ID, &sb.Bid.Title, &sb.Bid.Agency, &sb.Bid.BudgetRaw,
		&sb.Bid.Budget, &sb.Bid.Deadline, &sb.Bid.BidNo, &sb.Bid.BidSeq, &sb.Bid.Source,
		&sb.Bid.URL, &sb.Bid.WKMGPartner, &sb.Bid.SitePriority,
		&sb.Result.Domain, &sb.Result.DomainScore, &sb.Result.MatchedKeywords,
		&sb.Result.IndustryScore, &sb.Result.ScaleScore, &sb.Result.CompetitionScore,
		&sb.Result.Penalty, &sb.Result.TrendBonus, &sb.Result.Adjustment, &sb.Result.Verdict,
		&sb.Result.AdjustmentReason, &sb.Result.Total, &sb.Result.Grade,
		&sb.Bid.CreatedAt, &sb.Bid.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sb, err
		}
		return sb, fmt.Errorf("scan bid: %w", err)
	}
	sb.Result.Relevant = sb.Result.Grade != scoring.GradeD
	return sb, nil
}

// Stats summarizes stored announcements for the dashboard.
type Stats struct {
	Total     int            `json:"total"`
	ByGrade   map[string]int `json:"by_grade"`
	Partners  int            `json:"partners"`
	LastRunAt *time.Time     `json:"last_run_at,omitempty"`
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{ByGrade: make(map[string]int)}

	rows, err := s.pool.Query(ctx, "SELECT grade, COUNT(*) FROM bids GROUP BY grade")
	if err != nil {
		return stats, fmt.Errorf("grade stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var grade string
		var count int
		if err := rows.Scan(&grade, &count); err != nil {
			return stats, fmt.Errorf("scan grade stats: %w", err)
		}
		stats.ByGrade[grade] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM bids WHERE wkmg_partner").Scan(&stats.Partners); err != nil {
		return stats, fmt.Errorf("partner stats: %w", err)
	}
	var last time.Time
	err = s.pool.QueryRow(ctx, "SELECT finished_at FROM runs WHERE finished_at IS NOT NULL ORDER BY finished_at DESC LIMIT 1").Scan(&last)
	if err == nil {
		stats.LastRunAt = &last
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return stats, fmt.Errorf("last run: %w", err)
	}
	return stats, nil
}

// AllBids returns every stored bid without score data, for rescoring.
func (s *Store) AllBids(ctx context.Context) ([]models.Bid, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT fingerprint, id, title, agency, budget_raw, budget, deadline,
		       bid_no, bid_seq, source, url, wkmg_partner, site_priority, created_at, updated_at
		FROM bids`)
	if err != nil {
		return nil, fmt.Errorf("all bids: %w", err)
	}
	defer rows.Close()

	var out []models.Bid
	for rows.Next() {
		var b models.Bid
		if err := rows.Scan(&b.Fingerprint, &b.ID, &b.Title, &b.Agency, &b.BudgetRaw,
			&b.Budget, &b.Deadline, &b.BidNo, &b.BidSeq, &b.Source, &b.URL,
			&b.WKMGPartner, &b.SitePriority, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan bid: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DeleteBid removes a stored announcement; watchlist rows cascade.
func (s *Store) DeleteBid(ctx context.Context, fingerprint string) error {
	_, err := s.pool.Exec(ctx, "DELETE FROM bids WHERE fingerprint = $1", fingerprint)
	if err != nil {
		return fmt.Errorf("delete bid %s: %w", fingerprint, err)
	}
	return nil
}

// StartRun records the start of a collection run.
func (s *Store) StartRun(ctx context.Context) (string, error) {
	var runID string
	err := s.pool.QueryRow(ctx,
		"INSERT INTO runs (status) VALUES ('running') RETURNING run_id").Scan(&runID)
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	return runID, nil
}

// FinishRun closes a run record with its outcome counters.
func (s *Store) FinishRun(ctx context.Context, runID, status string, found, relevant, saved, errs int) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE runs SET status = $2, finished_at = NOW(),
			items_found = $3, items_relevant = $4, items_saved = $5, source_errors = $6
		WHERE run_id = $1`,
		runID, status, found, relevant, saved, errs)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	return nil
}

// ReplaceProposalDoc swaps all chunks of one document atomically.
func (s *Store) ReplaceProposalDoc(ctx context.Context, docName string, chunks []string, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d vs %d", len(chunks), len(embeddings))
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM proposal_chunks WHERE doc_name = $1", docName); err != nil {
		return fmt.Errorf("clear chunks for %s: %w", docName, err)
	}
	for i, content := range chunks {
		_, err := tx.Exec(ctx, `
			INSERT INTO proposal_chunks (doc_name, chunk_index, content, embedding)
			VALUES ($1, $2, $3, $4)`,
			docName, i, content, pgvector.NewVector(embeddings[i]))
		if err != nil {
			return fmt.Errorf("insert chunk %d of %s: %w", i, docName, err)
		}
	}
	return tx.Commit(ctx)
}

// ChunkMatch is one similarity hit from the proposal archive.
type ChunkMatch struct {
	DocName  string  `json:"doc_name"`
	Content  string  `json:"content"`
	Distance float64 `json:"distance"`
}

// SearchProposalChunks returns the k nearest chunks by cosine distance.
func (s *Store) SearchProposalChunks(ctx context.Context, embedding []float32, k int) ([]ChunkMatch, error) {
	if k <= 0 {
		k = 5
	}
	rows, err := s.pool.Query(ctx, `
		SELECT doc_name, content, embedding <=> $1 AS distance
		FROM proposal_chunks
		WHERE embedding IS NOT NULL
		ORDER BY distance
		LIMIT $2`,
		pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	defer rows.Close()

	var out []ChunkMatch
	for rows.Next() {
		var m ChunkMatch
		if err := rows.Scan(&m.DocName, &m.Content, &m.Distance); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
