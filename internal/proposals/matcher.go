package proposals

import (
	"context"
	"fmt"

	"github.com/wkmg/rfp-radar/internal/ai"
	"github.com/wkmg/rfp-radar/internal/db"
)

// Matcher finds past proposal work similar to a new announcement.
type Matcher struct {
	Store    *db.Store
	Embedder ai.Embedder
}

// TopK embeds the query text and returns the k most similar archive chunks.
func (m *Matcher) TopK(ctx context.Context, text string, k int) ([]db.ChunkMatch, error) {
	emb, err := m.Embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return m.Store.SearchProposalChunks(ctx, emb, k)
}

// Snippets reduces matches to plain text excerpts for the analysis prompt.
func Snippets(matches []db.ChunkMatch, maxLen int) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		s := m.Content
		if r := []rune(s); maxLen > 0 && len(r) > maxLen {
			s = string(r[:maxLen])
		}
		out = append(out, fmt.Sprintf("(%s) %s", m.DocName, s))
	}
	return out
}
