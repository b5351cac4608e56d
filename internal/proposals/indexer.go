package proposals

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	rpdf "rsc.io/pdf"

	"github.com/wkmg/rfp-radar/internal/ai"
	"github.com/wkmg/rfp-radar/internal/db"
)

const (
	chunkSize    = 2000
	chunkOverlap = 200
)

// Indexer builds the past-proposal archive: PDFs in, embedded chunks out.
type Indexer struct {
	Store    *db.Store
	Embedder ai.Embedder
}

// IndexDir walks a directory of past proposal PDFs and (re)indexes each
// one. Files that cannot be read or parsed are skipped with a log line.
func (ix *Indexer) IndexDir(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read proposal dir: %w", err)
	}

	indexed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		if err := ix.IndexFile(ctx, filepath.Join(dir, entry.Name())); err != nil {
			log.Printf("[Proposals] Skipping %s: %v", entry.Name(), err)
			continue
		}
		indexed++
	}
	log.Printf("[Proposals] Indexed %d documents from %s", indexed, dir)
	return indexed, nil
}

// IndexFile extracts, chunks, embeds and stores one proposal PDF. Existing
// chunks for the same file name are replaced.
func (ix *Indexer) IndexFile(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	text, err := ExtractPDFText(content)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("no extractable text")
	}

	chunks := ChunkText(text, chunkSize, chunkOverlap)
	embeddings := make([][]float32, 0, len(chunks))
	for i, chunk := range chunks {
		emb, err := ix.Embedder.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", i, err)
		}
		embeddings = append(embeddings, emb)
	}

	docName := filepath.Base(path)
	if err := ix.Store.ReplaceProposalDoc(ctx, docName, chunks, embeddings); err != nil {
		return err
	}
	log.Printf("[Proposals] Indexed %s: %d chunks", docName, len(chunks))
	return nil
}

// ExtractPDFText pulls the text layer out of a PDF. The parser panics on
// some malformed files, so the panic is converted into an error.
func ExtractPDFText(content []byte) (text string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("pdf parser panic: %v", recovered)
			text = ""
		}
	}()

	reader, err := rpdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		for _, fragment := range page.Content().Text {
			builder.WriteString(fragment.S)
			builder.WriteString(" ")
		}
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

// ChunkText splits text into rune chunks of at most size with the given
// overlap between consecutive chunks, so sentences cut at a boundary still
// appear whole in one of them.
func ChunkText(text string, size, overlap int) []string {
	if size <= 0 {
		return nil
	}
	if overlap >= size {
		overlap = size / 10
	}
	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += size - overlap {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}
