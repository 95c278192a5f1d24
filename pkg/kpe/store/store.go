package store

import (
	"context"
	"time"
)

// Store persists corpus document frequencies and extracted keyphrases.
// Implementations are safe for concurrent use and satisfy weight.DFSource.
type Store interface {
	Close() error

	// Document frequencies
	UpsertDocFreq(ctx context.Context, term string, df int64) error
	UpsertDocFreqs(ctx context.Context, dfs map[string]int64) error
	DocFreq(ctx context.Context, term string) (int64, error)
	TotalDocs(ctx context.Context) (int64, error)
	SetTotalDocs(ctx context.Context, n int64) error

	// Extraction results
	SaveKeyphrases(ctx context.Context, e Extraction) error
	Keyphrases(ctx context.Context, docID string) (Extraction, bool, error)
}

// Extraction is the stored outcome of one document.
type Extraction struct {
	DocID      string
	Source     string
	CreatedAt  time.Time
	Keyphrases []Keyphrase
}

// Keyphrase is a stored keyphrase, in rank order within its extraction.
type Keyphrase struct {
	Text        string
	Weight      float64
	LexicalForm string
}
