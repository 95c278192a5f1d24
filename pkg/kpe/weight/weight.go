// Package weight assigns scores to registered candidates. The selector only
// needs a map from lexical form to weight; the weighters here are simple
// baselines that fill it.
package weight

import (
	"context"
	"fmt"
	"math"

	"github.com/cognicore/kpe/pkg/kpe/document"
)

// Weighter scores every candidate of a document.
type Weighter interface {
	Weigh(ctx context.Context, doc *document.Document) (map[string]float64, error)
}

// Frequency weighs a candidate by its number of occurrences.
type Frequency struct{}

// Weigh returns the occurrence count of each candidate.
func (Frequency) Weigh(_ context.Context, doc *document.Document) (map[string]float64, error) {
	out := make(map[string]float64, len(doc.Candidates))
	for key, c := range doc.Candidates {
		out[key] = float64(c.Occurrences())
	}
	return out, nil
}

// DFSource provides document frequencies of lexical forms.
type DFSource interface {
	DocFreq(ctx context.Context, term string) (int64, error)
	TotalDocs(ctx context.Context) (int64, error)
}

// TFIDF weighs a candidate by tf * log2((N+1) / (df+1)). The +1 terms
// account for the document being weighed, which is not part of the corpus.
type TFIDF struct {
	DF DFSource
	// N overrides DF.TotalDocs when positive.
	N int64
}

// Weigh returns the tf-idf weight of each candidate.
func (w TFIDF) Weigh(ctx context.Context, doc *document.Document) (map[string]float64, error) {
	if w.DF == nil {
		return nil, fmt.Errorf("tfidf: no document frequency source")
	}
	n := w.N
	if n <= 0 {
		total, err := w.DF.TotalDocs(ctx)
		if err != nil {
			return nil, fmt.Errorf("tfidf: total docs: %w", err)
		}
		n = total
	}

	out := make(map[string]float64, len(doc.Candidates))
	for _, key := range doc.Keys() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		df, err := w.DF.DocFreq(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("tfidf: doc freq %q: %w", key, err)
		}
		idf := math.Log2(float64(n+1) / float64(df+1))
		out[key] = float64(doc.Candidates[key].Occurrences()) * idf
	}
	return out, nil
}
