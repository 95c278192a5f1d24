package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/cognicore/kpe/pkg/kpe/store"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu          sync.RWMutex
	docFreq     map[string]int64
	totalDocs   int64
	extractions map[string]store.Extraction
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		docFreq:     make(map[string]int64),
		extractions: make(map[string]store.Extraction),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// UpsertDocFreq sets the document frequency of a term.
func (s *Store) UpsertDocFreq(ctx context.Context, term string, df int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docFreq[term] = df
	return nil
}

// UpsertDocFreqs sets several document frequencies at once.
func (s *Store) UpsertDocFreqs(ctx context.Context, dfs map[string]int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for term, df := range dfs {
		s.docFreq[term] = df
	}
	return nil
}

// DocFreq returns the document frequency of a term, zero when unknown.
func (s *Store) DocFreq(ctx context.Context, term string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docFreq[term], nil
}

// TotalDocs returns the corpus size.
func (s *Store) TotalDocs(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalDocs, nil
}

// SetTotalDocs records the corpus size.
func (s *Store) SetTotalDocs(ctx context.Context, n int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalDocs = n
	return nil
}

// SaveKeyphrases stores an extraction, replacing any previous one with the
// same document ID.
func (s *Store) SaveKeyphrases(ctx context.Context, e store.Extraction) error {
	if e.DocID == "" {
		return fmt.Errorf("save keyphrases: empty document id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extractions[e.DocID] = copyExtraction(e)
	return nil
}

// Keyphrases returns the extraction stored for docID.
func (s *Store) Keyphrases(ctx context.Context, docID string) (store.Extraction, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.extractions[docID]
	if !ok {
		return store.Extraction{}, false, nil
	}
	return copyExtraction(e), true, nil
}

func copyExtraction(e store.Extraction) store.Extraction {
	e.Keyphrases = append([]store.Keyphrase(nil), e.Keyphrases...)
	return e
}
