package weight

import (
	"context"
	"sync"

	"github.com/cognicore/kpe/pkg/kpe/document"
)

// Counter maintains document frequencies in memory. It is safe for
// concurrent use and satisfies DFSource.
type Counter struct {
	mu sync.RWMutex
	n  int64            // total number of documents
	df map[string]int64 // document frequency per lexical form
}

// NewCounter creates an empty counter.
func NewCounter() *Counter {
	return &Counter{df: make(map[string]int64)}
}

// AddDocument counts one document. Repeated terms are counted once.
func (c *Counter) AddDocument(terms []string) {
	seen := make(map[string]struct{}, len(terms))
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		c.df[t]++
	}
}

// DocFreq returns the number of documents containing term.
func (c *Counter) DocFreq(_ context.Context, term string) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.df[term], nil
}

// TotalDocs returns the number of documents counted.
func (c *Counter) TotalDocs(context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.n, nil
}

// Terms returns a copy of the document frequency table.
func (c *Counter) Terms() map[string]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]int64, len(c.df))
	for k, v := range c.df {
		out[k] = v
	}
	return out
}

// BuildDF counts the candidate lexical forms of each document.
func BuildDF(docs []*document.Document) *Counter {
	c := NewCounter()
	for _, d := range docs {
		c.AddDocument(d.Keys())
	}
	return c
}
