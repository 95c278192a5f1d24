// Package stoplist holds the stopword set consulted by the candidate filter.
package stoplist

import (
	"sort"
	"strings"
	"sync"
)

// Manager is a set of lowercased stopwords. It is safe for concurrent use.
type Manager struct {
	mu    sync.RWMutex
	stops map[string]struct{}
}

// NewManager creates a stoplist seeded with initialStops.
func NewManager(initialStops ...[]string) *Manager {
	m := &Manager{stops: make(map[string]struct{})}
	for _, list := range initialStops {
		for _, s := range list {
			m.Add(s)
		}
	}
	return m
}

// IsStop checks if a token is a stopword, ignoring case.
func (m *Manager) IsStop(token string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.stops[strings.ToLower(token)]
	return ok
}

// Add adds a token to the stoplist. Blank tokens are ignored.
func (m *Manager) Add(token string) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return
	}
	m.mu.Lock()
	m.stops[token] = struct{}{}
	m.mu.Unlock()
}

// Remove removes a token from the stoplist.
func (m *Manager) Remove(token string) {
	m.mu.Lock()
	delete(m.stops, strings.ToLower(token))
	m.mu.Unlock()
}

// Len returns the number of stopwords.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.stops)
}

// All returns all stopwords in sorted order.
func (m *Manager) All() []string {
	m.mu.RLock()
	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	m.mu.RUnlock()
	sort.Strings(result)
	return result
}

// Punctuation returns the bracket tokens emitted by Penn Treebank style
// tokenizers followed by every ASCII punctuation character.
func Punctuation() []string {
	out := []string{"-lrb-", "-rrb-", "-lcb-", "-rcb-", "-lsb-", "-rsb-"}
	for _, r := range `!"#$%&'()*+,-./:;<=>?@[\]^_` + "`" + `{|}~` {
		out = append(out, string(r))
	}
	return out
}

// English returns a common English stopword list.
func English() []string {
	return append([]string(nil), english...)
}

var english = []string{
	"a", "about", "above", "after", "again", "against", "all", "am", "an",
	"and", "any", "are", "aren't", "as", "at", "be", "because", "been",
	"before", "being", "below", "between", "both", "but", "by", "can",
	"cannot", "could", "couldn't", "did", "didn't", "do", "does", "doesn't",
	"doing", "don't", "down", "during", "each", "few", "for", "from",
	"further", "had", "hadn't", "has", "hasn't", "have", "haven't", "having",
	"he", "her", "here", "hers", "herself", "him", "himself", "his", "how",
	"i", "if", "in", "into", "is", "isn't", "it", "it's", "its", "itself",
	"just", "me", "more", "most", "mustn't", "my", "myself", "no", "nor",
	"not", "now", "of", "off", "on", "once", "only", "or", "other", "ought",
	"our", "ours", "ourselves", "out", "over", "own", "same", "she",
	"should", "shouldn't", "so", "some", "such", "than", "that", "the",
	"their", "theirs", "them", "themselves", "then", "there", "these",
	"they", "this", "those", "through", "to", "too", "under", "until", "up",
	"very", "was", "wasn't", "we", "were", "weren't", "what", "when",
	"where", "which", "while", "who", "whom", "why", "will", "with",
	"won't", "would", "wouldn't", "you", "your", "yours", "yourself",
	"yourselves",
}
