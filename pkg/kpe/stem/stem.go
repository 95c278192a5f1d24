// Package stem provides the stemmers used to build candidate lexical forms.
package stem

import (
	"fmt"
	"strings"
	"time"

	"github.com/kljensen/snowball"
	gocache "github.com/patrickmn/go-cache"
)

// Stemmer maps a word to its normalized form.
type Stemmer interface {
	Stem(word string) string
}

// Identity keeps words unchanged.
type Identity struct{}

// Stem returns word as is.
func (Identity) Stem(word string) string { return word }

// Snowball stems with the Snowball algorithm for one language.
type Snowball struct {
	Language string
}

// NewSnowball returns a Snowball stemmer, or an error when the language is
// not supported.
func NewSnowball(language string) (*Snowball, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if _, err := snowball.Stem("test", language, true); err != nil {
		return nil, fmt.Errorf("snowball stemmer %q: %w", language, err)
	}
	return &Snowball{Language: language}, nil
}

// Stem returns the stem of word. Stopwords are stemmed too. Words the
// stemmer rejects come back lowercased.
func (s *Snowball) Stem(word string) string {
	out, err := snowball.Stem(word, s.Language, true)
	if err != nil {
		return strings.ToLower(word)
	}
	return out
}

// Cached memoizes another stemmer.
type Cached struct {
	inner Stemmer
	cache *gocache.Cache
}

// NewCached wraps inner with a cache whose entries expire after ttl. A ttl
// of zero keeps entries forever.
func NewCached(inner Stemmer, ttl time.Duration) *Cached {
	exp, cleanup := gocache.NoExpiration, time.Duration(0)
	if ttl > 0 {
		exp, cleanup = ttl, 2*ttl
	}
	return &Cached{inner: inner, cache: gocache.New(exp, cleanup)}
}

// Stem returns the cached stem of word, computing it on a miss.
func (c *Cached) Stem(word string) string {
	if v, ok := c.cache.Get(word); ok {
		return v.(string)
	}
	out := c.inner.Stem(word)
	c.cache.SetDefault(word, out)
	return out
}

// Len returns the number of cached stems.
func (c *Cached) Len() int {
	return c.cache.ItemCount()
}
