// Package filter prunes a document's candidate registry with a fixed set of
// rules. Each candidate is judged by its first recorded occurrence only:
// the first surface form and the first POS pattern.
package filter

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cognicore/kpe/pkg/kpe/document"
)

// Config holds the filtering thresholds.
type Config struct {
	Stoplist         []string `yaml:"stoplist"`
	MinLength        int      `yaml:"minLength"`
	MinWordSize      int      `yaml:"minWordSize"`
	ValidPunctuation string   `yaml:"validPunctuation"`
	MaxWords         int      `yaml:"maxWords"`
	OnlyAlphanum     bool     `yaml:"onlyAlphanum"`
	POSBlacklist     []string `yaml:"posBlacklist"`
}

// DefaultConfig returns the default thresholds: at least 3 characters,
// words of at least 2 characters, at most 5 words, alphanumeric words with
// hyphens allowed.
func DefaultConfig() Config {
	return Config{
		MinLength:        3,
		MinWordSize:      2,
		ValidPunctuation: "-",
		MaxWords:         5,
		OnlyAlphanum:     true,
	}
}

// Reason says why a candidate was discarded.
type Reason int

const (
	Kept Reason = iota
	Empty
	Stopword
	BlacklistedPOS
	Punctuation
	TooShort
	ShortWord
	TooManyWords
	NotAlphanumeric
)

var reasonNames = map[Reason]string{
	Kept:            "kept",
	Empty:           "empty",
	Stopword:        "stopword",
	BlacklistedPOS:  "pos_blacklist",
	Punctuation:     "punctuation",
	TooShort:        "min_length",
	ShortWord:       "min_word_size",
	TooManyWords:    "max_words",
	NotAlphanumeric: "not_alphanumeric",
}

func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return "unknown"
}

// Result summarizes one filtering pass.
type Result struct {
	Examined int
	Removed  map[Reason]int
}

// Total returns the number of candidates removed.
func (r Result) Total() int {
	n := 0
	for _, c := range r.Removed {
		n += c
	}
	return n
}

// Filter applies a Config to candidates.
type Filter struct {
	cfg   Config
	stops map[string]struct{}
	tags  map[string]struct{}
	valid map[rune]struct{}
}

// New builds a Filter from cfg.
func New(cfg Config) *Filter {
	f := &Filter{
		cfg:   cfg,
		stops: make(map[string]struct{}, len(cfg.Stoplist)),
		tags:  make(map[string]struct{}, len(cfg.POSBlacklist)),
		valid: make(map[rune]struct{}),
	}
	for _, w := range cfg.Stoplist {
		f.stops[strings.ToLower(w)] = struct{}{}
	}
	for _, tag := range cfg.POSBlacklist {
		f.tags[tag] = struct{}{}
	}
	for _, r := range cfg.ValidPunctuation {
		if !unicode.IsSpace(r) {
			f.valid[r] = struct{}{}
		}
	}
	return f
}

// Apply is shorthand for New(cfg).Apply(doc).
func Apply(doc *document.Document, cfg Config) Result {
	return New(cfg).Apply(doc)
}

// Apply removes every candidate that fails a rule. Removal drops all
// accumulated occurrence data. Running it twice with the same config
// removes nothing the second time.
func (f *Filter) Apply(doc *document.Document) Result {
	res := Result{Removed: make(map[Reason]int)}
	for _, key := range doc.Keys() {
		res.Examined++
		if reason := f.Check(doc.Candidates[key]); reason != Kept {
			doc.Remove(key)
			res.Removed[reason]++
		}
	}
	return res
}

// Check returns the first rule the candidate fails, or Kept. Rules are
// tried in order: stoplist, POS blacklist, punctuation-only word, total
// length, shortest word, word count, then alphanumeric purity.
func (f *Filter) Check(c *document.Candidate) Reason {
	if len(c.SurfaceForms) == 0 || len(c.SurfaceForms[0]) == 0 {
		return Empty
	}

	words := make([]string, len(c.SurfaceForms[0]))
	for i, w := range c.SurfaceForms[0] {
		words[i] = strings.ToLower(w)
	}
	var tags []string
	if len(c.POSPatterns) > 0 {
		tags = c.POSPatterns[0]
	}

	switch {
	case f.anyStopword(words):
		return Stopword
	case f.anyBlacklisted(tags):
		return BlacklistedPOS
	case anyPunctuationOnly(words):
		return Punctuation
	case utf8.RuneCountInString(strings.Join(words, "")) < f.cfg.MinLength:
		return TooShort
	case shortestWord(words) < f.cfg.MinWordSize:
		return ShortWord
	case f.cfg.MaxWords > 0 && len(c.LexicalForm) > f.cfg.MaxWords:
		return TooManyWords
	}

	if f.cfg.OnlyAlphanum {
		for _, w := range words {
			if !isAlphanum(f.strip(w)) {
				return NotAlphanumeric
			}
		}
	}
	return Kept
}

func (f *Filter) anyStopword(words []string) bool {
	for _, w := range words {
		if _, ok := f.stops[w]; ok {
			return true
		}
	}
	return false
}

func (f *Filter) anyBlacklisted(tags []string) bool {
	for _, tag := range tags {
		if _, ok := f.tags[tag]; ok {
			return true
		}
	}
	return false
}

// strip removes every allowed punctuation character from w.
func (f *Filter) strip(w string) string {
	if len(f.valid) == 0 {
		return w
	}
	return strings.Map(func(r rune) rune {
		if _, ok := f.valid[r]; ok {
			return -1
		}
		return r
	}, w)
}

// anyPunctuationOnly reports whether some word is made only of punctuation
// or symbol characters. The empty word counts, as in a subset test.
func anyPunctuationOnly(words []string) bool {
	for _, w := range words {
		only := true
		for _, r := range w {
			if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
				only = false
				break
			}
		}
		if only {
			return true
		}
	}
	return false
}

func shortestWord(words []string) int {
	shortest := utf8.RuneCountInString(words[0])
	for _, w := range words[1:] {
		if n := utf8.RuneCountInString(w); n < shortest {
			shortest = n
		}
	}
	return shortest
}

// isAlphanum reports whether w is non-empty and made of letters and digits.
func isAlphanum(w string) bool {
	if w == "" {
		return false
	}
	for _, r := range w {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}
