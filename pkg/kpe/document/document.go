// Package document holds the normalized document model shared by every
// stage of keyphrase extraction: the sentence stream, the candidate
// registry and the externally assigned candidate weights.
//
// A Document is owned by a single goroutine. Generators, the filter and the
// selector all receive it by pointer and mutate or read it in sequence.
package document

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedDocument reports a broken alignment invariant, either between
// a sentence's words, tags and stems or between a candidate's occurrence
// lists. Offsets computed from such data would be silently wrong, so callers
// treat it as fatal.
var ErrMalformedDocument = errors.New("malformed document state")

// Sentence is one normalized sentence. Words, POS and Stems are index
// aligned; Stems holds the lowercased stem or lemma of each word.
type Sentence struct {
	Words []string
	POS   []string
	Stems []string
	Meta  map[string]any
}

// Len returns the number of tokens in the sentence.
func (s Sentence) Len() int {
	return len(s.Words)
}

// Validate checks that the aligned sequences have equal length.
func (s Sentence) Validate() error {
	if len(s.POS) != len(s.Words) || len(s.Stems) != len(s.Words) {
		return fmt.Errorf("%w: sentence has %d words, %d tags, %d stems",
			ErrMalformedDocument, len(s.Words), len(s.POS), len(s.Stems))
	}
	return nil
}

// Candidate aggregates every occurrence of one lexical form. The four
// occurrence lists are index aligned.
type Candidate struct {
	SurfaceForms [][]string
	Offsets      []int
	SentenceIDs  []int
	POSPatterns  [][]string
	LexicalForm  []string
}

// Key returns the space-joined lexical form identifying the candidate.
func (c *Candidate) Key() string {
	return strings.Join(c.LexicalForm, " ")
}

// Occurrences returns how many times the candidate was registered.
func (c *Candidate) Occurrences() int {
	return len(c.SurfaceForms)
}

// Validate checks occurrence alignment and per-occurrence token counts.
func (c *Candidate) Validate() error {
	n := len(c.SurfaceForms)
	if len(c.Offsets) != n || len(c.SentenceIDs) != n || len(c.POSPatterns) != n {
		return fmt.Errorf("%w: candidate %q has %d surface forms, %d offsets, %d sentence ids, %d pos patterns",
			ErrMalformedDocument, c.Key(), n, len(c.Offsets), len(c.SentenceIDs), len(c.POSPatterns))
	}
	for i := 0; i < n; i++ {
		if len(c.SurfaceForms[i]) != len(c.LexicalForm) || len(c.POSPatterns[i]) != len(c.LexicalForm) {
			return fmt.Errorf("%w: candidate %q occurrence %d has %d words for %d stems",
				ErrMalformedDocument, c.Key(), i, len(c.SurfaceForms[i]), len(c.LexicalForm))
		}
	}
	return nil
}

// Document is the sentence sequence plus the candidate registry and weights.
type Document struct {
	Sentences  []Sentence
	Candidates map[string]*Candidate
	Weights    map[string]float64

	order  []string // candidate keys in first-registration order
	stale  bool     // order may still hold removed keys
	shifts []int    // shifts[i] = tokens in sentences [0,i)
}

// New creates an empty document.
func New() *Document {
	return &Document{
		Candidates: make(map[string]*Candidate),
		Weights:    make(map[string]float64),
		shifts:     []int{0},
	}
}

// AddSentence appends a sentence after validating its alignment.
func (d *Document) AddSentence(s Sentence) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("sentence %d: %w", len(d.Sentences), err)
	}
	if s.Meta == nil {
		s.Meta = make(map[string]any)
	}
	d.syncShifts()
	d.Sentences = append(d.Sentences, s)
	d.shifts = append(d.shifts, d.shifts[len(d.shifts)-1]+s.Len())
	return nil
}

// Shift returns the document-global offset of the first token of sentence i,
// the total length of all strictly preceding sentences.
func (d *Document) Shift(i int) int {
	d.syncShifts()
	return d.shifts[i]
}

// GlobalOffset converts a (sentence, token) position to a document offset.
func (d *Document) GlobalOffset(sentence, token int) int {
	return d.Shift(sentence) + token
}

// TokenCount returns the number of tokens in the whole document.
func (d *Document) TokenCount() int {
	d.syncShifts()
	return d.shifts[len(d.shifts)-1]
}

// syncShifts rebuilds the prefix sums when Sentences was assigned directly.
func (d *Document) syncShifts() {
	if len(d.shifts) == len(d.Sentences)+1 {
		return
	}
	d.shifts = make([]int, len(d.Sentences)+1)
	for i, s := range d.Sentences {
		d.shifts[i+1] = d.shifts[i] + s.Len()
	}
}

// AddCandidate registers one occurrence. The lexical form key is the
// space-joined stems; the candidate is created on first sight and every call
// appends the occurrence fields, so identical occurrences accumulate.
func (d *Document) AddCandidate(words, stems, pos []string, offset, sentenceID int) error {
	if len(words) != len(stems) || len(pos) != len(stems) {
		return fmt.Errorf("%w: occurrence at offset %d has %d words, %d stems, %d tags",
			ErrMalformedDocument, offset, len(words), len(stems), len(pos))
	}

	key := strings.Join(stems, " ")
	c, ok := d.Candidates[key]
	if !ok {
		d.compact()
		c = &Candidate{LexicalForm: cloneStrings(stems)}
		d.Candidates[key] = c
		d.order = append(d.order, key)
	}

	c.SurfaceForms = append(c.SurfaceForms, cloneStrings(words))
	c.POSPatterns = append(c.POSPatterns, cloneStrings(pos))
	c.Offsets = append(c.Offsets, offset)
	c.SentenceIDs = append(c.SentenceIDs, sentenceID)
	return nil
}

// Remove deletes a candidate and all of its occurrence data.
func (d *Document) Remove(key string) {
	if _, ok := d.Candidates[key]; !ok {
		return
	}
	delete(d.Candidates, key)
	d.stale = true
}

// Keys returns candidate keys in first-registration order.
func (d *Document) Keys() []string {
	d.compact()
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

func (d *Document) compact() {
	if !d.stale {
		return
	}
	kept := d.order[:0]
	for _, k := range d.order {
		if _, ok := d.Candidates[k]; ok {
			kept = append(kept, k)
		}
	}
	d.order = kept
	d.stale = false
}

// SetWeights replaces the weight mapping wholesale.
func (d *Document) SetWeights(weights map[string]float64) {
	d.Weights = make(map[string]float64, len(weights))
	for k, v := range weights {
		d.Weights[k] = v
	}
}

// Validate checks every sentence and candidate invariant.
func (d *Document) Validate() error {
	for i, s := range d.Sentences {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("sentence %d: %w", i, err)
		}
	}
	for _, key := range d.Keys() {
		if err := d.Candidates[key].Validate(); err != nil {
			return err
		}
	}
	return nil
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
