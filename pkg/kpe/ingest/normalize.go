// Package ingest turns external text annotations into a normalized
// document: readers produce raw sentences and a Normalizer attaches stems.
package ingest

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cognicore/kpe/pkg/kpe/document"
	"github.com/cognicore/kpe/pkg/kpe/stem"
)

var (
	// ErrMissingAnnotation reports that lemmas were requested but a
	// sentence carries none.
	ErrMissingAnnotation = errors.New("missing annotation")
	// ErrFormat reports input a reader cannot parse.
	ErrFormat = errors.New("malformed input")
)

// RawSentence is one sentence as produced by a reader. Words and POS are
// index aligned; Lemmas is aligned too when present.
type RawSentence struct {
	Words  []string
	POS    []string
	Lemmas []string
	Meta   map[string]any
}

// Normalizer builds documents from raw sentences.
type Normalizer struct {
	// Stemmer produces stems when UseLemmas is false. A nil Stemmer keeps
	// the surface forms.
	Stemmer   stem.Stemmer
	UseLemmas bool
	Logger    *slog.Logger
}

// Normalize copies words, tags and meta into a new document and derives the
// lowercased stems. A sentence whose lemmas are missing is logged and kept
// with empty stems, so candidate generation later rejects it as malformed.
// Words and tags that disagree in length are an error.
func (n Normalizer) Normalize(raw []RawSentence) (*document.Document, error) {
	log := n.Logger
	if log == nil {
		log = slog.Default()
	}

	doc := document.New()
	for i, rs := range raw {
		if len(rs.POS) != len(rs.Words) {
			return nil, fmt.Errorf("sentence %d: %w: %d words, %d tags",
				i, document.ErrMalformedDocument, len(rs.Words), len(rs.POS))
		}

		s := document.Sentence{
			Words: append([]string(nil), rs.Words...),
			POS:   append([]string(nil), rs.POS...),
			Meta:  make(map[string]any, len(rs.Meta)),
		}
		for k, v := range rs.Meta {
			s.Meta[k] = v
		}

		stems, err := n.stems(rs)
		if err != nil {
			log.Error("cannot normalize sentence", "sentence", i, "error", err)
			doc.Sentences = append(doc.Sentences, s)
			continue
		}
		s.Stems = stems
		if err := doc.AddSentence(s); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func (n Normalizer) stems(rs RawSentence) ([]string, error) {
	out := make([]string, len(rs.Words))
	switch {
	case n.UseLemmas:
		if len(rs.Lemmas) != len(rs.Words) {
			return nil, fmt.Errorf("%w: lemmas requested, sentence has %d of %d",
				ErrMissingAnnotation, len(rs.Lemmas), len(rs.Words))
		}
		copy(out, rs.Lemmas)
	case n.Stemmer != nil:
		for i, w := range rs.Words {
			out[i] = n.Stemmer.Stem(w)
		}
	default:
		copy(out, rs.Words)
	}
	for i := range out {
		out[i] = strings.ToLower(out[i])
	}
	return out, nil
}
