// Package generate populates a document's candidate registry. Three
// independent strategies are provided: contiguous n-grams, longest runs of
// valid tokens, and noun phrases found by a shallow parser. Every generator
// may be run on the same document; they all write into the one registry.
package generate

import (
	"fmt"

	"github.com/cognicore/kpe/pkg/kpe/chunk"
	"github.com/cognicore/kpe/pkg/kpe/document"
)

// DefaultN is the default maximum n-gram length.
const DefaultN = 3

// NounPhraseLabel is the constituent label the grammar generator collects.
const NounPhraseLabel = "NP"

// DefaultValidPOS are the Penn tags kept by LongestPOS when none are given.
var DefaultValidPOS = []string{"NN", "NNS", "NNP", "NNPS", "JJ", "JJR", "JJS"}

// KeyFunc maps a sentence to one key per token. LongestSequence keeps the
// tokens whose key is in the valid set.
type KeyFunc func(s document.Sentence) []string

// ByPOS keys tokens by part-of-speech tag.
func ByPOS(s document.Sentence) []string { return s.POS }

// ByStem keys tokens by normalized form.
func ByStem(s document.Sentence) []string { return s.Stems }

// NGrams registers every contiguous span of 1..n tokens inside each
// sentence. Spans never cross a sentence boundary. It returns the number of
// occurrences registered.
func NGrams(doc *document.Document, n int) (int, error) {
	if n <= 0 {
		n = DefaultN
	}

	count := 0
	for i, s := range doc.Sentences {
		if err := s.Validate(); err != nil {
			return count, fmt.Errorf("ngrams: sentence %d: %w", i, err)
		}
		shift := doc.Shift(i)
		for j := 0; j < s.Len(); j++ {
			for k := j + 1; k <= j+n && k <= s.Len(); k++ {
				if err := register(doc, s, j, k, shift, i); err != nil {
					return count, err
				}
				count++
			}
		}
	}
	return count, nil
}

// LongestSequence registers every maximal run of tokens whose key is in
// valid, one occurrence per run. Sub-runs are never registered.
//
// A run is flushed by the first invalid token after it or by the sentence
// end. The occurrence offset is the document offset of the run's first
// token.
func LongestSequence(doc *document.Document, key KeyFunc, valid map[string]struct{}) (int, error) {
	count := 0
	for i, s := range doc.Sentences {
		if err := s.Validate(); err != nil {
			return count, fmt.Errorf("longest sequence: sentence %d: %w", i, err)
		}
		keys := key(s)
		if len(keys) != s.Len() {
			return count, fmt.Errorf("longest sequence: sentence %d: %w: %d keys for %d tokens",
				i, document.ErrMalformedDocument, len(keys), s.Len())
		}

		shift := doc.Shift(i)
		var run []int
		for j, value := range keys {
			if _, ok := valid[value]; ok {
				run = append(run, j)
				if j < s.Len()-1 {
					continue
				}
			}

			if len(run) > 0 {
				first, last := run[0], run[len(run)-1]
				if err := register(doc, s, first, last+1, shift, i); err != nil {
					return count, err
				}
				count++
			}
			run = run[:0]
		}
	}
	return count, nil
}

// LongestPOS registers maximal runs of tokens tagged with one of validPOS,
// or DefaultValidPOS when validPOS is empty.
func LongestPOS(doc *document.Document, validPOS []string) (int, error) {
	if len(validPOS) == 0 {
		validPOS = DefaultValidPOS
	}
	return LongestSequence(doc, ByPOS, toSet(validPOS))
}

// LongestKeywords registers maximal runs of tokens whose normalized form is
// one of keywords.
func LongestKeywords(doc *document.Document, keywords []string) (int, error) {
	return LongestSequence(doc, ByStem, toSet(keywords))
}

// Grammar runs parser over each sentence's tags and registers the span of
// every NP constituent, outermost first. Nested NPs are each registered.
func Grammar(doc *document.Document, parser chunk.Parser) (int, error) {
	if parser == nil {
		parser = chunk.MustCompile(chunk.DefaultGrammar)
	}

	count := 0
	for i, s := range doc.Sentences {
		if err := s.Validate(); err != nil {
			return count, fmt.Errorf("grammar: sentence %d: %w", i, err)
		}

		tagged := make([]chunk.Token, s.Len())
		for j, tag := range s.POS {
			tagged[j] = chunk.Token{Index: j, Tag: tag}
		}
		tree, err := parser.Parse(tagged)
		if err != nil {
			return count, fmt.Errorf("grammar: sentence %d: %w", i, err)
		}

		shift := doc.Shift(i)
		for _, st := range tree.Subtrees() {
			if st.Label != NounPhraseLabel {
				continue
			}
			leaves := st.Leaves()
			if len(leaves) == 0 {
				continue
			}
			first, last := leaves[0].Index, leaves[len(leaves)-1].Index
			if first < 0 || last >= s.Len() || first > last {
				return count, fmt.Errorf("grammar: sentence %d: parser returned span [%d,%d] outside %d tokens",
					i, first, last, s.Len())
			}
			if err := register(doc, s, first, last+1, shift, i); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

// register adds the span [j,k) of sentence s (index id) to the registry.
func register(doc *document.Document, s document.Sentence, j, k, shift, id int) error {
	return doc.AddCandidate(s.Words[j:k], s.Stems[j:k], s.POS[j:k], shift+j, id)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
