package rank

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/cognicore/kpe/pkg/kpe/document"
)

// Keyphrase is one selected candidate.
type Keyphrase struct {
	Text        string  `json:"text"`
	Weight      float64 `json:"weight"`
	LexicalForm string  `json:"lexical_form"`
}

// Selection is the outcome of NBest.
type Selection struct {
	Keyphrases []Keyphrase
	Requested  int
}

// Shortfall returns how many keyphrases were requested but not available.
func (s Selection) Shortfall() int {
	if d := s.Requested - len(s.Keyphrases); d > 0 {
		return d
	}
	return 0
}

// Texts returns the rendered keyphrases in rank order.
func (s Selection) Texts() []string {
	out := make([]string, len(s.Keyphrases))
	for i, kp := range s.Keyphrases {
		out[i] = kp.Text
	}
	return out
}

// Selector extracts the best weighted candidates from a document.
type Selector struct {
	// RedundancyRemoval drops candidates contained in a better one.
	RedundancyRemoval bool
	// Stemming renders the lexical form instead of the first surface form.
	Stemming bool
	// MinRedundantLength is the minimum token count for a candidate to be
	// considered redundant. Values below 1 mean 1.
	MinRedundantLength int
	Logger             *slog.Logger
}

// NBest returns up to n candidates by descending weight. Candidates with
// equal weight keep their registration order. Weight keys with no
// registered candidate are ignored. A shorter list than requested is logged
// as a warning and reported through Selection.Shortfall.
func (s Selector) NBest(doc *document.Document, n int) Selection {
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}

	best := sorted(doc, log)

	if s.RedundancyRemoval {
		minLen := s.MinRedundantLength
		if minLen < 1 {
			minLen = 1
		}
		var accepted []string
		var forms [][]string
		for _, key := range best {
			form := doc.Candidates[key].LexicalForm
			if IsRedundant(form, forms, minLen) {
				continue
			}
			accepted = append(accepted, key)
			forms = append(forms, form)
			if len(accepted) >= n {
				break
			}
		}
		best = accepted
	}

	if len(best) > n {
		best = best[:n]
	}

	sel := Selection{Requested: n, Keyphrases: make([]Keyphrase, 0, len(best))}
	for _, key := range best {
		sel.Keyphrases = append(sel.Keyphrases, Keyphrase{
			Text:        s.render(doc.Candidates[key]),
			Weight:      doc.Weights[key],
			LexicalForm: key,
		})
	}

	if sel.Shortfall() > 0 {
		log.Warn("not enough candidates to choose from",
			"requested", n, "given", len(sel.Keyphrases))
	}
	return sel
}

func (s Selector) render(c *document.Candidate) string {
	if s.Stemming || len(c.SurfaceForms) == 0 {
		return c.Key()
	}
	return strings.ToLower(strings.Join(c.SurfaceForms[0], " "))
}

// sorted returns the weighted, registered candidate keys by descending
// weight, ties in registration order.
func sorted(doc *document.Document, log *slog.Logger) []string {
	keys := make([]string, 0, len(doc.Weights))
	for _, key := range doc.Keys() {
		if _, ok := doc.Weights[key]; ok {
			keys = append(keys, key)
		}
	}
	if dropped := len(doc.Weights) - len(keys); dropped > 0 {
		log.Debug("ignoring weights without a candidate", "count", dropped)
	}

	sort.SliceStable(keys, func(i, j int) bool {
		return doc.Weights[keys[i]] > doc.Weights[keys[j]]
	})
	return keys
}
