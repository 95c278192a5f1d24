package generate

import (
	"fmt"
	"strings"

	"github.com/cognicore/kpe/pkg/kpe/chunk"
	"github.com/cognicore/kpe/pkg/kpe/document"
)

// Method names a candidate generator.
type Method string

const (
	MethodNGram    Method = "ngram"
	MethodPOS      Method = "pos"
	MethodKeywords Method = "keywords"
	MethodGrammar  Method = "grammar"
)

// Methods lists the available generators.
var Methods = []Method{MethodNGram, MethodPOS, MethodKeywords, MethodGrammar}

// ParseMethod resolves a generator name, ignoring case.
func ParseMethod(name string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Methods {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown selection method %q", name)
}

// Selection is a configured generator.
type Selection struct {
	Method   Method
	N        int
	ValidPOS []string
	// Keywords must already be normalized like the document stems.
	Keywords []string
	Parser   chunk.Parser
}

// Run registers the candidates of doc and returns the number of
// occurrences added.
func (s Selection) Run(doc *document.Document) (int, error) {
	switch s.Method {
	case MethodNGram:
		return NGrams(doc, s.N)
	case MethodPOS:
		return LongestPOS(doc, s.ValidPOS)
	case MethodKeywords:
		return LongestKeywords(doc, s.Keywords)
	case MethodGrammar:
		return Grammar(doc, s.Parser)
	}
	return 0, fmt.Errorf("unknown selection method %q", s.Method)
}
