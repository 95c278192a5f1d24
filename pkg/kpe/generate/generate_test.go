package generate

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/cognicore/kpe/pkg/kpe/chunk"
	"github.com/cognicore/kpe/pkg/kpe/document"
)

// newDoc builds a document from sentences written as "word/TAG word/TAG";
// stems are the lowercased words.
func newDoc(t *testing.T, sentences ...string) *document.Document {
	t.Helper()
	doc := document.New()
	for _, line := range sentences {
		var s document.Sentence
		for _, tok := range strings.Fields(line) {
			i := strings.LastIndex(tok, "/")
			s.Words = append(s.Words, tok[:i])
			s.POS = append(s.POS, tok[i+1:])
			s.Stems = append(s.Stems, strings.ToLower(tok[:i]))
		}
		if err := doc.AddSentence(s); err != nil {
			t.Fatalf("AddSentence: %v", err)
		}
	}
	return doc
}

type span struct {
	key    string
	offset int
	sent   int
}

func occurrences(doc *document.Document) []span {
	var out []span
	for _, key := range doc.Keys() {
		c := doc.Candidates[key]
		for i := range c.Offsets {
			out = append(out, span{key: key, offset: c.Offsets[i], sent: c.SentenceIDs[i]})
		}
	}
	return out
}

func expectedNGrams(n, length int) int {
	total := 0
	for k := 1; k <= n && k <= length; k++ {
		total += length - k + 1
	}
	return total
}

func TestNGramsCount(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		length int
	}{
		{"trigrams long sentence", 3, 6},
		{"trigrams short sentence", 3, 2},
		{"unigrams", 1, 4},
		{"n equals length", 4, 4},
		{"single token", 3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words := make([]string, tt.length)
			for i := range words {
				words[i] = string(rune('a'+i)) + "/NN"
			}
			doc := newDoc(t, strings.Join(words, " "))

			got, err := NGrams(doc, tt.n)
			if err != nil {
				t.Fatalf("NGrams: %v", err)
			}
			if want := expectedNGrams(tt.n, tt.length); got != want {
				t.Errorf("got %d occurrences, want %d", got, want)
			}
		})
	}
}

func TestNGramsDefaultN(t *testing.T) {
	doc := newDoc(t, "a/X b/X c/X d/X e/X")
	got, err := NGrams(doc, 0)
	if err != nil {
		t.Fatalf("NGrams: %v", err)
	}
	if got != expectedNGrams(DefaultN, 5) {
		t.Errorf("got %d occurrences", got)
	}
}

func TestNGramsNeverCrossSentences(t *testing.T) {
	doc := newDoc(t, "a/X b/X", "c/X d/X e/X")
	if _, err := NGrams(doc, 3); err != nil {
		t.Fatalf("NGrams: %v", err)
	}

	if _, ok := doc.Candidates["b c"]; ok {
		t.Error("bigram crossing the sentence boundary was registered")
	}
	if _, ok := doc.Candidates["a b c"]; ok {
		t.Error("trigram crossing the sentence boundary was registered")
	}

	c := doc.Candidates["c d e"]
	if c == nil {
		t.Fatal("missing trigram in second sentence")
	}
	if !reflect.DeepEqual(c.Offsets, []int{2}) || !reflect.DeepEqual(c.SentenceIDs, []int{1}) {
		t.Errorf("offsets %v sentence ids %v", c.Offsets, c.SentenceIDs)
	}
	if got := doc.Candidates["d"].Offsets; !reflect.DeepEqual(got, []int{3}) {
		t.Errorf("unigram d offsets = %v, want [3]", got)
	}
}

func TestLongestPOSRuns(t *testing.T) {
	doc := newDoc(t, "w0/NN w1/NN w2/VB w3/NN")
	n, err := LongestPOS(doc, []string{"NN"})
	if err != nil {
		t.Fatalf("LongestPOS: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 occurrences, got %d", n)
	}

	want := []span{{"w0 w1", 0, 0}, {"w3", 3, 0}}
	if got := occurrences(doc); !reflect.DeepEqual(got, want) {
		t.Errorf("occurrences = %v, want %v", got, want)
	}
	if _, ok := doc.Candidates["w0 w1 w2 w3"]; ok {
		t.Error("run should not span the invalid token")
	}
}

func TestLongestPOSSentenceEdges(t *testing.T) {
	tests := []struct {
		name string
		doc  []string
		want []span
	}{
		{
			name: "whole sentence valid",
			doc:  []string{"a/NN b/JJ c/NN"},
			want: []span{{"a b c", 0, 0}},
		},
		{
			name: "last token invalid",
			doc:  []string{"a/NN b/NN c/VB"},
			want: []span{{"a b", 0, 0}},
		},
		{
			name: "single valid last token",
			doc:  []string{"a/VB b/NN"},
			want: []span{{"b", 1, 0}},
		},
		{
			name: "offsets shift across sentences",
			doc:  []string{"x/VB y/VB", "a/DT b/NN c/NN"},
			want: []span{{"b c", 3, 1}},
		},
		{
			name: "no valid tokens",
			doc:  []string{"a/VB b/DT"},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := newDoc(t, tt.doc...)
			if _, err := LongestPOS(doc, nil); err != nil {
				t.Fatalf("LongestPOS: %v", err)
			}
			if got := occurrences(doc); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("occurrences = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLongestKeywords(t *testing.T) {
	doc := newDoc(t, "Deep/JJ Learning/NN for/IN Graph/NN Mining/NN")
	n, err := LongestKeywords(doc, []string{"deep", "learning", "graph", "mining"})
	if err != nil {
		t.Fatalf("LongestKeywords: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 occurrences, got %d", n)
	}
	want := []span{{"deep learning", 0, 0}, {"graph mining", 3, 0}}
	if got := occurrences(doc); !reflect.DeepEqual(got, want) {
		t.Errorf("occurrences = %v, want %v", got, want)
	}
	c := doc.Candidates["graph mining"]
	if !reflect.DeepEqual(c.SurfaceForms[0], []string{"Graph", "Mining"}) {
		t.Errorf("surface form = %v", c.SurfaceForms[0])
	}
}

func TestLongestSequenceKeyLengthMismatch(t *testing.T) {
	doc := newDoc(t, "a/NN b/NN")
	short := func(s document.Sentence) []string { return s.POS[:1] }
	_, err := LongestSequence(doc, short, map[string]struct{}{"NN": {}})
	if !errors.Is(err, document.ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument, got %v", err)
	}
}

func TestGeneratorsRejectMalformedSentence(t *testing.T) {
	doc := document.New()
	doc.Sentences = []document.Sentence{{
		Words: []string{"a", "b"},
		POS:   []string{"NN"},
		Stems: []string{"a", "b"},
	}}

	if _, err := NGrams(doc, 2); !errors.Is(err, document.ErrMalformedDocument) {
		t.Errorf("NGrams: expected ErrMalformedDocument, got %v", err)
	}
	if _, err := LongestPOS(doc, nil); !errors.Is(err, document.ErrMalformedDocument) {
		t.Errorf("LongestPOS: expected ErrMalformedDocument, got %v", err)
	}
	if _, err := Grammar(doc, nil); !errors.Is(err, document.ErrMalformedDocument) {
		t.Errorf("Grammar: expected ErrMalformedDocument, got %v", err)
	}
}

func TestGrammarDefault(t *testing.T) {
	doc := newDoc(t,
		"The/DT model/NN learns/VBZ",
		"Efficient/JJ inference/NN of/IN latent/JJ variables/NNS is/VBZ hard/JJ",
	)
	n, err := Grammar(doc, nil)
	if err != nil {
		t.Fatalf("Grammar: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 occurrences, got %d", n)
	}

	want := []span{
		{"model", 1, 0},
		{"efficient inference", 3, 1},
		{"latent variables", 6, 1},
	}
	if got := occurrences(doc); !reflect.DeepEqual(got, want) {
		t.Errorf("occurrences = %v, want %v", got, want)
	}
}

func TestGrammarPrepositionalPhrase(t *testing.T) {
	doc := newDoc(t, "x/VB inference/NN of/IN latent/JJ variables/NNS")
	parser := chunk.MustCompile(`
NBAR: {<NN.*|JJ.*>*<NN.*>}
NP:   {<NBAR><IN><NBAR>}
`)
	if _, err := Grammar(doc, parser); err != nil {
		t.Fatalf("Grammar: %v", err)
	}
	c := doc.Candidates["inference of latent variables"]
	if c == nil {
		t.Fatalf("missing prepositional NP, have %v", doc.Keys())
	}
	if !reflect.DeepEqual(c.Offsets, []int{1}) {
		t.Errorf("offsets = %v", c.Offsets)
	}
}

type fixedParser struct{ tree *chunk.Tree }

func (p fixedParser) Parse([]chunk.Token) (*chunk.Tree, error) { return p.tree, nil }

func TestGrammarCustomParser(t *testing.T) {
	doc := newDoc(t, "a/X b/X c/X")
	leaf := func(i int) *chunk.Tree { return &chunk.Tree{Leaf: &chunk.Token{Index: i, Tag: "X"}} }
	tree := &chunk.Tree{Label: "S", Children: []*chunk.Tree{
		{Label: NounPhraseLabel, Children: []*chunk.Tree{
			leaf(0),
			{Label: NounPhraseLabel, Children: []*chunk.Tree{leaf(1)}},
		}},
		leaf(2),
	}}

	if _, err := Grammar(doc, fixedParser{tree}); err != nil {
		t.Fatalf("Grammar: %v", err)
	}
	want := []span{{"a b", 0, 0}, {"b", 1, 0}}
	if got := occurrences(doc); !reflect.DeepEqual(got, want) {
		t.Errorf("occurrences = %v, want %v", got, want)
	}
}

func TestGrammarRejectsOutOfRangeSpan(t *testing.T) {
	doc := newDoc(t, "a/X")
	tree := &chunk.Tree{Label: "S", Children: []*chunk.Tree{
		{Label: NounPhraseLabel, Children: []*chunk.Tree{{Leaf: &chunk.Token{Index: 5, Tag: "X"}}}},
	}}
	if _, err := Grammar(doc, fixedParser{tree}); err == nil {
		t.Error("expected error for span outside the sentence")
	}
}

func TestGeneratorsShareRegistry(t *testing.T) {
	doc := newDoc(t, "neural/JJ network/NN")
	if _, err := NGrams(doc, 2); err != nil {
		t.Fatalf("NGrams: %v", err)
	}
	if _, err := LongestPOS(doc, nil); err != nil {
		t.Fatalf("LongestPOS: %v", err)
	}
	c := doc.Candidates["neural network"]
	if c.Occurrences() != 2 {
		t.Errorf("expected both generators to append, got %d occurrences", c.Occurrences())
	}
	if err := doc.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
