package filter

import (
	"strings"
	"testing"

	"github.com/cognicore/kpe/pkg/kpe/document"
)

// add registers words with lowercased stems and the given tags (NN when
// tags is empty).
func add(t *testing.T, doc *document.Document, words []string, tags ...string) string {
	t.Helper()
	stems := make([]string, len(words))
	for i, w := range words {
		stems[i] = strings.ToLower(w)
	}
	if len(tags) == 0 {
		tags = make([]string, len(words))
		for i := range tags {
			tags[i] = "NN"
		}
	}
	if err := doc.AddCandidate(words, stems, tags, 0, 0); err != nil {
		t.Fatalf("AddCandidate: %v", err)
	}
	return strings.Join(stems, " ")
}

func TestCheckRules(t *testing.T) {
	base := DefaultConfig()
	base.Stoplist = []string{"the", "of"}
	base.POSBlacklist = []string{"VB"}

	tests := []struct {
		name  string
		words []string
		tags  []string
		cfg   func(*Config)
		want  Reason
	}{
		{name: "plain noun phrase", words: []string{"neural", "network"}, want: Kept},
		{name: "stopword is case insensitive", words: []string{"The", "model"}, want: Stopword},
		{name: "blacklisted tag", words: []string{"run", "fast"}, tags: []string{"VB", "RB"}, want: BlacklistedPOS},
		{name: "punctuation only word", words: []string{"model", "--"}, want: Punctuation},
		{name: "symbol only word", words: []string{"$"}, want: Punctuation},
		{name: "too short overall", words: []string{"ab"}, want: TooShort},
		{name: "short word", words: []string{"a", "dog"}, want: ShortWord},
		{name: "too many words", words: []string{"aa", "bb", "cc", "dd", "ee", "ff"}, want: TooManyWords},
		{name: "hyphen allowed", words: []string{"well-known"}, want: Kept},
		{name: "apostrophe not allowed", words: []string{"model's"}, want: NotAlphanumeric},
		{name: "mixed case alphanumeric", words: []string{"New", "York"}, want: Kept},
		{name: "digits count as alphanumeric", words: []string{"gpt4"}, want: Kept},
		{name: "unicode letters", words: []string{"café"}, want: Kept},
		{
			name:  "alphanumeric check disabled",
			words: []string{"model's"},
			cfg:   func(c *Config) { c.OnlyAlphanum = false },
			want:  Kept,
		},
		{
			name:  "hyphen not allowed",
			words: []string{"well-known"},
			cfg:   func(c *Config) { c.ValidPunctuation = "" },
			want:  NotAlphanumeric,
		},
		{
			name:  "several allowed marks",
			words: []string{"c++/java"},
			cfg:   func(c *Config) { c.ValidPunctuation = "+ /" },
			want:  Kept,
		},
		{
			name:  "stoplist beats length",
			words: []string{"of"},
			want:  Stopword,
		},
		{
			name:  "max words zero disables the limit",
			words: []string{"aa", "bb", "cc", "dd", "ee", "ff"},
			cfg:   func(c *Config) { c.MaxWords = 0 },
			want:  Kept,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}
			doc := document.New()
			key := add(t, doc, tt.words, tt.tags...)

			got := New(cfg).Check(doc.Candidates[key])
			if got != tt.want {
				t.Errorf("Check(%v) = %v, want %v", tt.words, got, tt.want)
			}
		})
	}
}

func TestCheckEmptyCandidate(t *testing.T) {
	f := New(DefaultConfig())
	if got := f.Check(&document.Candidate{}); got != Empty {
		t.Errorf("no occurrences: got %v", got)
	}
	c := &document.Candidate{SurfaceForms: [][]string{{}}, POSPatterns: [][]string{{}}, Offsets: []int{0}, SentenceIDs: []int{0}}
	if got := f.Check(c); got != Empty {
		t.Errorf("zero-word occurrence: got %v", got)
	}
}

func TestOnlyFirstOccurrenceExamined(t *testing.T) {
	doc := document.New()
	if err := doc.AddCandidate([]string{"Model"}, []string{"model"}, []string{"NN"}, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := doc.AddCandidate([]string{"model"}, []string{"model"}, []string{"VB"}, 4, 1); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.POSBlacklist = []string{"VB"}
	res := Apply(doc, cfg)
	if res.Total() != 0 {
		t.Fatalf("later occurrence should not be examined, removed %v", res.Removed)
	}
	if doc.Candidates["model"].Occurrences() != 2 {
		t.Error("surviving candidate lost occurrences")
	}
}

func TestApplyRemovesAndIsIdempotent(t *testing.T) {
	doc := document.New()
	add(t, doc, []string{"a", "dog"})
	add(t, doc, []string{"neural", "network"})
	add(t, doc, []string{"the", "network"})
	add(t, doc, []string{"--"})

	cfg := DefaultConfig()
	cfg.Stoplist = []string{"the"}

	first := Apply(doc, cfg)
	if first.Examined != 4 {
		t.Errorf("Examined = %d, want 4", first.Examined)
	}
	if first.Total() != 3 {
		t.Errorf("removed %d, want 3 (%v)", first.Total(), first.Removed)
	}
	if first.Removed[ShortWord] != 1 || first.Removed[Stopword] != 1 || first.Removed[Punctuation] != 1 {
		t.Errorf("unexpected reasons %v", first.Removed)
	}
	if len(doc.Candidates) != 1 || doc.Candidates["neural network"] == nil {
		t.Errorf("unexpected survivors %v", doc.Keys())
	}

	second := Apply(doc, cfg)
	if second.Total() != 0 {
		t.Errorf("second pass removed %v", second.Removed)
	}
	if len(doc.Keys()) != 1 {
		t.Errorf("keys after second pass %v", doc.Keys())
	}
}

func TestReasonString(t *testing.T) {
	if ShortWord.String() != "min_word_size" {
		t.Errorf("ShortWord.String() = %q", ShortWord.String())
	}
	if Reason(99).String() != "unknown" {
		t.Errorf("unexpected name for unknown reason")
	}
}
