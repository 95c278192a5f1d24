package kpe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/cognicore/kpe/pkg/kpe/config"
	"github.com/cognicore/kpe/pkg/kpe/document"
	"github.com/cognicore/kpe/pkg/kpe/filter"
	"github.com/cognicore/kpe/pkg/kpe/generate"
	"github.com/cognicore/kpe/pkg/kpe/ingest"
	"github.com/cognicore/kpe/pkg/kpe/metrics"
	"github.com/cognicore/kpe/pkg/kpe/stoplist"
	"github.com/cognicore/kpe/pkg/kpe/store/memstore"
	"github.com/cognicore/kpe/pkg/kpe/weight"
)

const tagged = `Neural/JJ networks/NNS learn/VBP graph/NN structure/NN ./.
Graph/NN structure/NN matters/VBZ ./.
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultFilter() filter.Config {
	cfg := filter.DefaultConfig()
	cfg.Stoplist = stoplist.NewManager(stoplist.English(), stoplist.Punctuation()).All()
	return cfg
}

func TestExtractPipeline(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	st := memstore.New()

	ex, err := New(Options{
		Format:  ingest.FormatPreprocessed,
		Method:  generate.MethodPOS,
		Filter:  defaultFilter(),
		TopN:    2,
		Store:   st,
		Metrics: m,
		Logger:  quietLogger(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := ex.Extract(context.Background(), TextInput("doc.txt", tagged))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	var texts []string
	for _, kp := range res.Keyphrases {
		texts = append(texts, kp.Text)
	}
	if want := []string{"graph structure", "neural networks"}; !reflect.DeepEqual(texts, want) {
		t.Errorf("keyphrases = %v, want %v", texts, want)
	}
	if res.Keyphrases[0].Weight != 2 {
		t.Errorf("top weight = %v, want 2", res.Keyphrases[0].Weight)
	}
	if res.Generated != 3 || res.Candidates != 2 || res.Shortfall != 0 {
		t.Errorf("counts: generated=%d candidates=%d shortfall=%d", res.Generated, res.Candidates, res.Shortfall)
	}
	if len(res.ID) != 26 || res.Source != "doc.txt" {
		t.Errorf("id=%q source=%q", res.ID, res.Source)
	}

	saved, ok, err := st.Keyphrases(context.Background(), res.ID)
	if err != nil || !ok {
		t.Fatalf("stored extraction: ok=%v err=%v", ok, err)
	}
	if len(saved.Keyphrases) != 2 || saved.Keyphrases[0].LexicalForm != "graph structure" || saved.Source != "doc.txt" {
		t.Errorf("stored = %+v", saved)
	}

	if got := testutil.ToFloat64(m.CandidatesGenerated.WithLabelValues("pos")); got != 3 {
		t.Errorf("generated metric = %v", got)
	}
	if got := testutil.ToFloat64(m.KeyphrasesSelected); got != 2 {
		t.Errorf("selected metric = %v", got)
	}
	if got := testutil.ToFloat64(m.DocumentsTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("documents metric = %v", got)
	}
}

func TestExtractFiltersAndReportsShortfall(t *testing.T) {
	ex, err := New(Options{
		Format: ingest.FormatPreprocessed,
		Method: generate.MethodNGram,
		N:      2,
		Filter: filter.DefaultConfig(),
		TopN:   50,
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}

	res, err := ex.Extract(context.Background(), TextInput("", tagged))
	if err != nil {
		t.Fatal(err)
	}
	if res.Shortfall != 50-len(res.Keyphrases) {
		t.Errorf("shortfall = %d with %d keyphrases", res.Shortfall, len(res.Keyphrases))
	}
	if res.Filtered["punctuation"] == 0 {
		t.Errorf("expected punctuation removals, got %v", res.Filtered)
	}
	for _, kp := range res.Keyphrases {
		if strings.Contains(kp.Text, ".") {
			t.Errorf("punctuation survived in %q", kp.Text)
		}
	}
}

type pluralStemmer struct{}

func (pluralStemmer) Stem(w string) string { return strings.TrimSuffix(w, "s") }

func TestExtractKeywordsAreNormalized(t *testing.T) {
	ex, err := New(Options{
		Format:     ingest.FormatPreprocessed,
		Normalizer: ingest.Normalizer{Stemmer: pluralStemmer{}},
		Method:     generate.MethodKeywords,
		Keywords:   []string{"Graphs", " rules ", ""},
		Filter:     filter.DefaultConfig(),
		Logger:     quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}

	res, err := ex.Extract(context.Background(), TextInput("", "Graphs/NNS rule/VBP today/NN ./."))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Keyphrases) != 1 || res.Keyphrases[0].Text != "graphs rule" || res.Keyphrases[0].LexicalForm != "graph rule" {
		t.Errorf("keyphrases = %+v", res.Keyphrases)
	}
}

func TestExtractMissingLemmasFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	ex, err := New(Options{
		Normalizer: ingest.Normalizer{UseLemmas: true},
		Metrics:    m,
		Logger:     quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}

	in := Input{Sentences: []ingest.RawSentence{{Words: []string{"graph"}, POS: []string{"NN"}}}}
	_, err = ex.Extract(context.Background(), in)
	if !errors.Is(err, document.ErrMalformedDocument) {
		t.Errorf("expected ErrMalformedDocument, got %v", err)
	}
	if got := testutil.ToFloat64(m.DocumentsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("error metric = %v", got)
	}
}

func TestNewRejectsBadOptions(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := New(Options{Method: "tfidf"}); err == nil {
		t.Error("expected error for unknown method")
	}
	if _, err := New(Options{Method: generate.MethodKeywords}); err == nil {
		t.Error("expected error for keywords without keywords")
	}
}

func TestExtractBatch(t *testing.T) {
	ex, err := New(Options{
		Format: ingest.FormatPreprocessed,
		Method: generate.MethodPOS,
		Filter: defaultFilter(),
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}

	inputs := []Input{
		TextInput("a", "Graph/NN theory/NN ./."),
		TextInput("b", tagged),
		BytesInput("c", []byte("Deep/JJ learning/NN works/VBZ ./.")),
	}
	results, err := ex.ExtractBatch(context.Background(), inputs, 2)
	if err != nil {
		t.Fatalf("ExtractBatch: %v", err)
	}

	ids := make(map[string]bool)
	for i, res := range results {
		if res.Source != inputs[i].Source {
			t.Errorf("result %d source = %q", i, res.Source)
		}
		ids[res.ID] = true
	}
	if len(ids) != 3 {
		t.Errorf("ids not unique: %v", ids)
	}
	if results[0].Keyphrases[0].Text != "graph theory" || results[2].Keyphrases[0].Text != "deep learning" {
		t.Errorf("unexpected results %+v", results)
	}

	inputs = append(inputs, Input{Source: "empty"})
	if _, err := ex.ExtractBatch(context.Background(), inputs, 0); err == nil {
		t.Error("expected error for input without body")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Normalize.Format = "preprocessed"
	cfg.Normalize.Stemmer = "none"
	cfg.Selection.Method = "pos"
	cfg.Weighting.Method = config.WeightTFIDF
	cfg.Output.TopN = 1

	comp, err := (&config.Loader{Config: cfg}).Load()
	if err != nil {
		t.Fatal(err)
	}

	if _, err := OptionsFromConfig(cfg, comp, nil, quietLogger()); err == nil {
		t.Error("tfidf without a store should fail")
	}

	ctx := context.Background()
	st := memstore.New()
	if err := st.UpsertDocFreqs(ctx, map[string]int64{"graph structure": 9, "neural networks": 0}); err != nil {
		t.Fatal(err)
	}
	if err := st.SetTotalDocs(ctx, 9); err != nil {
		t.Fatal(err)
	}

	opts, err := OptionsFromConfig(cfg, comp, st, quietLogger())
	if err != nil {
		t.Fatalf("OptionsFromConfig: %v", err)
	}
	if _, ok := opts.Weighter.(weight.TFIDF); !ok {
		t.Errorf("weighter = %T, want weight.TFIDF", opts.Weighter)
	}

	ex, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	res, err := ex.Extract(ctx, TextInput("doc", tagged))
	if err != nil {
		t.Fatal(err)
	}
	// "graph structure" occurs in every corpus document, so the rarer
	// phrase wins despite its lower frequency.
	if len(res.Keyphrases) != 1 || res.Keyphrases[0].Text != "neural networks" {
		t.Errorf("keyphrases = %+v", res.Keyphrases)
	}
	if _, ok, _ := st.Keyphrases(ctx, res.ID); !ok {
		t.Error("extraction not stored")
	}
}

func TestCandidates(t *testing.T) {
	st := memstore.New()
	ex, err := New(Options{
		Format: ingest.FormatPreprocessed,
		Method: generate.MethodPOS,
		Filter: defaultFilter(),
		Store:  st,
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}

	keys, err := ex.Candidates(context.Background(), TextInput("doc", tagged))
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"neural networks", "graph structure"}; !reflect.DeepEqual(keys, want) {
		t.Errorf("Candidates = %v, want %v", keys, want)
	}
}
