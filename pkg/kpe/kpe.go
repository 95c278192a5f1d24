// Package kpe extracts keyphrases from documents. An Extractor reads an
// input, normalizes it, generates and filters candidates, weighs them and
// selects the n best.
package kpe

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/kpe/pkg/kpe/chunk"
	"github.com/cognicore/kpe/pkg/kpe/document"
	"github.com/cognicore/kpe/pkg/kpe/filter"
	"github.com/cognicore/kpe/pkg/kpe/generate"
	"github.com/cognicore/kpe/pkg/kpe/ingest"
	"github.com/cognicore/kpe/pkg/kpe/metrics"
	"github.com/cognicore/kpe/pkg/kpe/rank"
	"github.com/cognicore/kpe/pkg/kpe/store"
	"github.com/cognicore/kpe/pkg/kpe/weight"
)

// DefaultTopN is the number of keyphrases returned when Options.TopN is 0.
const DefaultTopN = 10

// Options configures an Extractor.
type Options struct {
	Format        ingest.Format
	ReaderOptions ingest.Options
	Normalizer    ingest.Normalizer

	Method   generate.Method
	N        int
	ValidPOS []string
	// Keywords are raw words; they are normalized like document tokens.
	Keywords []string
	Parser   chunk.Parser

	Filter   filter.Config
	Weighter weight.Weighter
	Selector rank.Selector
	TopN     int

	// Store, when set, receives every extraction.
	Store   store.Store
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Extractor runs the extraction pipeline. It holds no per-document state and
// is safe for concurrent use.
type Extractor struct {
	opts      Options
	selection generate.Selection
	filter    *filter.Filter
	log       *slog.Logger

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// New validates opts and builds an Extractor.
func New(opts Options) (*Extractor, error) {
	if opts.Format == "" {
		opts.Format = ingest.FormatRaw
	}
	if _, err := ingest.NewReader(opts.Format, opts.ReaderOptions); err != nil {
		return nil, err
	}
	if opts.Method == "" {
		opts.Method = generate.MethodNGram
	}
	if _, err := generate.ParseMethod(string(opts.Method)); err != nil {
		return nil, err
	}
	if opts.Method == generate.MethodKeywords && len(opts.Keywords) == 0 {
		return nil, errors.New("keywords method needs at least one keyword")
	}
	if opts.Weighter == nil {
		opts.Weighter = weight.Frequency{}
	}
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Normalizer.Logger == nil {
		opts.Normalizer.Logger = opts.Logger.With("component", "ingest")
	}
	if opts.Selector.Logger == nil {
		opts.Selector.Logger = opts.Logger.With("component", "rank")
	}

	return &Extractor{
		opts: opts,
		selection: generate.Selection{
			Method:   opts.Method,
			N:        opts.N,
			ValidPOS: opts.ValidPOS,
			Keywords: normalizeKeywords(opts.Normalizer, opts.Keywords),
			Parser:   opts.Parser,
		},
		filter:  filter.New(opts.Filter),
		log:     opts.Logger,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// normalizeKeywords maps keywords to the form the normalizer gives tokens.
func normalizeKeywords(n ingest.Normalizer, keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if !n.UseLemmas && n.Stemmer != nil {
			kw = n.Stemmer.Stem(kw)
		}
		out = append(out, strings.ToLower(kw))
	}
	return out
}

// Input is one document to process. Sentences, when non-nil, are used as is
// and Body is ignored.
type Input struct {
	Source    string
	Body      io.Reader
	Sentences []ingest.RawSentence
}

// TextInput wraps a string as an Input.
func TextInput(source, text string) Input {
	return Input{Source: source, Body: strings.NewReader(text)}
}

// BytesInput wraps a byte slice as an Input.
func BytesInput(source string, data []byte) Input {
	return Input{Source: source, Body: bytes.NewReader(data)}
}

// Result is the outcome of one extraction.
type Result struct {
	ID         string           `json:"id"`
	Source     string           `json:"source,omitempty"`
	Keyphrases []rank.Keyphrase `json:"keyphrases"`
	// Shortfall is how many keyphrases were requested but unavailable.
	Shortfall int `json:"shortfall"`
	// Generated counts registered occurrences, Candidates the distinct
	// candidates left after filtering.
	Generated  int            `json:"generated"`
	Candidates int            `json:"candidates"`
	Filtered   map[string]int `json:"filtered,omitempty"`
}

// Extract runs the whole pipeline on one document.
func (e *Extractor) Extract(ctx context.Context, in Input) (Result, error) {
	start := time.Now()
	res, err := e.extract(ctx, in)
	if m := e.opts.Metrics; m != nil {
		m.ObserveDuration(start)
		status := "ok"
		if err != nil {
			status = "error"
		}
		m.DocumentsTotal.WithLabelValues(status).Inc()
	}
	return res, err
}

func (e *Extractor) extract(ctx context.Context, in Input) (Result, error) {
	doc, generated, filtered, err := e.prepare(ctx, in)
	if err != nil {
		return Result{}, err
	}

	weights, err := e.opts.Weighter.Weigh(ctx, doc)
	if err != nil {
		return Result{}, fmt.Errorf("weigh %s: %w", in.Source, err)
	}
	doc.SetWeights(weights)

	sel := e.opts.Selector.NBest(doc, e.opts.TopN)

	res := Result{
		ID:         e.newID(),
		Source:     in.Source,
		Keyphrases: sel.Keyphrases,
		Shortfall:  sel.Shortfall(),
		Generated:  generated,
		Candidates: len(doc.Candidates),
		Filtered:   make(map[string]int, len(filtered.Removed)),
	}
	for reason, n := range filtered.Removed {
		res.Filtered[reason.String()] = n
	}

	e.log.Debug("extracted keyphrases",
		"source", in.Source,
		"sentences", len(doc.Sentences),
		"generated", generated,
		"filtered", filtered.Total(),
		"selected", len(res.Keyphrases))

	if e.opts.Store != nil {
		if err := e.opts.Store.SaveKeyphrases(ctx, toExtraction(res)); err != nil {
			return Result{}, fmt.Errorf("save %s: %w", in.Source, err)
		}
	}

	if m := e.opts.Metrics; m != nil {
		m.CandidatesGenerated.WithLabelValues(string(e.opts.Method)).Add(float64(generated))
		for reason, n := range filtered.Removed {
			m.CandidatesFiltered.WithLabelValues(reason.String()).Add(float64(n))
		}
		m.KeyphrasesSelected.Add(float64(len(res.Keyphrases)))
		if res.Shortfall > 0 {
			m.ShortfallsTotal.Inc()
		}
	}
	return res, nil
}

// Candidates returns the lexical forms that survive filtering, in
// registration order. Nothing is weighed or stored.
func (e *Extractor) Candidates(ctx context.Context, in Input) ([]string, error) {
	doc, _, _, err := e.prepare(ctx, in)
	if err != nil {
		return nil, err
	}
	return doc.Keys(), nil
}

// prepare reads, normalizes, generates and filters one document.
func (e *Extractor) prepare(ctx context.Context, in Input) (*document.Document, int, filter.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, filter.Result{}, err
	}

	raw := in.Sentences
	if raw == nil {
		if in.Body == nil {
			return nil, 0, filter.Result{}, fmt.Errorf("%s: no input", in.Source)
		}
		var err error
		raw, err = ingest.Read(e.opts.Format, in.Body, e.opts.ReaderOptions)
		if err != nil {
			return nil, 0, filter.Result{}, fmt.Errorf("read %s: %w", in.Source, err)
		}
	}

	doc, err := e.opts.Normalizer.Normalize(raw)
	if err != nil {
		return nil, 0, filter.Result{}, fmt.Errorf("normalize %s: %w", in.Source, err)
	}

	generated, err := e.selection.Run(doc)
	if err != nil {
		return nil, 0, filter.Result{}, fmt.Errorf("generate %s: %w", in.Source, err)
	}

	return doc, generated, e.filter.Apply(doc), nil
}

// ExtractBatch processes independent documents on up to workers goroutines.
// Results are returned in input order. The first error cancels the
// remaining work.
func (e *Extractor) ExtractBatch(ctx context.Context, inputs []Input, workers int) ([]Result, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]Result, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range inputs {
		i := i
		g.Go(func() error {
			res, err := e.Extract(ctx, inputs[i])
			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Extractor) newID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ulid.MustNew(ulid.Now(), e.entropy).String()
}

func toExtraction(res Result) store.Extraction {
	out := store.Extraction{
		DocID:      res.ID,
		Source:     res.Source,
		CreatedAt:  time.Now().UTC(),
		Keyphrases: make([]store.Keyphrase, len(res.Keyphrases)),
	}
	for i, kp := range res.Keyphrases {
		out.Keyphrases[i] = store.Keyphrase{Text: kp.Text, Weight: kp.Weight, LexicalForm: kp.LexicalForm}
	}
	return out
}
