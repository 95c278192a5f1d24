package kpe

import (
	"fmt"
	"log/slog"

	"github.com/cognicore/kpe/pkg/kpe/config"
	"github.com/cognicore/kpe/pkg/kpe/generate"
	"github.com/cognicore/kpe/pkg/kpe/ingest"
	"github.com/cognicore/kpe/pkg/kpe/rank"
	"github.com/cognicore/kpe/pkg/kpe/store"
	"github.com/cognicore/kpe/pkg/kpe/weight"
)

// OptionsFromConfig assembles extractor options from a validated config and
// its loaded components. When st is not nil it receives every extraction and
// supplies the document frequencies for tfidf weighting.
func OptionsFromConfig(cfg config.Config, comp *config.Components, st store.Store, log *slog.Logger) (Options, error) {
	format, err := ingest.ParseFormat(cfg.Normalize.Format)
	if err != nil {
		return Options{}, err
	}
	method, err := generate.ParseMethod(cfg.Selection.Method)
	if err != nil {
		return Options{}, err
	}

	opts := Options{
		Format:        format,
		ReaderOptions: ingest.Options{Sep: cfg.Normalize.Sep},
		Normalizer: ingest.Normalizer{
			Stemmer:   comp.Stemmer,
			UseLemmas: cfg.Normalize.UseLemmas,
		},
		Method:   method,
		N:        cfg.Selection.N,
		ValidPOS: cfg.Selection.ValidPOS,
		Keywords: cfg.Selection.Keywords,
		Parser:   comp.Parser,
		Filter:   comp.Filter,
		Selector: rank.Selector{
			RedundancyRemoval:  cfg.Output.RedundancyRemoval,
			Stemming:           cfg.Output.Stemming,
			MinRedundantLength: cfg.Output.MinRedundantLength,
		},
		TopN:   cfg.Output.TopN,
		Store:  st,
		Logger: log,
	}

	switch cfg.Weighting.Method {
	case config.WeightTFIDF:
		if st == nil {
			return Options{}, fmt.Errorf("tfidf weighting needs a document frequency store")
		}
		opts.Weighter = weight.TFIDF{DF: st}
	default:
		opts.Weighter = weight.Frequency{}
	}
	return opts, nil
}
