package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/cognicore/kpe/pkg/kpe/chunk"
	"github.com/cognicore/kpe/pkg/kpe/filter"
	"github.com/cognicore/kpe/pkg/kpe/generate"
	"github.com/cognicore/kpe/pkg/kpe/stem"
	"github.com/cognicore/kpe/pkg/kpe/stoplist"
)

// Loader resolves the files and names referenced by a Config into ready
// components.
type Loader struct {
	Config Config
}

// Components holds all loaded configuration components
type Components struct {
	// Stemmer is nil when stemming is disabled.
	Stemmer  stem.Stemmer
	Stoplist *stoplist.Manager
	// Parser is nil unless the grammar method is selected.
	Parser chunk.Parser
	Filter filter.Config
}

// Load reads all referenced files and returns initialized components
func (l *Loader) Load() (*Components, error) {
	cfg := l.Config
	comp := &Components{}

	switch name := strings.ToLower(cfg.Normalize.Stemmer); name {
	case "", "none":
	default:
		sb, err := stem.NewSnowball(name)
		if err != nil {
			return nil, fmt.Errorf("load stemmer: %w", err)
		}
		comp.Stemmer = stem.NewCached(sb, 0)
	}

	if cfg.Normalize.StoplistPath != "" {
		sl, err := LoadStoplist(cfg.Normalize.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		comp.Stoplist = stoplist.NewManager(sl.Terms)
	} else {
		comp.Stoplist = stoplist.NewManager(stoplist.English(), stoplist.Punctuation())
	}
	for _, w := range cfg.Filter.Stoplist {
		comp.Stoplist.Add(w)
	}

	if method, _ := generate.ParseMethod(cfg.Selection.Method); method == generate.MethodGrammar {
		grammar := cfg.Selection.Grammar
		if cfg.Selection.GrammarPath != "" {
			data, err := os.ReadFile(cfg.Selection.GrammarPath)
			if err != nil {
				return nil, fmt.Errorf("load grammar: %w", err)
			}
			grammar = string(data)
		}
		if grammar == "" {
			grammar = chunk.DefaultGrammar
		}
		parser, err := chunk.Compile(grammar)
		if err != nil {
			return nil, fmt.Errorf("load grammar: %w", err)
		}
		comp.Parser = parser
	}

	comp.Filter = cfg.Filter
	comp.Filter.Stoplist = comp.Stoplist.All()
	return comp, nil
}
