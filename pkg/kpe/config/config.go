package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/kpe/pkg/kpe/filter"
	"github.com/cognicore/kpe/pkg/kpe/generate"
	"github.com/cognicore/kpe/pkg/kpe/ingest"
)

// ErrInvalidConfig reports a configuration value outside its allowed range.
var ErrInvalidConfig = errors.New("invalid config")

// Weighting methods.
const (
	WeightFrequency = "frequency"
	WeightTFIDF     = "tfidf"
)

// Config is the complete extraction configuration.
type Config struct {
	Selection Selection     `yaml:"selection"`
	Filter    filter.Config `yaml:"filter"`
	Weighting Weighting     `yaml:"weighting"`
	Output    Output        `yaml:"output"`
	Normalize Normalize     `yaml:"normalize"`
	Logging   Logging       `yaml:"logging"`
}

// Selection chooses the candidate generator.
type Selection struct {
	Method   string   `yaml:"method"`
	N        int      `yaml:"n"`
	ValidPOS []string `yaml:"validPOS"`
	Keywords []string `yaml:"keywords"`
	// Grammar is an inline chunk grammar; GrammarPath loads one from a file.
	Grammar     string `yaml:"grammar"`
	GrammarPath string `yaml:"grammarPath"`
}

// Weighting chooses how candidates are scored.
type Weighting struct {
	Method string `yaml:"method"`
	// Database is the sqlite file holding document frequencies for tfidf.
	Database string `yaml:"database"`
}

// Output controls n-best selection.
type Output struct {
	TopN               int  `yaml:"topN"`
	RedundancyRemoval  bool `yaml:"redundancyRemoval"`
	MinRedundantLength int  `yaml:"minRedundantLength"`
	Stemming           bool `yaml:"stemming"`
}

// Normalize controls input reading and stem derivation.
type Normalize struct {
	Format string `yaml:"format"`
	Sep    string `yaml:"sep"`
	// Stemmer is a Snowball language, or "none" to keep surface forms.
	Stemmer   string `yaml:"stemmer"`
	UseLemmas bool   `yaml:"useLemmas"`
	// StoplistPath points at a YAML terms list replacing the built-in one.
	StoplistPath string `yaml:"stoplistPath"`
}

// Logging configures the process logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Selection: Selection{
			Method:   string(generate.MethodNGram),
			N:        generate.DefaultN,
			ValidPOS: append([]string(nil), generate.DefaultValidPOS...),
		},
		Filter:    filter.DefaultConfig(),
		Weighting: Weighting{Method: WeightFrequency},
		Output:    Output{TopN: 10, MinRedundantLength: 1},
		Normalize: Normalize{Format: string(ingest.FormatRaw), Sep: "/", Stemmer: "english"},
		Logging:   Logging{Level: "info", Format: "text"},
	}
}

// Load reads a YAML configuration file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	method, err := generate.ParseMethod(c.Selection.Method)
	switch {
	case err != nil:
		bad("selection.method: %v", err)
	case method == generate.MethodNGram && c.Selection.N < 1:
		bad("selection.n must be at least 1, got %d", c.Selection.N)
	case method == generate.MethodKeywords && len(c.Selection.Keywords) == 0:
		bad("selection.keywords is empty")
	case method == generate.MethodGrammar && c.Selection.Grammar != "" && c.Selection.GrammarPath != "":
		bad("selection.grammar and selection.grammarPath are exclusive")
	}

	if c.Filter.MinLength < 0 || c.Filter.MinWordSize < 0 || c.Filter.MaxWords < 0 {
		bad("filter thresholds must not be negative")
	}

	switch c.Weighting.Method {
	case WeightFrequency:
	case WeightTFIDF:
		if c.Weighting.Database == "" {
			bad("weighting.database is required for tfidf")
		}
	default:
		bad("unknown weighting.method %q", c.Weighting.Method)
	}

	if c.Output.TopN < 1 {
		bad("output.topN must be at least 1, got %d", c.Output.TopN)
	}

	if _, err := ingest.ParseFormat(c.Normalize.Format); err != nil {
		bad("normalize.format: %v", err)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		bad("unknown logging.level %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		bad("unknown logging.format %q", c.Logging.Format)
	}

	return errors.Join(errs...)
}

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}
