package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cognicore/kpe/internal/logger"
	"github.com/cognicore/kpe/pkg/kpe"
	"github.com/cognicore/kpe/pkg/kpe/config"
	"github.com/cognicore/kpe/pkg/kpe/metrics"
	"github.com/cognicore/kpe/pkg/kpe/store"
	"github.com/cognicore/kpe/pkg/kpe/store/sqlite"
)

var extractFlags struct {
	json        bool
	workers     int
	metricsAddr string
}

var extractCmd = &cobra.Command{
	Use:   "extract [file...]",
	Short: "Extract keyphrases from documents",
	Long: `Extract keyphrases from each file ("-" or no argument reads stdin).

Documents are processed in parallel. With a database configured, every
extraction is stored and tfidf weighting reads document frequencies from it.`,
	RunE: runExtract,
}

func init() {
	f := extractCmd.Flags()
	f.String("method", "", "candidate selection: ngram, pos, keywords, grammar")
	f.Int("n", 0, "maximum n-gram length")
	f.StringSlice("keywords", nil, "keywords for the keywords method")
	f.Int("top", 0, "number of keyphrases per document")
	f.Bool("redundancy", false, "drop candidates contained in a better one")
	f.String("format", "", "input format: raw, html, preprocessed, pipeline")
	f.String("weighting", "", "weighting: frequency, tfidf")
	f.String("db", "", "sqlite database for document frequencies and results")
	f.BoolVar(&extractFlags.json, "json", false, "print results as JSON")
	f.IntVar(&extractFlags.workers, "workers", runtime.NumCPU(), "documents processed in parallel")
	f.StringVar(&extractFlags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")

	_ = viper.BindPFlag("selection.method", f.Lookup("method"))
	_ = viper.BindPFlag("selection.n", f.Lookup("n"))
	_ = viper.BindPFlag("selection.keywords", f.Lookup("keywords"))
	_ = viper.BindPFlag("output.topn", f.Lookup("top"))
	_ = viper.BindPFlag("output.redundancyremoval", f.Lookup("redundancy"))
	_ = viper.BindPFlag("normalize.format", f.Lookup("format"))
	_ = viper.BindPFlag("weighting.method", f.Lookup("weighting"))
	_ = viper.BindPFlag("weighting.database", f.Lookup("db"))

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ex, cleanup, err := buildExtractor(ctx, cfg, prometheus.NewRegistry(), extractFlags.metricsAddr)
	if err != nil {
		return err
	}
	defer cleanup()

	inputs, err := readInputs(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	results, err := ex.ExtractBatch(ctx, inputs, extractFlags.workers)
	if err != nil {
		return err
	}
	return printResults(cmd.OutOrStdout(), results, extractFlags.json)
}

// buildExtractor wires config, store and metrics into an Extractor. The
// returned cleanup closes the store and stops the metrics server.
func buildExtractor(ctx context.Context, cfg config.Config, reg *prometheus.Registry, metricsAddr string) (*kpe.Extractor, func(), error) {
	comp, err := (&config.Loader{Config: cfg}).Load()
	if err != nil {
		return nil, nil, err
	}

	var st store.Store
	if cfg.Weighting.Database != "" {
		if st, err = sqlite.OpenSQLite(ctx, cfg.Weighting.Database); err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
	}

	opts, err := kpe.OptionsFromConfig(cfg, comp, st, logger.WithComponent("extract"))
	if err != nil {
		closeStore(st)
		return nil, nil, err
	}
	opts.Metrics = metrics.New(reg)

	ex, err := kpe.New(opts)
	if err != nil {
		closeStore(st)
		return nil, nil, err
	}

	var shutdown func(context.Context) error
	if metricsAddr != "" {
		shutdown = metrics.StartServer(metricsAddr, reg)
	}
	cleanup := func() {
		if shutdown != nil {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = shutdown(sctx)
			cancel()
		}
		closeStore(st)
	}
	return ex, cleanup, nil
}

func closeStore(st store.Store) {
	if st != nil {
		_ = st.Close()
	}
}

// readInputs loads every named file, or stdin for "-" and no arguments.
func readInputs(args []string, stdin io.Reader) ([]kpe.Input, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}
	inputs := make([]kpe.Input, 0, len(args))
	for _, path := range args {
		var data []byte
		var err error
		if path == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		inputs = append(inputs, kpe.BytesInput(path, data))
	}
	return inputs, nil
}

func printResults(w io.Writer, results []kpe.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, res := range results {
		fmt.Fprintf(w, "%s (%s)\n", res.Source, res.ID)
		for i, kp := range res.Keyphrases {
			fmt.Fprintf(w, "  %2d. %-40s %.4f\n", i+1, kp.Text, kp.Weight)
		}
		if res.Shortfall > 0 {
			fmt.Fprintf(w, "  (%d fewer than requested)\n", res.Shortfall)
		}
	}
	return nil
}
