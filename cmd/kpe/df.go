package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/cognicore/kpe/internal/logger"
	"github.com/cognicore/kpe/pkg/kpe/config"
	"github.com/cognicore/kpe/pkg/kpe/store/sqlite"
	"github.com/cognicore/kpe/pkg/kpe/weight"
)

var dfFlags struct {
	appendCounts bool
}

var dfCmd = &cobra.Command{
	Use:   "df --db FILE file...",
	Short: "Build a document frequency table from a corpus",
	Long: `Count, for every candidate lexical form, the number of corpus documents
containing it, and store the table in the sqlite database used by tfidf
weighting. Candidates are generated and filtered with the current
configuration, so build the table with the same settings used to extract.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDF,
}

func init() {
	f := dfCmd.Flags()
	f.String("db", "", "sqlite database to write")
	f.BoolVar(&dfFlags.appendCounts, "append", false, "add to the counts already stored")
	rootCmd.AddCommand(dfCmd)
}

func runDF(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dbPath := cfg.Weighting.Database
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		dbPath = db
	}
	if dbPath == "" {
		return fmt.Errorf("--db is required")
	}
	// Frequencies are being built, not read, and nothing is stored per document.
	cfg.Weighting = config.Weighting{Method: config.WeightFrequency}

	ex, cleanup, err := buildExtractor(ctx, cfg, prometheus.NewRegistry(), "")
	if err != nil {
		return err
	}
	defer cleanup()

	inputs, err := readInputs(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	log := logger.WithComponent("df")
	counter := weight.NewCounter()
	for _, in := range inputs {
		keys, err := ex.Candidates(ctx, in)
		if err != nil {
			return err
		}
		counter.AddDocument(keys)
		log.Debug("counted document", "source", in.Source, "candidates", len(keys))
	}

	st, err := sqlite.OpenSQLite(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	terms := counter.Terms()
	total, _ := counter.TotalDocs(ctx)
	if dfFlags.appendCounts {
		for term, df := range terms {
			prev, err := st.DocFreq(ctx, term)
			if err != nil {
				return err
			}
			terms[term] = prev + df
		}
		prev, err := st.TotalDocs(ctx)
		if err != nil {
			return err
		}
		total += prev
	}

	if err := st.UpsertDocFreqs(ctx, terms); err != nil {
		return fmt.Errorf("store document frequencies: %w", err)
	}
	if err := st.SetTotalDocs(ctx, total); err != nil {
		return fmt.Errorf("store corpus size: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d documents, %d terms written to %s\n", total, len(terms), dbPath)
	return nil
}
