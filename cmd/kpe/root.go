package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cognicore/kpe/internal/logger"
	"github.com/cognicore/kpe/pkg/kpe/config"
)

var version = "dev"

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "kpe",
	Short: "kpe - keyphrase candidate extraction",
	Long: `kpe extracts keyphrases from documents. It segments and tags text,
generates candidate phrases, prunes them with a rule-based filter, weighs
the survivors and keeps the n best.

Configuration hierarchy (highest to lowest priority):
  1. CLI flags
  2. Environment variables (KPE_*, e.g. KPE_OUTPUT_TOPN)
  3. Config file (--config, or ./kpe.yaml)
  4. Defaults`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "kpe %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./kpe.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("kpe")
	}

	// Read in environment variables that match KPE_*
	viper.SetEnvPrefix("KPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// overrides maps viper keys onto config fields. A key applies only when set
// by a flag, the environment or the config file.
var overrides = map[string]func(*config.Config){
	"selection.method":         func(c *config.Config) { c.Selection.Method = viper.GetString("selection.method") },
	"selection.n":              func(c *config.Config) { c.Selection.N = viper.GetInt("selection.n") },
	"selection.keywords":       func(c *config.Config) { c.Selection.Keywords = viper.GetStringSlice("selection.keywords") },
	"output.topn":              func(c *config.Config) { c.Output.TopN = viper.GetInt("output.topn") },
	"output.redundancyremoval": func(c *config.Config) { c.Output.RedundancyRemoval = viper.GetBool("output.redundancyremoval") },
	"output.stemming":          func(c *config.Config) { c.Output.Stemming = viper.GetBool("output.stemming") },
	"normalize.format":         func(c *config.Config) { c.Normalize.Format = viper.GetString("normalize.format") },
	"normalize.stemmer":        func(c *config.Config) { c.Normalize.Stemmer = viper.GetString("normalize.stemmer") },
	"normalize.uselemmas":      func(c *config.Config) { c.Normalize.UseLemmas = viper.GetBool("normalize.uselemmas") },
	"weighting.method":         func(c *config.Config) { c.Weighting.Method = viper.GetString("weighting.method") },
	"weighting.database":       func(c *config.Config) { c.Weighting.Database = viper.GetString("weighting.database") },
	"logging.level":            func(c *config.Config) { c.Logging.Level = viper.GetString("logging.level") },
	"logging.format":           func(c *config.Config) { c.Logging.Format = viper.GetString("logging.format") },
}

// loadConfig builds the effective configuration and installs the logger.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if path := viper.ConfigFileUsed(); path != "" {
		if _, err := os.Stat(path); err == nil {
			if cfg, err = config.Load(path); err != nil {
				return cfg, fmt.Errorf("load config: %w", err)
			}
		}
	}
	for key, apply := range overrides {
		if viper.IsSet(key) {
			apply(&cfg)
		}
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}
