package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/strandwise/internal/config"
	"github.com/abhisek/strandwise/internal/logging"
	"github.com/abhisek/strandwise/internal/store"
)

// cfg is loaded before every command runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "strandwise",
	Short: "Senior High School strand recommender",
	Long: "Strandwise recommends a Senior High School strand (STEM, ABM or HUMSS)\n" +
		"from questionnaire scores, using K nearest neighbors tuned by\n" +
		"stratified cross-validation on labelled survey data.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides STRANDWISE_DB env var)")
	pf.String("config", "", "Path to YAML config file (overrides STRANDWISE_CONFIG env var)")
	pf.String("log-level", "", "Log level: trace, debug, info, warn, error or disabled")
	pf.String("log-format", "", "Log format: json or console")

	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(datasetsCmd)
	rootCmd.AddCommand(tuneCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importBundleCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration, applies flag overrides, configures logging
// and tags the command context with a correlation ID.
func setup(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		c.Log.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		c.Log.Format = v
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	cfg = c

	lc := logging.DefaultConfig()
	lc.Level = c.Log.Level
	lc.Format = c.Log.Format
	lc.Caller = c.Log.Caller
	logging.Init(lc)

	id := logging.NewCorrelationID()
	cmd.SetContext(logging.WithCorrelationID(cmd.Context(), id))
	logging.Ctx(cmd.Context()).Debug().Str("command", cmd.CommandPath()).Msg("starting")
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured path, then STRANDWISE_DB env var and the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}
