// Command dsar runs the DSAR discovery and detection pipeline from the
// command line: ad-hoc scans of a file, catalog inspection, value masking and
// full discovery runs described by a YAML run file.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"dsar/internal/platform/config"
	"dsar/internal/platform/logger"
)

var version = "0.1.0"

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	logLevel  string
	logFormat string
	catalog   string
	json      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "dsar",
		Short: "Find a data subject's personal data across record systems",
		Long: "dsar queries configured record systems for one data subject, detects personal data " +
			"categories in what comes back and reports per-category findings with a legal hold " +
			"when special category data is found.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides DSAR_LOG_LEVEL)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "json or text (overrides DSAR_LOG_FORMAT)")
	cmd.PersistentFlags().StringVar(&opts.catalog, "catalog", "", "YAML file of extra patterns (overrides DSAR_CATALOG_FILE)")
	cmd.PersistentFlags().BoolVar(&opts.json, "json", false, "emit JSON")

	cmd.AddCommand(
		newScanCmd(opts),
		newPatternsCmd(opts),
		newMaskCmd(opts),
		newRunCmd(opts),
		newRelayCmd(opts),
	)
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies persistent flag overrides.
// Logs go to the command's stderr so stdout stays machine readable.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	if o.catalog != "" {
		cfg.Detection.CatalogFile = o.catalog
	}
	return cfg, logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format), nil
}
