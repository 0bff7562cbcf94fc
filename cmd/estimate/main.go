// Command estimate prices a used car description from the terminal using the same
// pipeline as the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"autoprice/internal/app"
	"autoprice/internal/config"
	"autoprice/internal/logging"
	"autoprice/internal/schema"
)

var (
	verbose   bool
	asJSON    bool
	plain     bool
	noHistory bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "estimate [description]",
	Short: "Estimate a used car price from a free-text description",
	Long: `Extracts car features from the description with the configured LLM providers,
predicts a price with the configured model and prints a ±10% range, any
approximation warnings and a short explanation.

Example:
  estimate "Used Honda Civic 2018, 60k miles, one owner, no accidents"`,
	Args: cobra.MinimumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LogConfig{Level: "warn", Format: "console"}
		if verbose {
			cfg.Level = "debug"
		}
		var err error
		logger, err = logging.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runEstimate,
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the model features, their bounds and defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := schema.Load()
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(cmd, s.Features)
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderSchema(s))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print raw JSON instead of formatted output")
	rootCmd.Flags().BoolVar(&plain, "plain", false, "disable colors and markdown styling")
	rootCmd.Flags().BoolVar(&noHistory, "no-history", false, "do not store the estimate even if history is enabled")
	rootCmd.AddCommand(schemaCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runEstimate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.Build(ctx, cfg, logger, app.Options{SkipHistory: noHistory})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	est, err := a.Estimate.Estimate(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	if asJSON {
		return writeJSON(cmd, est)
	}
	out, err := renderEstimate(est, plain)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
