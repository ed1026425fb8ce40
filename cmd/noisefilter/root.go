package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/johnquangdev/meeting-filter/pkg/config"
)

// rootOptions is the state shared by every subcommand.
type rootOptions struct {
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "noisefilter",
		Short: "Filter small talk out of meeting transcripts",
		Long: `noisefilter removes small talk from meeting transcripts and prepares the
remaining text for analysis.

Configuration is read from the environment and an optional .env file, the
same way the API server reads it. Flags override the environment.

Examples:
  # Filter a plain text transcript
  noisefilter filter --input meeting.txt

  # Show how a long transcript would be chunked
  noisefilter chunk --input meeting.txt --max-tokens 2000

  # Apply database migrations
  noisefilter migrate up`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newCLILogger(opts.verbose)
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log pipeline progress to stderr")

	cmd.AddCommand(newFilterCmd(opts))
	cmd.AddCommand(newAnalyzeCmd(opts))
	cmd.AddCommand(newChunkCmd(opts))
	cmd.AddCommand(newEstimateCmd(opts))
	cmd.AddCommand(newMigrateCmd(opts))

	return cmd
}

// config loads the configuration once.
func (o *rootOptions) config() (*config.Config, error) {
	if o.cfg != nil {
		return o.cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	o.cfg = cfg
	return cfg, nil
}

func newCLILogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}

// readInput reads path, or standard input when path is empty or "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return b, nil
}
