package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/badmintongame/tournament-sync/internal/config"
	"github.com/badmintongame/tournament-sync/internal/logger"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// globalOptions are the flags shared by every subcommand.
type globalOptions struct {
	envFile string
	verbose bool

	cfg config.Config
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "tournament-sync",
		Short: "Crawl badminton tournament listings and load them into Postgres",
		Long: `tournament-sync collects badminton tournament listings from
badmintongame.co.kr and loads them into the Tournament table.

  crawl   walk a range of ga_id detail pages and save the tournaments held
          in a target year or month to a CSV file
  import  insert the rows of such a CSV file, or preview them with --dry-run
  list    page through the tournaments already stored for a year or month`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", config.DefaultEnvFile, "Path to a .env file (missing file is ignored)")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Show every page and a metrics summary; log at DEBUG")

	cmd.AddCommand(newCrawlCmd(opts), newImportCmd(opts), newListCmd(opts))
	return cmd
}

// setup loads configuration and installs the default logger.
func (o *globalOptions) setup() error {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return err
	}
	o.cfg = cfg

	level := cfg.LogLevel
	if o.verbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, os.Stderr))
	return nil
}

// Execute runs the CLI and exits with ExitError on failure. An interrupt
// cancels the running command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}
