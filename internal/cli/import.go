package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/badmintongame/tournament-sync/internal/importer"
	"github.com/badmintongame/tournament-sync/internal/logger"
	"github.com/badmintongame/tournament-sync/internal/sink"
	"github.com/badmintongame/tournament-sync/internal/storage"
)

type importOptions struct {
	*globalOptions

	csvPath string
	dryRun  bool
	format  string

	outFormat OutputFormat

	// replaced in tests
	openSink func(ctx context.Context, databaseURL string) (sink.Sink, error)
	now      func() time.Time
}

func newImportCmd(global *globalOptions) *cobra.Command {
	opts := &importOptions{
		globalOptions: global,
		openSink: func(ctx context.Context, databaseURL string) (sink.Sink, error) {
			return sink.Open(ctx, databaseURL)
		},
		now: time.Now,
	}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Insert the rows of a crawl CSV into the Tournament table",
		Example: `  tournament-sync import --csv badmintongame_2025_03.csv --dry-run
  DATABASE_URL=postgres://localhost/app tournament-sync import --csv badmintongame_2025_03.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(opts.format)
			if err != nil {
				return err
			}
			opts.outFormat = format
			return opts.run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "CSV file produced by crawl (required)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Preview records without touching the database; DATABASE_URL is not required")
	cmd.Flags().StringVar(&opts.format, "format", string(FormatText), "Summary format: text or json")
	cmd.MarkFlagRequired("csv") // nolint:errcheck

	return cmd
}

func (o *importOptions) run(ctx context.Context, stdout, stderr io.Writer) (err error) {
	// No row is read without a database to write to.
	if !o.dryRun {
		if err := o.cfg.RequireDatabase(); err != nil {
			return err
		}
	}

	f, err := os.Open(o.csvPath)
	if err != nil {
		return fmt.Errorf("opening csv: %w", err)
	}
	defer f.Close() // nolint:errcheck

	runID := uuid.New().String()
	fields := logger.Fields{"run_id": runID, "source": o.csvPath, "dry_run": o.dryRun}
	logger.Info("import started", fields)

	progress := stdout
	if o.outFormat == FormatJSON {
		progress = stderr
	}

	im := &importer.Importer{
		DryRun:   o.dryRun,
		Observer: func(ev importer.RowEvent) { writeRowEvent(progress, ev) },
	}

	if o.dryRun {
		fmt.Fprintln(progress, "[DRY-RUN] previewing only; nothing is written to the database.")
		fmt.Fprintln(progress)
	} else {
		s, openErr := o.openSink(ctx, o.cfg.DatabaseURL)
		if openErr != nil {
			return openErr
		}
		defer func() {
			if cerr := s.Close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
				err = fmt.Errorf("closing database connection: %w", cerr)
			}
		}()
		im.Sink = s
	}

	result, runErr := im.Run(ctx, storage.NewRowReader(f))

	summary := &ImportSummary{
		RunID:      runID,
		FinishedAt: o.now().UTC(),
		Source:     o.csvPath,
		DryRun:     o.dryRun,
		Result:     result,
		Metrics:    metricsIfVerbose(o.verbose),
	}

	fields["read"] = result.Read
	fields["inserted"] = result.Inserted
	fields["skipped"] = result.Skipped
	fields["previewed"] = result.Previewed
	if runErr != nil {
		summary.Error = runErr.Error()
		logger.Error("import aborted", fields, runErr)
	} else {
		logger.Info("import finished", fields)
	}

	if err := WriteImportSummary(stdout, summary, o.outFormat); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if runErr != nil {
		return fmt.Errorf("import aborted: %w", runErr)
	}
	return nil
}
