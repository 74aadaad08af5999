package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/badmintongame/tournament-sync/internal/filter"
	"github.com/badmintongame/tournament-sync/internal/logger"
	"github.com/badmintongame/tournament-sync/internal/sink"
)

type listOptions struct {
	*globalOptions

	period string
	cursor string
	limit  int
	format string

	outFormat OutputFormat

	// replaced in tests
	openStore func(ctx context.Context, databaseURL string) (sink.Lister, error)
}

// ListResult is the JSON form of one page of stored tournaments.
type ListResult struct {
	Period string `json:"period"`
	*sink.Page
}

func newListCmd(global *globalOptions) *cobra.Command {
	opts := &listOptions{
		globalOptions: global,
		openStore: func(ctx context.Context, databaseURL string) (sink.Lister, error) {
			return sink.Open(ctx, databaseURL)
		},
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Page through tournaments stored in the Tournament table",
		Long: `List tournaments whose start date falls in a year or month, ordered by
start date then id. Pass the printed next cursor to --cursor to fetch the
following page.`,
		Example: `  tournament-sync list --period 2025-12
  tournament-sync list --period 2025 --limit 50 --format json
  tournament-sync list --period 2025.12 --cursor 2025-12-20T00:00:00.000Z_123`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(opts.format)
			if err != nil {
				return err
			}
			opts.outFormat = format
			return opts.run(cmd.Context(), cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.period, "period", "", "Year or month to list: 2025, 2025-12 or 2025.12 (required)")
	f.StringVar(&opts.cursor, "cursor", "", "Next cursor printed by the previous page")
	f.IntVar(&opts.limit, "limit", sink.DefaultLimit, "Tournaments per page")
	f.StringVar(&opts.format, "format", string(FormatText), "Output format: text or json")
	cmd.MarkFlagRequired("period") // nolint:errcheck

	return cmd
}

func (o *listOptions) query() (sink.Query, error) {
	target, err := filter.ParseTarget(o.period)
	if err != nil {
		return sink.Query{}, err
	}
	if o.limit < 1 {
		return sink.Query{}, fmt.Errorf("--limit must be positive: %d", o.limit)
	}

	q := sink.Query{Target: target, Limit: o.limit}
	if o.cursor != "" {
		c, err := sink.ParseCursor(o.cursor)
		if err != nil {
			return sink.Query{}, err
		}
		q.Cursor = &c
	}
	return q, nil
}

func (o *listOptions) run(ctx context.Context, stdout io.Writer) (err error) {
	q, err := o.query()
	if err != nil {
		return err
	}
	if err := o.cfg.RequireDatabase(); err != nil {
		return err
	}

	store, err := o.openStore(ctx, o.cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = fmt.Errorf("closing database connection: %w", cerr)
		}
	}()

	page, err := store.List(ctx, q)
	if err != nil {
		return err
	}
	logger.Debug("listed tournaments", logger.Fields{
		"period":   q.Target.String(),
		"count":    len(page.Items),
		"has_more": page.HasMore,
	})

	if err := writeListPage(stdout, &ListResult{Period: q.Target.String(), Page: page}, o.outFormat); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func writeListPage(w io.Writer, r *ListResult, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, r)
	}

	if len(r.Items) == 0 {
		fmt.Fprintf(w, "No tournaments stored for %s.\n", r.Period)
		return nil
	}
	for _, s := range r.Items {
		rec := s.Tournament
		fmt.Fprintf(w, "[%d] %s ~ %s  %s  region: %s, location: %s\n",
			s.ID, dateText(rec.StartDate), dateText(rec.EndDate), rec.Name, orNone(rec.Region), orNone(rec.Location))
	}
	if r.HasMore {
		fmt.Fprintf(w, "\nNext cursor: %s\n", r.NextCursor)
	}
	return nil
}
