// Package importer loads rows of the interchange file into a Sink.
//
// Each row becomes at most one tournament.Record. Rows missing a name, start
// date or end date are skipped and counted; every other row is inserted (or,
// in dry-run mode, only previewed). Imports are not idempotent: running the
// same file twice inserts every row twice.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/badmintongame/tournament-sync/internal/logger"
	"github.com/badmintongame/tournament-sync/internal/sink"
	"github.com/badmintongame/tournament-sync/internal/storage"
	"github.com/badmintongame/tournament-sync/internal/tournament"
)

// ErrNoSink is returned by Run when DryRun is false and no Sink is set.
var ErrNoSink = errors.New("importer: no sink configured")

// Action is what happened to one row.
type Action int

const (
	Skipped Action = iota
	Previewed
	Inserted
)

func (a Action) String() string {
	switch a {
	case Previewed:
		return "preview"
	case Inserted:
		return "insert"
	default:
		return "skip"
	}
}

// RowEvent describes the handling of one row. GaID is 0 when the row had no
// parseable ga_id column.
type RowEvent struct {
	Line   int
	GaID   int
	Action Action
	Reason string
	Record tournament.Record
}

// Result counts rows across a run. Read includes malformed rows.
type Result struct {
	Read      int `json:"read"`
	Inserted  int `json:"inserted"`
	Skipped   int `json:"skipped"`
	Previewed int `json:"previewed"`
}

// Importer maps rows to records and hands them to Sink.
type Importer struct {
	Sink     sink.Sink
	DryRun   bool
	Observer func(RowEvent)
}

// Run reads rows until EOF. A sink failure stops the run and is returned with
// the counts so far; rows inserted before it stay inserted.
func (im *Importer) Run(ctx context.Context, rows *storage.RowReader) (Result, error) {
	var res Result

	if !im.DryRun && im.Sink == nil {
		return res, ErrNoSink
	}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		row, err := rows.Next()
		if errors.Is(err, io.EOF) {
			return res, nil
		}

		var rowErr *storage.RowError
		if errors.As(err, &rowErr) {
			res.Read++
			res.Skipped++
			im.emit(RowEvent{Line: rowErr.Line, Action: Skipped, Reason: "malformed row: " + rowErr.Err.Error()})
			logger.IncrCounter("import.skipped")
			continue
		}
		if err != nil {
			return res, fmt.Errorf("reading rows: %w", err)
		}

		res.Read++
		ev := RowEvent{Line: row.Line, GaID: gaID(row.Values), Record: tournament.NewRecord(row.Values)}

		if err := ev.Record.Validate(); err != nil {
			ev.Action = Skipped
			ev.Reason = err.Error()
			res.Skipped++
			logger.IncrCounter("import.skipped")
			im.emit(ev)
			continue
		}

		if im.DryRun {
			ev.Action = Previewed
			res.Previewed++
			logger.IncrCounter("import.previewed")
			im.emit(ev)
			continue
		}

		if err := im.Sink.Insert(ctx, ev.Record); err != nil {
			logger.Error("insert failed", logger.Fields{
				"line":  row.Line,
				"ga_id": ev.GaID,
			}, err)
			return res, fmt.Errorf("line %d: %w", row.Line, err)
		}

		ev.Action = Inserted
		res.Inserted++
		logger.IncrCounter("import.inserted")
		im.emit(ev)
	}
}

func (im *Importer) emit(ev RowEvent) {
	if im.Observer != nil {
		im.Observer(ev)
	}
}

func gaID(values map[string]string) int {
	id, err := strconv.Atoi(values["ga_id"])
	if err != nil {
		return 0
	}
	return id
}
