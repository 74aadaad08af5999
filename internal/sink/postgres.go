package sink

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/badmintongame/tournament-sync/internal/logger"
	"github.com/badmintongame/tournament-sync/internal/tournament"
)

const insertSQL = `INSERT INTO "Tournament" (name, "startDate", "endDate", "applyStartDate", "applyEndDate", region, location, "tournamentUrl", platform, "createdAt", "updatedAt")
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())`

// DBTX is the subset of a pgx connection the sink needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Postgres inserts each record as its own autocommitted statement and
// reads stored tournaments back page by page.
type Postgres struct {
	db    DBTX
	close func(context.Context) error
}

// Open connects to the database at databaseURL.
func Open(ctx context.Context, databaseURL string) (*Postgres, error) {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	fields := logger.Fields{}
	if u, err := url.Parse(databaseURL); err == nil {
		fields["host"] = u.Host
		fields["database"] = strings.TrimPrefix(u.Path, "/")
	}
	logger.Info("connected to database", fields)

	return &Postgres{db: conn, close: conn.Close}, nil
}

// NewPostgres wraps an existing connection. Close is a no-op; the caller
// owns db.
func NewPostgres(db DBTX) *Postgres {
	return &Postgres{db: db}
}

// Insert writes one row. Zero dates and empty strings become NULL.
func (p *Postgres) Insert(ctx context.Context, rec tournament.Record) error {
	if _, err := p.db.Exec(ctx, insertSQL, insertArgs(rec)...); err != nil {
		return fmt.Errorf("inserting %q: %w", rec.Name, err)
	}
	return nil
}

// Close releases the connection opened by Open.
func (p *Postgres) Close(ctx context.Context) error {
	if p.close == nil {
		return nil
	}
	return p.close(ctx)
}

func insertArgs(rec tournament.Record) []any {
	return []any{
		rec.Name,
		nullDate(rec.StartDate),
		nullDate(rec.EndDate),
		nullDate(rec.ApplyStartDate),
		nullDate(rec.ApplyEndDate),
		nullString(rec.Region),
		nullString(rec.Location),
		nullString(rec.TournamentURL),
		nil, // platform
	}
}

func nullDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
