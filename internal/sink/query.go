package sink

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/badmintongame/tournament-sync/internal/filter"
	"github.com/badmintongame/tournament-sync/internal/tournament"
)

// DefaultLimit is the page size when Query.Limit is not positive.
const DefaultLimit = 10

const cursorTimeLayout = "2006-01-02T15:04:05.000Z"

const selectSQL = `SELECT id, name, "startDate", "endDate", "applyStartDate", "applyEndDate", region, location, "tournamentUrl"
FROM "Tournament"
WHERE "startDate" >= $1 AND "startDate" < $2`

var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor is the position after the last row of a page: rows sort by start
// date, then id.
type Cursor struct {
	StartDate time.Time
	ID        int64
}

// String renders the cursor as "<start date>_<id>",
// e.g. "2025-12-20T00:00:00.000Z_123".
func (c Cursor) String() string {
	return c.StartDate.UTC().Format(cursorTimeLayout) + "_" + strconv.FormatInt(c.ID, 10)
}

// ParseCursor reverses Cursor.String. The date part may also be a plain
// "2006-01-02".
func ParseCursor(s string) (Cursor, error) {
	dateText, idText, ok := cutLast(strings.TrimSpace(s), "_")
	if !ok {
		return Cursor{}, fmt.Errorf("%w %q: want <start date>_<id>", ErrInvalidCursor, s)
	}

	id, err := strconv.ParseInt(idText, 10, 64)
	if err != nil || id < 0 {
		return Cursor{}, fmt.Errorf("%w %q: bad id", ErrInvalidCursor, s)
	}

	start, err := time.Parse(time.RFC3339Nano, dateText)
	if err != nil {
		start, err = time.Parse(time.DateOnly, dateText)
	}
	if err != nil {
		return Cursor{}, fmt.Errorf("%w %q: bad start date", ErrInvalidCursor, s)
	}

	return Cursor{StartDate: start.UTC(), ID: id}, nil
}

// Query selects tournaments starting within Target, after Cursor if set.
type Query struct {
	Target filter.Target
	Cursor *Cursor
	Limit  int
}

// Stored is a tournament as read back from the table.
type Stored struct {
	ID         int64             `json:"id"`
	Tournament tournament.Record `json:"tournament"`
}

// Page is one slice of a listing. NextCursor is empty on the last page.
type Page struct {
	Items      []Stored `json:"items"`
	NextCursor string   `json:"next_cursor,omitempty"`
	HasMore    bool     `json:"has_more"`
}

// List returns up to q.Limit tournaments whose start date falls in the
// target period, ordered by start date then id.
func (p *Postgres) List(ctx context.Context, q Query) (*Page, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	sql, args := listSQL(q.Target, q.Cursor, limit)
	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tournaments: %w", err)
	}

	items, err := pgx.CollectRows(rows, scanStored)
	if err != nil {
		return nil, fmt.Errorf("reading tournaments: %w", err)
	}

	return newPage(items, limit), nil
}

// listSQL fetches one row past limit so the caller can tell whether another
// page exists.
func listSQL(target filter.Target, cursor *Cursor, limit int) (string, []any) {
	start, end := target.Range()
	sql := selectSQL
	args := []any{start, end}

	if cursor != nil {
		sql += `
  AND ("startDate", id) > ($3, $4)`
		args = append(args, cursor.StartDate, cursor.ID)
	}

	args = append(args, limit+1)
	sql += fmt.Sprintf(`
ORDER BY "startDate", id
LIMIT $%d`, len(args))

	return sql, args
}

func newPage(items []Stored, limit int) *Page {
	page := &Page{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		page.HasMore = true
		last := page.Items[limit-1]
		page.NextCursor = Cursor{StartDate: last.Tournament.StartDate, ID: last.ID}.String()
	}
	if page.Items == nil {
		page.Items = make([]Stored, 0)
	}
	return page
}

func scanStored(row pgx.CollectableRow) (Stored, error) {
	var (
		s                        Stored
		endDate, applyStart      *time.Time
		applyEnd                 *time.Time
		region, location, urlCol *string
	)

	err := row.Scan(&s.ID, &s.Tournament.Name, &s.Tournament.StartDate,
		&endDate, &applyStart, &applyEnd, &region, &location, &urlCol)
	if err != nil {
		return Stored{}, err
	}

	s.Tournament.EndDate = deref(endDate)
	s.Tournament.ApplyStartDate = deref(applyStart)
	s.Tournament.ApplyEndDate = deref(applyEnd)
	s.Tournament.Region = deref(region)
	s.Tournament.Location = deref(location)
	s.Tournament.TournamentURL = deref(urlCol)
	return s, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// cutLast splits s around the last sep.
func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}
