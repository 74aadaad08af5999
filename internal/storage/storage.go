package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/badmintongame/tournament-sync/internal/tournament"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// WriteListings writes a BOM, the header row and one row per listing.
func WriteListings(w io.Writer, listings []tournament.Listing) error {
	bw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(bw)

	if err := cw.Write(tournament.Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, l := range listings {
		if err := cw.Write(listingRow(l)); err != nil {
			return fmt.Errorf("writing ga_id %d: %w", l.GaID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return bw.Close()
}

// SaveListings writes listings to path, creating parent directories.
func SaveListings(path string, listings []tournament.Listing) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	return WriteListings(f, listings)
}

// ReadListings parses a file produced by WriteListings.
func ReadListings(r io.Reader) ([]tournament.Listing, error) {
	rows := NewRowReader(r)
	listings := make([]tournament.Listing, 0)

	for {
		row, err := rows.Next()
		if errors.Is(err, io.EOF) {
			return listings, nil
		}
		if err != nil {
			return nil, err
		}

		id, err := strconv.Atoi(row.Values["ga_id"])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid ga_id %q", row.Line, row.Values["ga_id"])
		}
		listings = append(listings, tournament.Listing{
			GaID:        id,
			URL:         row.Values["url"],
			Title:       row.Values["title"],
			EventPeriod: row.Values["event_period"],
			ApplyPeriod: row.Values["apply_period"],
			Venue:       row.Values["venue"],
			Region:      row.Values["region"],
			Phone:       row.Values["phone"],
		})
	}
}

func listingRow(l tournament.Listing) []string {
	return []string{
		strconv.Itoa(l.GaID),
		l.URL,
		l.Title,
		l.EventPeriod,
		l.ApplyPeriod,
		l.Venue,
		l.Region,
		l.Phone,
	}
}
