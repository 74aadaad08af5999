package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/badmintongame/tournament-sync/internal/tournament"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByID    SortOrder = "id"
	SortByDate  SortOrder = "date"
	SortByTitle SortOrder = "title"
)

func parseSortOrder(s string) (SortOrder, error) {
	switch order := SortOrder(strings.ToLower(strings.TrimSpace(s))); order {
	case SortByID, SortByDate, SortByTitle:
		return order, nil
	}
	return "", fmt.Errorf("invalid sort order: %s (must be 'id', 'date' or 'title')", s)
}

// sortListings orders listings in place. Ties fall back to ga_id so the
// output is deterministic.
func sortListings(listings []tournament.Listing, order SortOrder) {
	switch order {
	case SortByDate:
		slices.SortStableFunc(listings, compareByDate)
	case SortByTitle:
		slices.SortStableFunc(listings, func(a, b tournament.Listing) int {
			if c := strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)); c != 0 {
				return c
			}
			return a.GaID - b.GaID
		})
	default:
		slices.SortStableFunc(listings, func(a, b tournament.Listing) int {
			return a.GaID - b.GaID
		})
	}
}

// compareByDate puts listings with a parseable start date first, earliest
// first.
func compareByDate(a, b tournament.Listing) int {
	da, _ := tournament.ParsePeriod(a.EventPeriod)
	db, _ := tournament.ParsePeriod(b.EventPeriod)

	switch {
	case !da.IsZero() && !db.IsZero():
		if c := da.Compare(db); c != 0 {
			return c
		}
	case !da.IsZero():
		return -1
	case !db.IsZero():
		return 1
	}
	return a.GaID - b.GaID
}
