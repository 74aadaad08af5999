package tournament

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Listing is one crawled detail page that passed the period filter.
// Optional fields are empty when the page did not carry them.
type Listing struct {
	GaID        int    `json:"ga_id"`
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	EventPeriod string `json:"event_period,omitempty"`
	ApplyPeriod string `json:"apply_period,omitempty"`
	Venue       string `json:"venue,omitempty"`
	Region      string `json:"region,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// Columns is the header of the tabular interchange file, in Listing field order.
var Columns = []string{"ga_id", "url", "title", "event_period", "apply_period", "venue", "region", "phone"}

// Record is a tournament ready to be persisted.
// Zero dates and empty strings are stored as NULL.
type Record struct {
	Name           string
	StartDate      time.Time
	EndDate        time.Time
	ApplyStartDate time.Time
	ApplyEndDate   time.Time
	Region         string
	Location       string
	TournamentURL  string
}

// recordJSON is the wire form of a Record: calendar dates as "2006-01-02",
// absent values as null.
type recordJSON struct {
	Name           string  `json:"name"`
	StartDate      *string `json:"start_date"`
	EndDate        *string `json:"end_date"`
	ApplyStartDate *string `json:"apply_start_date"`
	ApplyEndDate   *string `json:"apply_end_date"`
	Region         *string `json:"region"`
	Location       *string `json:"location"`
	TournamentURL  *string `json:"tournament_url"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		Name:           r.Name,
		StartDate:      dateOrNil(r.StartDate),
		EndDate:        dateOrNil(r.EndDate),
		ApplyStartDate: dateOrNil(r.ApplyStartDate),
		ApplyEndDate:   dateOrNil(r.ApplyEndDate),
		Region:         stringOrNil(r.Region),
		Location:       stringOrNil(r.Location),
		TournamentURL:  stringOrNil(r.TournamentURL),
	})
}

func dateOrNil(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}

func stringOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var (
	ErrMissingName      = errors.New("missing name")
	ErrMissingStartDate = errors.New("missing start date")
	ErrMissingEndDate   = errors.New("missing end date")
)

// NewRecord maps one header-keyed row of the interchange file to a Record.
// Missing columns read as empty. The result is not validated.
func NewRecord(row map[string]string) Record {
	start, end := ParsePeriod(row["event_period"])
	applyStart, applyEnd := ParsePeriod(row["apply_period"])

	return Record{
		Name:           strings.TrimSpace(row["title"]),
		StartDate:      start,
		EndDate:        end,
		ApplyStartDate: applyStart,
		ApplyEndDate:   applyEnd,
		Region:         row["region"],
		Location:       row["venue"],
		TournamentURL:  row["url"],
	}
}

// Validate reports the first required field the record is missing.
func (r Record) Validate() error {
	switch {
	case r.Name == "":
		return ErrMissingName
	case r.StartDate.IsZero():
		return ErrMissingStartDate
	case r.EndDate.IsZero():
		return ErrMissingEndDate
	}
	return nil
}
