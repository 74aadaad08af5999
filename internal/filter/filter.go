// Package filter decides whether a tournament's event period falls within a
// requested calendar period.
//
// Two notations are recognized for a year+month target:
//   - numeric: "2025.12", "2025/12", "2025-12", "2025. 3" (month padded or not)
//   - Korean:  "2025년 12월", "2025년 03월"
//
// Matches may appear anywhere in the text. A year-only target is deliberately
// loose: the four-digit year appearing anywhere in the text is enough.
//
// Example usage:
//
//	target, _ := filter.ParseTarget("2025-12")
//	if target.Matches(listing.EventPeriod) {
//	    // keep it
//	}
package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Target is the calendar period a crawl keeps. Month 0 means the whole year.
type Target struct {
	Year  int `json:"year"`
	Month int `json:"month,omitempty"`
}

// Matches checks the period text against the target.
func (t Target) Matches(period string) bool {
	if t.Month == 0 {
		return MatchesYear(period, t.Year)
	}
	return MatchesYearMonth(period, t.Year, t.Month)
}

// String returns "2025-12" or "2025".
func (t Target) String() string {
	if t.Month == 0 {
		return strconv.Itoa(t.Year)
	}
	return fmt.Sprintf("%d-%02d", t.Year, t.Month)
}

// DefaultOutputPath names the CSV file a crawl for this target writes by default.
func (t Target) DefaultOutputPath() string {
	if t.Month == 0 {
		return fmt.Sprintf("badmintongame_%d.csv", t.Year)
	}
	return fmt.Sprintf("badmintongame_%d_%02d.csv", t.Year, t.Month)
}

// Range returns the half-open interval [start, end) of UTC dates the target
// covers: one calendar month, or the whole year when Month is 0.
func (t Target) Range() (start, end time.Time) {
	if t.Month == 0 {
		start = time.Date(t.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0)
	}
	start = time.Date(t.Year, time.Month(t.Month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// MatchesYearMonth reports whether the period mentions the given year and month
// in numeric or Korean notation. Empty text never matches.
func MatchesYearMonth(period string, year, month int) bool {
	if period == "" {
		return false
	}

	monthDigits := strconv.Itoa(month)
	if month < 10 {
		monthDigits = "0?" + monthDigits
	}
	y := strconv.Itoa(year)

	numeric := regexp.MustCompile(y + `[./-]\s*` + monthDigits)
	for _, loc := range numeric.FindAllStringIndex(period, -1) {
		if wordBoundaryAt(period, loc[1]) {
			return true
		}
	}

	korean := regexp.MustCompile(y + `\s*년\s*0*` + strconv.Itoa(month) + `\s*월`)
	return korean.MatchString(period)
}

// MatchesYear reports whether the four-digit year appears anywhere in the period.
func MatchesYear(period string, year int) bool {
	if period == "" {
		return false
	}
	return strings.Contains(period, strconv.Itoa(year))
}

// wordBoundaryAt is true when the rune starting at i is not a letter, digit or
// underscore in any script. "2025.12월" therefore does not match month 12.
func wordBoundaryAt(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
}
