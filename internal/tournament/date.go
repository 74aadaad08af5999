package tournament

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// placeholderYear marks pages whose dates were never filled in ("0000년 0월 0일").
const placeholderYear = "0000년"

var (
	koreanDatePattern = regexp.MustCompile(`(\d{4})년\s*(\d{1,2})월\s*(\d{1,2})일`)
	periodSeparator   = regexp.MustCompile(`\s*~\s*`)
)

// ParseDate extracts the first "YYYY년 M월 D일" date from text.
// Returns time.Time{} (zero value) if the text is empty, carries the placeholder
// year, has no match, or names a day that does not exist on the calendar.
func ParseDate(text string) time.Time {
	if text == "" || strings.Contains(text, placeholderYear) {
		return time.Time{}
	}

	m := koreanDatePattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	if year < 1 || month < 1 || month > 12 || day < 1 {
		return time.Time{}
	}

	// time.Date normalizes overflow (Feb 30 -> Mar 2); reject instead
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}
	}
	return t
}

// ParsePeriod splits "start ~ end" and parses each side with ParseDate.
// Without a separator the end equals the start. Either side may be zero.
func ParsePeriod(text string) (start, end time.Time) {
	if text == "" {
		return time.Time{}, time.Time{}
	}

	parts := periodSeparator.Split(text, -1)
	start = ParseDate(parts[0])
	if len(parts) < 2 {
		return start, start
	}
	return start, ParseDate(parts[1])
}
