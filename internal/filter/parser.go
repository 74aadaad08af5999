package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTarget parses a crawl target from "2025", "2025-12", "2025-3" or "2025.12".
func ParseTarget(input string) (Target, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Target{}, fmt.Errorf("target period cannot be empty")
	}

	yearText, monthText, hasMonth := strings.Cut(strings.ReplaceAll(input, ".", "-"), "-")

	year, err := strconv.Atoi(yearText)
	if err != nil {
		return Target{}, fmt.Errorf("invalid year: %s", yearText)
	}

	month := 0
	if hasMonth {
		month, err = strconv.Atoi(monthText)
		if err != nil {
			return Target{}, fmt.Errorf("invalid month: %s", monthText)
		}
	}

	return NewTarget(year, month)
}

// NewTarget validates a year and optional month (0 = whole year).
func NewTarget(year, month int) (Target, error) {
	if year < 1000 || year > 9999 {
		return Target{}, fmt.Errorf("year must have four digits: %d", year)
	}
	if month < 0 || month > 12 {
		return Target{}, fmt.Errorf("month must be 1-12 (or 0 for the whole year): %d", month)
	}
	return Target{Year: year, Month: month}, nil
}
