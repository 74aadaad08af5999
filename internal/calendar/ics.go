// Package calendar renders crawl hits as an iCalendar feed.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/badmintongame/tournament-sync/internal/tournament"
)

const (
	uidDomain = "badmintongame.co.kr"
	// maxLineOctets is the RFC 5545 content line limit, excluding CRLF.
	maxLineOctets = 75
)

// GenerateICS returns a VCALENDAR with one all-day VEVENT per listing whose
// event period parses. Listings without a usable start date are left out.
// DTEND is exclusive, so a one-day tournament ends the day after it starts.
func GenerateICS(listings []tournament.Listing, now time.Time) string {
	var ics strings.Builder

	writeLine(&ics, "BEGIN:VCALENDAR")
	writeLine(&ics, "VERSION:2.0")
	writeLine(&ics, "PRODID:-//badmintongame//tournament-sync//KO")
	writeLine(&ics, "CALSCALE:GREGORIAN")
	writeLine(&ics, "METHOD:PUBLISH")

	stamp := formatICSTime(now)
	for _, l := range listings {
		start, end := tournament.ParsePeriod(l.EventPeriod)
		if start.IsZero() {
			continue
		}
		if end.IsZero() || end.Before(start) {
			end = start
		}

		writeLine(&ics, "BEGIN:VEVENT")
		writeLine(&ics, fmt.Sprintf("UID:ga-%d@%s", l.GaID, uidDomain))
		writeLine(&ics, "DTSTAMP:"+stamp)
		writeLine(&ics, "DTSTART;VALUE=DATE:"+formatICSDate(start))
		writeLine(&ics, "DTEND;VALUE=DATE:"+formatICSDate(end.AddDate(0, 0, 1)))
		writeLine(&ics, "SUMMARY:"+escapeICS(summary(l)))
		if desc := description(l); desc != "" {
			writeLine(&ics, "DESCRIPTION:"+escapeICS(desc))
		}
		if l.Venue != "" {
			writeLine(&ics, "LOCATION:"+escapeICS(l.Venue))
		}
		if l.URL != "" {
			writeLine(&ics, "URL:"+l.URL)
		}
		writeLine(&ics, "TRANSP:TRANSPARENT")
		writeLine(&ics, "END:VEVENT")
	}

	writeLine(&ics, "END:VCALENDAR")
	return ics.String()
}

func summary(l tournament.Listing) string {
	if l.Title != "" {
		return l.Title
	}
	return fmt.Sprintf("ga_id %d", l.GaID)
}

func description(l tournament.Listing) string {
	var lines []string
	if l.EventPeriod != "" {
		lines = append(lines, "대회기간: "+l.EventPeriod)
	}
	if l.ApplyPeriod != "" {
		lines = append(lines, "접수기간: "+l.ApplyPeriod)
	}
	if l.Region != "" {
		lines = append(lines, "지역: "+l.Region)
	}
	if l.Phone != "" {
		lines = append(lines, "문의: "+l.Phone)
	}
	return strings.Join(lines, "\n")
}

// writeLine folds content lines longer than 75 octets without splitting a
// UTF-8 sequence.
func writeLine(b *strings.Builder, line string) {
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !isRuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		// continuation lines spend one octet on the leading space
		limit = maxLineOctets - 1
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}

func isRuneStart(c byte) bool {
	return c&0xC0 != 0x80
}

func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func formatICSDate(t time.Time) string {
	return t.Format("20060102")
}

// escapeICS escapes TEXT values per RFC 5545.
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
