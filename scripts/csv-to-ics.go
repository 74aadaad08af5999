package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/badmintongame/tournament-sync/internal/calendar"
	"github.com/badmintongame/tournament-sync/internal/storage"
)

// Converts a crawl CSV into an .ics file next to it, for checking how hits
// look in a calendar app without re-running the crawl.
//
//	go run ./scripts badmintongame_2025_03.csv
func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: csv-to-ics <crawl.csv>")
		os.Exit(2)
	}
	path := os.Args[1]

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", path, err)
		os.Exit(1)
	}
	listings, err := storage.ReadListings(f)
	f.Close() // nolint:errcheck
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
		os.Exit(1)
	}

	icsContent := calendar.GenerateICS(listings, time.Now())

	filename := strings.TrimSuffix(path, ".csv") + ".ics"
	if err := os.WriteFile(filename, []byte(icsContent), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s from %d listings\n", filename, len(listings))
	fmt.Println("Open it with a calendar app, or import it into Google Calendar / Outlook.")
}
