// Package cli implements the tournament-sync command line.
//
// The root command has three subcommands. crawl walks a range of detail page
// IDs, keeps the tournaments held in a target year or month and saves them to
// a CSV file. import loads such a file into the Tournament table, or previews
// it with --dry-run. list pages through what is already stored. Progress
// lines go to stdout; structured logs go to stderr.
package cli
