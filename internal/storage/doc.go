// Package storage reads and writes the tabular interchange file between the
// crawl and import pipelines.
//
// The file is CSV with a header row of tournament.Columns and a leading UTF-8
// byte-order mark so spreadsheet tools detect the encoding. Readers accept
// files with or without the mark.
package storage
