// Package tournament provides the data model shared by the crawl and import pipelines.
//
// A Listing is what the crawler extracts from one detail page: raw, locale-formatted
// text exactly as the site shows it. A Record is what the importer persists: the same
// tournament with its periods parsed into calendar dates. The package also holds the
// period parser that turns "2025년 12월 13일 ~ 2025년 12월 14일" into a date pair.
package tournament
