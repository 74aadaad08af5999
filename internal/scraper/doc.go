// Package scraper discovers tournament detail pages on badmintongame.co.kr.
//
// Detail pages live at sequential ga_id values, many of which are missing or
// deleted. The Crawler walks a closed ID range one request at a time, sleeps a
// jittered delay after every ID, and reports an Outcome per ID: Absent when the
// page could not be fetched or is an error page, FilteredOut when its event period
// is outside the target, or Hit with the extracted Listing.
package scraper
