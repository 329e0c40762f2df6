// Package scrape implements the scrape stage: it reads the certification
// list from the source site, visits each disc page and stores discs that are
// not yet known.
//
// A list page that cannot be loaded aborts the run. Problems with a single
// disc page are logged and that page is skipped; discs stored earlier in the
// run are kept.
package scrape
