// Package main hosts the discflight CLI.
//
// The Cobra command tree runs single pipeline stages in-process (scrape,
// predict, publish), starts the stage servers, and inspects the shared
// database: stored predictions, per-stage run status, and trigger usage.
// Stage behavior lives in the internal packages; commands here only resolve
// configuration, open the store, and render results.
package main
