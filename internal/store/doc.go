// Package store persists the pipeline's collections in SQLite.
//
// Four tables back the stages: discs (scraped source records), predictions
// (the processed collection), usage_log (one row per trigger request), and
// runs (per-run status records). The url column is UNIQUE on both discs and
// predictions and every insert uses ON CONFLICT DO NOTHING, so concurrent
// stage runs cannot create duplicates. Predictions are inserted in a single
// transaction and only the published flag is ever updated afterwards.
//
// Schema changes bump schemaVersion in schema.go; an existing database with a
// different version is refused with ErrSchemaMismatch.
package store
