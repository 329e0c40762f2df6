// Package server exposes each pipeline stage over HTTP.
//
// Every stage gets its own listener with a trigger route, a last-run route,
// /admin, /health and /metrics. The publisher additionally serves a read-only
// /predictions listing. Trigger routes check the X-API-KEY header before any
// usage is logged or the stage runs; /admin uses basic auth against a bcrypt
// hash.
package server
