// Package preflight provides readiness checks for the filesystem paths and
// external services that discflight depends on.
//
// These checks run in two contexts:
//   - daemonrun logs every failed check at startup without refusing to serve,
//     since the source site or model bucket may recover before the first
//     trigger arrives.
//   - The CLI "discflight preflight" command prints all results and exits
//     non-zero when any check fails.
//
// Checks are scoped to the selected stages; a scrape-only daemon never contacts
// the model bucket.
package preflight
