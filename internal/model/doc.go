// Package model manages the predictive model artifact.
//
// A Handle owns a single cached local copy of the newest artifact in an
// object store. EnsureLocalCopy downloads it only when absent and Load
// decodes it into a Predictor. Pipeline runs go through Acquire, which hands
// back a Lease; the Lease's Release deletes the copy so the next run re-reads
// freshness and never sees a half-written file. Only the run holding a Lease
// can release, so a run that gave up waiting never touches another run's
// copy. Runs sharing a Handle queue in process; separate processes queue on a
// lock file next to the artifact.
package model
