// Package predict implements the prediction stage.
//
// A run selects discs that have no prediction yet, acquires the model,
// estimates flight numbers for the batch, rounds them and stores the batch
// in one insert. The model copy is released on every exit path. After a
// successful insert the engine pokes the publisher's trigger endpoint in the
// background; that call never affects the run's outcome.
package predict
