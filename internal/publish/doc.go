// Package publish announces stored predictions and tracks which ones have
// been announced.
//
// Each unpublished prediction is rendered, sent through an Announcer and
// only then flagged as published. Records are handled independently: a
// failed announcement leaves that record unpublished for the next scan and
// the scan moves on. A crash between a successful announcement and the flag
// update can announce a record twice; the flag never moves back to false.
package publish
