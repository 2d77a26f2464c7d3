// Package pipeline runs the steps of a job posting scan in sequence.
//
// A scan loads a page, extracts its visible text, asks the classifier for a
// verdict, marks the flagged phrases in the page and optionally writes the
// highlighted copy and records the analysis. Each stage is a Step that
// receives the current PageScan and fills in its part.
//
// Design decision: We use a pipeline instead of direct function calls so
// that the CLI, the batch runner and the tests assemble different step
// lists from the same parts, with one place for logging and cancellation.
//
// BatchProcessor scans many pages with bounded concurrency using errgroup.
package pipeline
