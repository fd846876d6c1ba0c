// Package runs persists the training-run registry in SQLite: one record
// per run with its lifecycle status, seed, and the metrics report of
// completed runs.
package runs
