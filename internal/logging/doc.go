// Package logging wires log/slog with the console and JSON handlers used by
// the CLI and the daemon, plus the attr helpers and context carriers the rest
// of the codebase logs through.
package logging
