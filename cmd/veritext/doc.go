// Package main hosts the veritext CLI entrypoint and command graph.
//
// The Cobra-based command tree covers training runs, one-off detection of
// text and documents, run-history inspection, daemon status, and
// configuration scaffolding. It centralizes configuration resolution and
// logging setup so subcommands can focus on user experience.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
