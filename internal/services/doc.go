// Package services defines shared utilities consumed by the detection
// pipeline and the training orchestrator.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (validation, extraction, model-not-trained, timeout) so callers can
//     branch on error category instead of string matching, and SafeMessage
//     which strips internal detail before an error crosses the service
//     boundary.
package services
