// Package textextract normalizes heterogeneous document inputs (plain text,
// PDF, DOCX) into a single text string and enforces the shared minimum-length
// gate that guards both training-corpus admission and inference requests.
package textextract
