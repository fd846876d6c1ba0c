// Package dataset loads labeled text corpora, resolves label encodings,
// prunes unreliable feature columns, and produces the stratified
// train/validation/test partitions used by the training pipeline.
package dataset
