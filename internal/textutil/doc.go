// Package textutil provides term-frequency fingerprints and cosine similarity
// used to measure lexical cohesion between adjacent sentences.
//
// Fingerprints use term frequency vectors normalized for efficient comparison.
// The tokenization process lowercases text, splits on non-alphanumeric
// characters, and filters tokens shorter than 3 characters.
package textutil
