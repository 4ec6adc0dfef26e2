// Package textutil provides text processing utilities for fingerprinting, similarity,
// and filename sanitization.
//
// The primary use cases are:
//   - Creating token-based fingerprints from style descriptions and catalog entries
//   - Computing cosine similarity between fingerprints
//   - Sanitizing export filenames for safe filesystem use
//
// Tokenization applies NFKC normalization first so full-width and half-width
// forms compare equal. Japanese text has no spaces, so CJK runs are split into
// character bigrams while Latin runs stay whole words.
package textutil
