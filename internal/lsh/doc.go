// Package lsh turns the per-dimension text tokens of a dense vector into a small set of
// fingerprint tokens that a text search engine can match on.
//
// The encoder runs five stages:
//
//	truncate -> position tag -> shingle -> minhash -> dedup
//
// The first three stream token by token. The shingle set is then materialized, because
// MinHash needs every shingle of a vector before it can emit anything.
//
// Two vectors whose shingle sets have high Jaccard similarity are likely to share
// fingerprint tokens, so term overlap between fingerprints approximates vector similarity.
package lsh
