// Package cache keeps synthesized utterance audio so repeated words are not
// synthesized twice. It layers an in-memory LRU cache (L1) over a persistent,
// zstd-compressed disk cache (L2) with TTL cleanup.
package cache
