// Package queue synthesizes upcoming utterances ahead of playback so the
// audio cache is warm by the time the reader reaches them.
package queue
