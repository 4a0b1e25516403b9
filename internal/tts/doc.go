// Package tts turns text into audible speech. A Speaker synthesizes an
// utterance with the configured engine, caches the PCM, and blocks while
// the audio plays, stopping playback as soon as its context is canceled.
package tts
