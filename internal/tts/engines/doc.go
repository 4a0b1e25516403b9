// Package engines provides speech synthesizers backed by espeak-ng, Piper
// and Google Translate (via gtts-cli), plus a silent mock engine. Every
// engine returns signed 16-bit PCM and never applies volume, so audio for
// the same text, locale, rate and pitch can be cached.
package engines
