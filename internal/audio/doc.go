// Package audio plays synthesized speech through the system audio device
// using oto/v3. Engines produce PCM at their own sample rates; the player
// converts it to the device format before playback.
package audio
