// Package vocab loads vocabulary lists and prepares their text for speech.
// A list is an ordered, read-only sequence of entries identified by position.
package vocab
