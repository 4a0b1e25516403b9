package engines

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgnsrekt/vokabel/internal/ttypes"
)

// ErrInvalidWAV is returned for WAV data that is not 16-bit PCM.
var ErrInvalidWAV = errors.New("invalid WAV data")

// decodeWAV extracts 16-bit PCM from a RIFF/WAVE stream. Streams written to
// a pipe carry placeholder sizes, so a data chunk that claims more bytes
// than remain is read to the end.
func decodeWAV(data []byte) (*ttypes.Audio, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("%w: missing RIFF header", ErrInvalidWAV)
	}

	var audio *ttypes.Audio
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8

		switch id {
		case "fmt ":
			if body+16 > len(data) {
				return nil, fmt.Errorf("%w: short fmt chunk", ErrInvalidWAV)
			}
			format := binary.LittleEndian.Uint16(data[body:])
			channels := binary.LittleEndian.Uint16(data[body+2:])
			rate := binary.LittleEndian.Uint32(data[body+4:])
			bits := binary.LittleEndian.Uint16(data[body+14:])
			if format != 1 || bits != 16 || channels == 0 {
				return nil, fmt.Errorf("%w: format %d, %d bits", ErrInvalidWAV, format, bits)
			}
			audio = &ttypes.Audio{SampleRate: int(rate), Channels: int(channels)}

		case "data":
			if audio == nil {
				return nil, fmt.Errorf("%w: data before fmt", ErrInvalidWAV)
			}
			end := body + size
			if size < 0 || end > len(data) || end < body {
				end = len(data)
			}
			pcm := data[body:end]
			frame := 2 * audio.Channels
			audio.PCM = pcm[:len(pcm)/frame*frame]
			return audio, nil
		}

		// Chunks are word aligned.
		pos = body + size + size%2
		if pos < body {
			break
		}
	}
	return nil, fmt.Errorf("%w: no data chunk", ErrInvalidWAV)
}
