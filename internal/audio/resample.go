package audio

import (
	"encoding/binary"
	"errors"
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/dgnsrekt/vokabel/internal/ttypes"
)

// ErrBadFormat is returned for audio the player cannot interpret.
var ErrBadFormat = errors.New("unsupported audio format")

// tailPadding is silence appended before resampling so the filter delay
// does not swallow the end of the utterance.
const tailPadding = 0.05 // seconds

// Convert returns a's PCM as mono signed 16-bit samples at sampleRate.
func Convert(a *ttypes.Audio, sampleRate int) ([]byte, error) {
	if a == nil || a.SampleRate <= 0 || a.Channels <= 0 || sampleRate <= 0 {
		return nil, ErrBadFormat
	}

	samples := toMono(a.PCM, a.Channels)
	if a.SampleRate == sampleRate {
		return fromFloat(samples), nil
	}

	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(a.SampleRate),
		OutputRate: float64(sampleRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create resampler: %w", err)
	}

	samples = append(samples, make([]float64, int(tailPadding*float64(a.SampleRate)))...)
	out, err := r.Process(samples)
	if err != nil {
		return nil, fmt.Errorf("resample error: %w", err)
	}
	return fromFloat(out), nil
}

// toMono decodes interleaved int16 frames and averages the channels into
// normalized float samples.
func toMono(pcm []byte, channels int) []float64 {
	frameSize := 2 * channels
	frames := len(pcm) / frameSize
	out := make([]float64, frames)

	for i := range frames {
		var sum float64
		for c := range channels {
			off := i*frameSize + c*2
			sum += float64(int16(binary.LittleEndian.Uint16(pcm[off:])))
		}
		out[i] = sum / float64(channels) / 32768.0
	}
	return out
}

func fromFloat(samples []float64) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		var v int16
		switch {
		case s >= 1.0:
			v = 32767
		case s < -1.0:
			v = -32768
		default:
			v = int16(s * 32768.0)
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}
