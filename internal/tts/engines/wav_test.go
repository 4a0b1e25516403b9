package engines

import (
	"errors"
	"testing"
)

func TestDecodeWAV(t *testing.T) {
	pcm := []byte{1, 0, 2, 0, 3, 0, 4, 0}

	tests := []struct {
		name     string
		data     []byte
		wantPCM  int
		wantRate int
		wantErr  bool
	}{
		{"exact sizes", makeWAV(22050, 1, pcm, len(pcm)), 8, 22050, false},
		{"streaming placeholder", makeWAV(22050, 1, pcm, -1), 8, 22050, false},
		{"stereo", makeWAV(44100, 2, pcm, len(pcm)), 8, 44100, false},
		{"odd trailing byte", makeWAV(22050, 1, append(pcm, 9), -1), 8, 22050, false},
		{"not riff", []byte("hello world, this is not a wav"), 0, 0, true},
		{"truncated", []byte("RIFF"), 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			audio, err := decodeWAV(tt.data)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidWAV) {
					t.Fatalf("expected ErrInvalidWAV, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeWAV failed: %v", err)
			}
			if len(audio.PCM) != tt.wantPCM {
				t.Errorf("PCM length = %d, want %d", len(audio.PCM), tt.wantPCM)
			}
			if audio.SampleRate != tt.wantRate {
				t.Errorf("SampleRate = %d, want %d", audio.SampleRate, tt.wantRate)
			}
		})
	}
}

func TestDecodeWAV_RejectsNonPCM(t *testing.T) {
	data := makeWAV(22050, 1, []byte{0, 0}, 2)
	data[20] = 3 // IEEE float

	if _, err := decodeWAV(data); !errors.Is(err, ErrInvalidWAV) {
		t.Errorf("expected ErrInvalidWAV, got %v", err)
	}
}
