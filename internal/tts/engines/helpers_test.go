package engines

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// fakeBinary writes an executable shell script and returns its path.
func fakeBinary(t *testing.T, name, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

// makeWAV builds a 16-bit PCM WAV. A dataSize of -1 writes the streaming
// placeholder 0xFFFFFFFF.
func makeWAV(rate, channels int, pcm []byte, dataSize int) []byte {
	var b []byte
	le32 := func(v uint32) { b = binary.LittleEndian.AppendUint32(b, v) }
	le16 := func(v uint16) { b = binary.LittleEndian.AppendUint16(b, v) }

	b = append(b, "RIFF"...)
	le32(uint32(36 + len(pcm)))
	b = append(b, "WAVE"...)

	b = append(b, "fmt "...)
	le32(16)
	le16(1)
	le16(uint16(channels))
	le32(uint32(rate))
	le32(uint32(rate * channels * 2))
	le16(uint16(channels * 2))
	le16(16)

	b = append(b, "data"...)
	if dataSize < 0 {
		le32(0xFFFFFFFF)
	} else {
		le32(uint32(dataSize))
	}
	return append(b, pcm...)
}
