package engines

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrEmptyOutput is returned when a subprocess exits cleanly without audio.
var ErrEmptyOutput = errors.New("engine produced no audio")

// maxOutputSize caps subprocess output.
const maxOutputSize = 20 * 1024 * 1024

// runCommand runs name with args, feeding stdin and returning stdout. The
// process is interrupted when ctx ends or the timeout passes, and killed if
// it does not exit shortly after.
func runCommand(ctx context.Context, timeout time.Duration, stdin []byte, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = 100 * time.Millisecond

	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", name, ctx.Err())
		}
		return nil, fmt.Errorf("%s failed: %w, stderr: %s", name, err, strings.TrimSpace(stderr.String()))
	}

	out := stdout.Bytes()
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: %w, stderr: %s", name, ErrEmptyOutput, strings.TrimSpace(stderr.String()))
	}
	if len(out) > maxOutputSize {
		return nil, fmt.Errorf("%s output too large: %d bytes (max %d)", name, len(out), maxOutputSize)
	}
	return out, nil
}

// lookPath resolves a binary, reporting a friendly error when missing.
func lookPath(bin string) (string, error) {
	path, err := exec.LookPath(bin)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH: %w", bin, err)
	}
	return path, nil
}
