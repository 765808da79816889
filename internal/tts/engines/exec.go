package engines

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// killDelay is how long a process gets to exit after an interrupt before it
// is killed.
const killDelay = 100 * time.Millisecond

// ErrEmptyText is returned when there is nothing to synthesize.
var ErrEmptyText = errors.New("text cannot be empty")

// runCommand runs name with args, feeding stdin and returning stdout. The
// process is interrupted when ctx is done or the timeout passes, then killed
// if it does not exit.
//
// stdin is attached before the process starts. Piper reads its input as soon
// as it launches, so writing through a pipe afterwards can lose text.
func runCommand(ctx context.Context, timeout time.Duration, stdin io.Reader, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = killDelay

	if stdin == nil {
		stdin = strings.NewReader("")
	}
	cmd.Stdin = stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%s timed out after %s: %w", name, timeout, ctxErr)
			}
			return nil, fmt.Errorf("%s interrupted: %w", name, ctxErr)
		}
		return nil, fmt.Errorf("%s failed: %w, stderr: %s", name, err, strings.TrimSpace(stderr.String()))
	}

	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%s produced no output, stderr: %s", name, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// checkText validates text against an engine's size limit.
func checkText(text string, maxSize int) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	if len(text) > maxSize {
		return fmt.Errorf("text too long: %d characters (max %d)", len(text), maxSize)
	}
	return nil
}
