package vessel

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// DefaultBinary is looked up in PATH when no binary is configured.
const DefaultBinary = "vessel"

const stderrTailSize = 2048

// Invocation is one call of the external tool.
type Invocation struct {
	// Stage names the call in logs and errors.
	Stage string
	Args  []string
	// Stdout and Stderr default to the driver's own streams.
	Stdout io.Writer
	Stderr io.Writer
}

// CommandLine renders the invocation for humans. It is never handed to a shell.
func (inv Invocation) CommandLine(binary string) string {
	return strings.Join(append([]string{binary}, inv.Args...), " ")
}

// Runner runs the external tool and blocks until it exits.
type Runner interface {
	Run(ctx context.Context, inv Invocation) error
}

// ExitError reports a tool invocation that exited with a non-zero status.
type ExitError struct {
	Stage  string
	Args   []string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Stage, e.Code)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}

	return msg
}

// ExecRunner spawns the tool as a child process inside Dir.
type ExecRunner struct {
	Binary string
	Dir    string
}

func NewExecRunner(binary, dir string) *ExecRunner {
	if binary == "" {
		binary = DefaultBinary
	}

	return &ExecRunner{Binary: binary, Dir: dir}
}

func (r *ExecRunner) Run(ctx context.Context, inv Invocation) error {
	stdout, stderr := inv.Stdout, inv.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	tail := &tailBuffer{max: stderrTailSize}

	cmd := exec.CommandContext(ctx, r.Binary, inv.Args...)
	cmd.Dir = r.Dir
	cmd.Stdout = stdout
	cmd.Stderr = io.MultiWriter(stderr, tail)

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return &ExitError{
			Stage:  inv.Stage,
			Args:   inv.Args,
			Code:   exitErr.ExitCode(),
			Stderr: strings.TrimSpace(tail.String()),
		}
	}
	if ctx.Err() != nil {
		return errors.Wrapf(ctx.Err(), "%s interrupted", inv.Stage)
	}

	return errors.Wrapf(err, "unable to run %s", r.Binary)
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if len(t.buf) > t.max {
		t.buf = t.buf[len(t.buf)-t.max:]
	}

	return len(p), nil
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}

var _ Runner = (*ExecRunner)(nil)
