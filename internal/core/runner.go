package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// interruptGrace is how long a cancelled child gets to exit after the
// interrupt signal before it is killed.
const interruptGrace = 5 * time.Second

// Command describes one external process invocation.
type Command struct {
	Name   string
	Args   []string
	Dir    string    // Working directory; empty means the current directory
	Stdout io.Writer // Nil means the runner's default
	Stderr io.Writer // Nil means the runner's default
}

// String renders the command line for logs and error messages.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Runner invokes external processes. Every collaborator (pip, mkdocs, the
// linter, curl/wget) is reached through it.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner runs commands with os/exec, streaming output to Stdout/Stderr.
type ExecRunner struct {
	stdout io.Writer
	stderr io.Writer
	logger *zap.Logger
}

// NewExecRunner creates an ExecRunner. Nil writers default to the process's
// own stdout/stderr.
func NewExecRunner(stdout, stderr io.Writer, logger *zap.Logger) *ExecRunner {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecRunner{stdout: stdout, stderr: stderr, logger: logger}
}

// Run starts the command and waits for it. A non-zero exit is reported as a
// KindCommandFailed *Error. Cancelling ctx interrupts the child.
func (r *ExecRunner) Run(ctx context.Context, c Command) error {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdout = orDefault(c.Stdout, r.stdout)
	cmd.Stderr = orDefault(c.Stderr, r.stderr)
	cmd.Cancel = func() error {
		if err := cmd.Process.Signal(os.Interrupt); err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}
	cmd.WaitDelay = interruptGrace

	start := time.Now()
	r.logger.Debug("running command",
		zap.String("cmd", c.String()),
		zap.String("dir", c.Dir))

	err := cmd.Run()
	r.logger.Debug("command finished",
		zap.String("cmd", c.Name),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err))
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &Error{
			Kind:    KindCommandFailed,
			Subject: c.Name,
			Detail:  fmt.Sprintf("exit status %d", exitErr.ExitCode()),
		}
	}
	return fmt.Errorf("running %s: %w", c.Name, err)
}

func orDefault(w, def io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return def
}
