// Package executor runs delegated programs as child processes.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/crabzie/foldbatch/internal/core/port"
	"go.uber.org/zap"
)

// ExitNotStarted is reported when the program could not be started at all
const ExitNotStarted = 127

type processRunner struct {
	dir    string
	stdout io.Writer
	stderr io.Writer
	log    *zap.Logger
}

// NewProcessRunner creates a runner that passes the child's output through to stdout and stderr
func NewProcessRunner(dir string, stdout, stderr io.Writer, log *zap.Logger) port.ProcessRunner {
	return &processRunner{
		dir:    dir,
		stdout: stdout,
		stderr: stderr,
		log:    log,
	}
}

// Run blocks until the program exits and returns its exit code. A non-zero
// exit is not an error; err is only set when the program could not run.
func (p *processRunner) Run(ctx context.Context, program string, args []string, env []string) (int, error) {
	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Dir = p.dir
	cmd.Env = env
	cmd.Stdout = p.stdout
	cmd.Stderr = p.stderr

	p.log.Debug("Starting delegated program", zap.String("program", program), zap.Strings("args", args))

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// killed by a signal, report it like a shell would
			code = 128 + signalNumber(exitErr)
		}
		return code, nil
	}
	return ExitNotStarted, fmt.Errorf("failed to run %s: %w", program, err)
}
