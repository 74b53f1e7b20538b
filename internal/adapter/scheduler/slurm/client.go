package slurm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/crabzie/foldbatch/internal/core/domain"
	"github.com/crabzie/foldbatch/internal/core/port"
	"go.uber.org/zap"
)

// Commander runs a scheduler command in dir and returns its stdout
type Commander interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

type execCommander struct{}

// NewExecCommander returns a Commander backed by os/exec
func NewExecCommander() Commander {
	return execCommander{}
}

func (execCommander) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return out, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// Options holds the binaries and retry policy of the client
type Options struct {
	Sbatch        string
	Squeue        string
	Sacct         string
	SubmitRetries int
	RetryDelay    time.Duration
}

type client struct {
	cmd  Commander
	opts Options
	log  *zap.Logger
}

// NewClient creates a BatchScheduler that shells out to the SLURM binaries
func NewClient(cmd Commander, opts Options, log *zap.Logger) port.BatchScheduler {
	if opts.Sbatch == "" {
		opts.Sbatch = "sbatch"
	}
	if opts.Squeue == "" {
		opts.Squeue = "squeue"
	}
	if opts.Sacct == "" {
		opts.Sacct = "sacct"
	}
	if opts.SubmitRetries < 1 {
		opts.SubmitRetries = 1
	}
	return &client{
		cmd:  cmd,
		opts: opts,
		log:  log,
	}
}

// Submit runs sbatch on script inside dir, retrying with linear backoff
func (c *client) Submit(ctx context.Context, dir, script string) (int64, error) {
	var lastErr error
	for attempt := 1; attempt <= c.opts.SubmitRetries; attempt++ {
		out, err := c.cmd.Run(ctx, dir, c.opts.Sbatch, script)
		if err == nil {
			id, err := ParseJobID(string(out))
			if err != nil {
				return 0, err
			}
			c.log.Info("Submitted batch job", zap.Int64("job_id", id), zap.String("dir", dir))
			return id, nil
		}
		lastErr = err

		c.log.Warn("sbatch failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", c.opts.SubmitRetries),
			zap.Error(err),
		)
		if attempt == c.opts.SubmitRetries {
			break
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(time.Duration(attempt) * c.opts.RetryDelay):
		}
	}
	return 0, fmt.Errorf("failed to submit %s after %d attempts: %w", script, c.opts.SubmitRetries, lastErr)
}

// States returns the state of every task of the job. Jobs that already left
// the queue are looked up in the accounting database.
func (c *client) States(ctx context.Context, jobID int64) ([]string, error) {
	id := strconv.FormatInt(jobID, 10)

	out, err := c.cmd.Run(ctx, "", c.opts.Squeue, "-h", "-j", id, "-o", "%T")
	if err == nil {
		if states := splitLines(out); len(states) > 0 {
			return states, nil
		}
	} else {
		c.log.Debug("squeue lookup failed, falling back to sacct", zap.String("job_id", id), zap.Error(err))
	}

	out, err = c.cmd.Run(ctx, "", c.opts.Sacct, "-n", "-X", "-P", "-j", id, "-o", "State")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

var (
	submittedRe = regexp.MustCompile(`Submitted batch job (\d+)`)
	parsableRe  = regexp.MustCompile(`^(\d+)(;\S+)?$`)
)

// ParseJobID extracts the job id from sbatch output, plain or --parsable
func ParseJobID(out string) (int64, error) {
	out = strings.TrimSpace(out)
	var raw string
	if m := submittedRe.FindStringSubmatch(out); m != nil {
		raw = m[1]
	} else if m := parsableRe.FindStringSubmatch(out); m != nil {
		raw = m[1]
	} else {
		return 0, fmt.Errorf("%w: %q", domain.ErrJobIDNotFound, out)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Join(domain.ErrJobIDNotFound, err)
	}
	return id, nil
}

func splitLines(out []byte) []string {
	var lines []string
	for _, l := range strings.Split(string(out), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
