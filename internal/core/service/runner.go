package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/crabzie/foldbatch/internal/core/domain"
	"github.com/crabzie/foldbatch/internal/core/port"
	"go.uber.org/zap"
)

// RunnerService launches one delegated program inside the activated
// environment and reports its wall-clock time in hours
type RunnerService struct {
	proc port.ProcessRunner
	env  domain.Environment
	out  io.Writer
	now  func() time.Time
	base func() []string
	log  *zap.Logger
}

func NewRunnerService(proc port.ProcessRunner, env domain.Environment, out io.Writer, log *zap.Logger) *RunnerService {
	return &RunnerService{
		proc: proc,
		env:  env,
		out:  out,
		now:  time.Now,
		base: os.Environ,
		log:  log,
	}
}

// Run executes program synchronously and returns its exit code. The elapsed
// line is printed whether or not the program succeeded.
func (r *RunnerService) Run(ctx context.Context, program string, args []string) (int, error) {
	if program == "" {
		program = r.env.Interpreter
	}
	program = r.resolve(program)
	env := r.env.Environ(r.base())

	r.log.Info("Running delegated program",
		zap.String("program", program),
		zap.Strings("args", args),
		zap.String("env", r.env.Name))

	start := r.now()
	code, err := r.proc.Run(ctx, program, args, env)
	end := r.now()

	hours := domain.ElapsedHours(domain.UnixSeconds(start), domain.UnixSeconds(end))
	fmt.Fprintf(r.out, "Elapsed time: %s hours\n", domain.FormatHours(hours))

	if err != nil {
		r.log.Error("Delegated program could not run", zap.Error(err))
	} else if code != 0 {
		r.log.Warn("Delegated program exited with failure", zap.Int("exit_code", code))
	}
	return code, err
}

// resolve expands $ENV_NAME and then the rest of the process environment, as the job shell would
func (r *RunnerService) resolve(program string) string {
	program = strings.NewReplacer("${ENV_NAME}", r.env.Name, "$ENV_NAME", r.env.Name).Replace(program)
	return os.ExpandEnv(program)
}
