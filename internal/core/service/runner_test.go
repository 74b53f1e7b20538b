package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crabzie/foldbatch/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRunner(proc *fakeProcess, out *bytes.Buffer, start, end time.Time) *RunnerService {
	env := domain.Environment{
		Name:        "gaudi-pytorch",
		Vars:        map[string]string{"PT_HPU_LAZY_MODE": "1"},
		Interpreter: "/packages/envs/$ENV_NAME/bin/python3",
	}
	r := NewRunnerService(proc, env, out, zap.NewNop())
	times := []time.Time{start, end}
	r.now = func() time.Time {
		t := times[0]
		times = times[1:]
		return t
	}
	r.base = func() []string { return []string{"HOME=/home/u"} }
	return r
}

func TestRunnerPrintsElapsedHours(t *testing.T) {
	t.Parallel()
	proc := &fakeProcess{}
	var out bytes.Buffer
	r := newTestRunner(proc, &out, time.Unix(1000, 0), time.Unix(4600, 0))

	code, err := r.Run(context.Background(), "", []string{"run_esmfold.py"})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "Elapsed time: 1.000000 hours\n", out.String())

	require.Len(t, proc.calls, 1)
	assert.Equal(t, "/packages/envs/gaudi-pytorch/bin/python3", proc.calls[0].program)
	assert.Equal(t, []string{"run_esmfold.py"}, proc.calls[0].args)
	assert.Equal(t, []string{"HOME=/home/u", "ENV_NAME=gaudi-pytorch", "PT_HPU_LAZY_MODE=1"}, proc.calls[0].env)
}

func TestRunnerZeroElapsed(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	r := newTestRunner(&fakeProcess{}, &out, time.Unix(0, 0), time.Unix(0, 0))

	_, err := r.Run(context.Background(), "run.py", nil)
	require.NoError(t, err)
	assert.Equal(t, "Elapsed time: 0.000000 hours\n", out.String())
}

func TestRunnerPropagatesFailure(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	r := newTestRunner(&fakeProcess{code: 2}, &out, time.Unix(0, 0), time.Unix(36, 0))

	code, err := r.Run(context.Background(), "run.py", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, code)
	assert.Equal(t, "Elapsed time: 0.010000 hours\n", out.String())

	out.Reset()
	notFound := errors.New("exec: not found")
	r = newTestRunner(&fakeProcess{code: 127, err: notFound}, &out, time.Unix(0, 0), time.Unix(0, 0))
	code, err = r.Run(context.Background(), "missing", nil)
	require.ErrorIs(t, err, notFound)
	assert.Equal(t, 127, code)
	assert.Equal(t, "Elapsed time: 0.000000 hours\n", out.String())
}
