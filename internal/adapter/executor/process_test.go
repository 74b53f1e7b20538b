//go:build unix

package executor

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunPassesOutputAndEnv(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer
	r := NewProcessRunner(t.TempDir(), &stdout, &stderr, zap.NewNop())

	code, err := r.Run(context.Background(), "/bin/sh", []string{"-c", "echo $PT_HPU_LAZY_MODE; echo oops >&2"}, []string{"PT_HPU_LAZY_MODE=1"})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "1\n", stdout.String())
	assert.Equal(t, "oops\n", stderr.String())
}

func TestRunReturnsExitCode(t *testing.T) {
	t.Parallel()
	r := NewProcessRunner("", &bytes.Buffer{}, &bytes.Buffer{}, zap.NewNop())

	code, err := r.Run(context.Background(), "/bin/sh", []string{"-c", "exit 3"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

func TestRunMissingProgram(t *testing.T) {
	t.Parallel()
	r := NewProcessRunner("", &bytes.Buffer{}, &bytes.Buffer{}, zap.NewNop())

	code, err := r.Run(context.Background(), "/nonexistent/program", nil, nil)
	require.Error(t, err)
	assert.Equal(t, ExitNotStarted, code)
}
