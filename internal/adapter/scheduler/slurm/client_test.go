package slurm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crabzie/foldbatch/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type call struct {
	dir  string
	name string
	args []string
}

// mockCommander replays canned outputs in order
type mockCommander struct {
	calls   []call
	outputs []string
	errs    []error
}

func (m *mockCommander) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	i := len(m.calls)
	m.calls = append(m.calls, call{dir: dir, name: name, args: args})
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	var out string
	if i < len(m.outputs) {
		out = m.outputs[i]
	}
	return []byte(out), err
}

func TestParseJobID(t *testing.T) {
	t.Parallel()
	tests := []struct {
		out     string
		want    int64
		wantErr bool
	}{
		{"Submitted batch job 4567\n", 4567, false},
		{"sbatch: info\nSubmitted batch job 12", 12, false},
		{"991", 991, false},
		{"991;cluster1\n", 991, false},
		{"", 0, true},
		{"error: Batch job submission failed", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseJobID(tt.out)
		if tt.wantErr {
			require.ErrorIs(t, err, domain.ErrJobIDNotFound, tt.out)
			continue
		}
		require.NoError(t, err, tt.out)
		assert.Equal(t, tt.want, got)
	}
}

func TestSubmitRetries(t *testing.T) {
	t.Parallel()
	cmd := &mockCommander{
		outputs: []string{"", "Submitted batch job 77"},
		errs:    []error{errors.New("slurm_load_jobs error"), nil},
	}
	c := NewClient(cmd, Options{SubmitRetries: 3, RetryDelay: time.Millisecond}, zap.NewNop())

	id, err := c.Submit(context.Background(), "F000", "sub_fold.sh")
	require.NoError(t, err)
	assert.Equal(t, int64(77), id)
	require.Len(t, cmd.calls, 2)
	assert.Equal(t, call{dir: "F000", name: "sbatch", args: []string{"sub_fold.sh"}}, cmd.calls[1])
}

func TestSubmitGivesUp(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	cmd := &mockCommander{errs: []error{boom, boom}}
	c := NewClient(cmd, Options{Sbatch: "/usr/bin/sbatch", SubmitRetries: 2, RetryDelay: time.Millisecond}, zap.NewNop())

	_, err := c.Submit(context.Background(), "F001", "sub_fold.sh")
	require.ErrorIs(t, err, boom)
	assert.Len(t, cmd.calls, 2)
	assert.Equal(t, "/usr/bin/sbatch", cmd.calls[0].name)
}

func TestStatesFromSqueue(t *testing.T) {
	t.Parallel()
	cmd := &mockCommander{outputs: []string{"RUNNING\nPENDING\n\n"}}
	c := NewClient(cmd, Options{}, zap.NewNop())

	states, err := c.States(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, []string{"RUNNING", "PENDING"}, states)
	require.Len(t, cmd.calls, 1)
	assert.Equal(t, []string{"-h", "-j", "42", "-o", "%T"}, cmd.calls[0].args)
}

func TestStatesFallsBackToSacct(t *testing.T) {
	t.Parallel()
	cmd := &mockCommander{
		outputs: []string{"", "COMPLETED\nFAILED\n"},
		errs:    []error{errors.New("Invalid job id specified"), nil},
	}
	c := NewClient(cmd, Options{}, zap.NewNop())

	states, err := c.States(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, []string{"COMPLETED", "FAILED"}, states)
	require.Len(t, cmd.calls, 2)
	assert.Equal(t, "sacct", cmd.calls[1].name)
}
