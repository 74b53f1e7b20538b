package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimedCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"plain", []string{"run.py", "input.faa"}, "/opt/foldbatch/runner -profile gaudi -- run.py input.faa"},
		{"leading dash", []string{"-u", "run_esmfold.py"}, "/opt/foldbatch/runner -profile gaudi -- -u run_esmfold.py"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, timedCommand("/opt/foldbatch/runner", "gaudi", tt.args))
		})
	}
}

func TestRunnerPath(t *testing.T) {
	got, err := runnerPath("/opt/foldbatch/runner")
	require.NoError(t, err)
	assert.Equal(t, "/opt/foldbatch/runner", got)

	got, err = runnerPath("")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got), got)
	assert.Equal(t, "runner", filepath.Base(got))
}
