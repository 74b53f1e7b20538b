package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateState(t *testing.T) {
	t.Parallel()
	tests := []struct {
		states []string
		want   JobState
	}{
		{nil, JobStateUnknown},
		{[]string{"PENDING", "RUNNING", "FAILED"}, JobStateRunning},
		{[]string{"PENDING", "PENDING"}, JobStatePending},
		{[]string{"COMPLETED", "PENDING"}, JobStatePending},
		{[]string{"COMPLETED", "CANCELLED by 1234"}, JobStateFailed},
		{[]string{"COMPLETED", "TIMEOUT"}, JobStateFailed},
		{[]string{"completed", "COMPLETED"}, JobStateCompleted},
		{[]string{"COMPLETED", "WEIRD"}, JobStateUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AggregateState(tt.states), "%v", tt.states)
	}
}

func TestJobStateTerminal(t *testing.T) {
	t.Parallel()
	assert.True(t, JobStateCompleted.Terminal())
	assert.True(t, JobStateFailed.Terminal())
	assert.False(t, JobStateRunning.Terminal())
	assert.False(t, JobStateSubmitted.Terminal())
}
