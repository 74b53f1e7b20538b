package domain

import "strings"

// AggregateState folds the per array task scheduler states into one job state.
// Running beats pending, pending beats failure, and only an all-completed set
// counts as completed.
func AggregateState(states []string) JobState {
	if len(states) == 0 {
		return JobStateUnknown
	}

	var running, pending, failed, completed int
	for _, raw := range states {
		// sacct prints "CANCELLED by 1234"
		fields := strings.Fields(strings.ToUpper(raw))
		if len(fields) == 0 {
			continue
		}
		switch strings.TrimSuffix(fields[0], "+") {
		case "RUNNING", "COMPLETING", "CONFIGURING", "STAGE_OUT", "SUSPENDED":
			running++
		case "PENDING", "REQUEUED", "RESIZING":
			pending++
		case "FAILED", "TIMEOUT", "CANCELLED", "OUT_OF_MEMORY", "NODE_FAIL", "BOOT_FAIL", "DEADLINE", "PREEMPTED":
			failed++
		case "COMPLETED":
			completed++
		}
	}

	switch {
	case running > 0:
		return JobStateRunning
	case pending > 0:
		return JobStatePending
	case failed > 0:
		return JobStateFailed
	case completed > 0 && completed == len(states):
		return JobStateCompleted
	default:
		return JobStateUnknown
	}
}
