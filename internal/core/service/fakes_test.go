package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/crabzie/foldbatch/internal/core/port"
)

// listedSource loads through the wrapped source but lists files in a fixed order
type listedSource struct {
	port.SequenceSource
	files []string
}

func (s listedSource) ListInputs(ctx context.Context) ([]string, error) {
	return s.files, nil
}

// fakeScheduler hands out sequential job ids and canned states
type fakeScheduler struct {
	mu      sync.Mutex
	nextID  int64
	submits []string
	failDir map[string]error
	states  map[int64][]string
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{nextID: 1000, failDir: map[string]error{}, states: map[int64][]string{}}
}

func (f *fakeScheduler) Submit(ctx context.Context, dir, script string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failDir[dir]; ok {
		return 0, err
	}
	f.submits = append(f.submits, dir+"/"+script)
	f.nextID++
	return f.nextID, nil
}

func (f *fakeScheduler) States(ctx context.Context, jobID int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	states, ok := f.states[jobID]
	if !ok {
		return nil, fmt.Errorf("job %d unknown", jobID)
	}
	return states, nil
}

type processCall struct {
	program string
	args    []string
	env     []string
}

type fakeProcess struct {
	calls []processCall
	code  int
	err   error
}

func (f *fakeProcess) Run(ctx context.Context, program string, args []string, env []string) (int, error) {
	f.calls = append(f.calls, processCall{program: program, args: args, env: env})
	return f.code, f.err
}
