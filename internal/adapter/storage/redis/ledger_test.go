package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/crabzie/foldbatch/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStorage struct {
	data map[string][]byte
	exp  map[string]time.Duration
	err  error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{data: map[string][]byte{}, exp: map[string]time.Duration{}}
}

func (f *fakeStorage) Get(key string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.data[key], nil
}

func (f *fakeStorage) Set(key string, val []byte, exp time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.data[key] = val
	f.exp[key] = exp
	return nil
}

func TestLedgerMarksSubmission(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeStorage()
	l := NewSubmissionLedger(store, 48*time.Hour, zap.NewNop())

	ok, err := l.IsSubmitted(ctx, "data/a.faa")
	require.NoError(t, err)
	assert.False(t, ok)

	s := domain.NewSubmission(0, "data/a.faa", "F000", "gpu", 4)
	s.JobID = 99
	require.NoError(t, l.MarkSubmitted(ctx, "data/a.faa", s))

	ok, err = l.IsSubmitted(ctx, "data/a.faa")
	require.NoError(t, err)
	assert.True(t, ok)

	var entry ledgerEntry
	require.NoError(t, json.Unmarshal(store.data["submitted:data/a.faa"], &entry))
	assert.Equal(t, int64(99), entry.JobID)
	assert.Equal(t, s.ID.String(), entry.SubmissionID)
	assert.Equal(t, 48*time.Hour, store.exp["submitted:data/a.faa"])
}

func TestLedgerPropagatesErrors(t *testing.T) {
	t.Parallel()
	store := newFakeStorage()
	store.err = errors.New("connection refused")
	l := NewSubmissionLedger(store, 0, zap.NewNop())

	_, err := l.IsSubmitted(context.Background(), "x")
	require.Error(t, err)
	require.Error(t, l.MarkSubmitted(context.Background(), "x", domain.NewSubmission(0, "x", "F000", "gpu", 1)))
}
