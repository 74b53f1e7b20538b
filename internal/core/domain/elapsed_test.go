package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestElapsedHours(t *testing.T) {
	t.Parallel()
	tests := []struct {
		start, end float64
		want       string
	}{
		{1000.0, 4600.0, "1.000000"},
		{0.0, 0.0, "0.000000"},
		{0.0, 1.0, "0.000278"},
		{1700000000.5, 1700005400.5, "1.500000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatHours(ElapsedHours(tt.start, tt.end)))
	}
}

func TestUnixSeconds(t *testing.T) {
	t.Parallel()
	ts := time.Unix(1000, int64(500*time.Millisecond))
	assert.InDelta(t, 1000.5, UnixSeconds(ts), 1e-9)
}
