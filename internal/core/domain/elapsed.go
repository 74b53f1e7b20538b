package domain

import (
	"strconv"
	"time"
)

// ElapsedHours converts a pair of unix timestamps in seconds to hours
func ElapsedHours(start, end float64) float64 {
	return (end - start) / 3600
}

// FormatHours prints hours with exactly six decimal places
func FormatHours(hours float64) string {
	return strconv.FormatFloat(hours, 'f', 6, 64)
}

// UnixSeconds returns t as fractional unix seconds
func UnixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
