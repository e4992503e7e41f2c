package main

import (
	"math"
	"time"
)

// measure runs fn once and reports how long it took. The clock starts right
// before fn is called and stops right after it returns, on success and failure.
func measure[T any](fn func() (T, error)) (T, time.Duration, error) {
	start := time.Now()
	v, err := fn()
	return v, time.Since(start), err
}

// roundedMillis converts seconds to whole milliseconds, rounding half away from zero
func roundedMillis(seconds float64) int64 {
	return int64(math.Round(seconds * 1000))
}
