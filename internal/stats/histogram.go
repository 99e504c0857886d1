package stats

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// latency tracks request durations in microseconds, 1us to 10min at 3 significant figures.
type latency struct {
	hist *hdrhistogram.Histogram
}

func newLatency() *latency {
	return &latency{hist: hdrhistogram.New(1, int64(10*time.Minute/time.Microsecond), 3)}
}

func (l *latency) record(d time.Duration) {
	us := d.Microseconds()
	if us < 1 {
		us = 1
	}
	// values above the highest trackable one are clamped rather than dropped
	if highest := l.hist.HighestTrackableValue(); us > highest {
		us = highest
	}
	l.hist.RecordValue(us) //nolint:errcheck
}

func (l *latency) quantile(q float64) time.Duration {
	return time.Duration(l.hist.ValueAtQuantile(q)) * time.Microsecond
}

func (l *latency) max() time.Duration {
	return time.Duration(l.hist.Max()) * time.Microsecond
}
