// Package stats accumulates response records for a run and derives the
// final report from them.
package stats

import (
	"sync"
	"time"

	"github.com/dvdk01/loadsim/internal/schema"
)

// Stats is the running state of a simulation.
// Total == SuccessCount + ErrorCount == len(Responses) after every Record.
type Stats struct {
	Total         int
	SuccessCount  int
	ErrorCount    int
	TotalDuration time.Duration
	Responses     []schema.ResponseRecord
}

type Aggregator struct {
	mu      sync.Mutex
	stats   Stats
	latency *latency
}

func New() *Aggregator {
	return &Aggregator{latency: newLatency()}
}

// Record applies one response to the running totals. Safe for concurrent use.
func (a *Aggregator) Record(r schema.ResponseRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()

	stats := &a.stats
	stats.Total++
	if r.Success {
		stats.SuccessCount++
	} else {
		stats.ErrorCount++
	}
	stats.TotalDuration += r.Duration
	stats.Responses = append(stats.Responses, r)

	a.latency.record(r.Duration)
}

// Snapshot returns a copy that later records do not affect.
func (a *Aggregator) Snapshot() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.stats
	s.Responses = append([]schema.ResponseRecord(nil), a.stats.Responses...)
	return s
}

// Report derives the run report. wall is the wall-clock time of the whole run.
func (a *Aggregator) Report(wall time.Duration, runID string) schema.Report {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.stats
	report := schema.Report{
		RunID:        runID,
		Total:        s.Total,
		SuccessCount: s.SuccessCount,
		ErrorCount:   s.ErrorCount,
		WallClock:    wall,
		StatusCodes:  make(map[int]int),
	}

	if s.Total > 0 {
		report.SuccessRate = 100 * float64(s.SuccessCount) / float64(s.Total)
		report.AvgDuration = s.TotalDuration / time.Duration(s.Total)
		report.Latency = schema.Latency{
			P50: a.latency.quantile(50),
			P90: a.latency.quantile(90),
			P99: a.latency.quantile(99),
			Max: a.latency.max(),
		}
	}
	if wall > 0 {
		report.Throughput = float64(s.Total) / wall.Seconds()
	}

	index := make(map[string]int)
	for _, r := range s.Responses {
		i, ok := index[r.Endpoint]
		if !ok {
			i = len(report.Endpoints)
			index[r.Endpoint] = i
			report.Endpoints = append(report.Endpoints, schema.EndpointStats{Name: r.Endpoint})
		}
		e := &report.Endpoints[i]
		e.Count++
		e.TotalDuration += r.Duration
		if r.Success {
			e.SuccessCount++
		}
		if r.StatusCode > 0 {
			report.StatusCodes[r.StatusCode]++
		}
	}

	return report
}
