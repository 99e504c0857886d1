package stats

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dvdk01/loadsim/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(endpoint string, status int, d time.Duration) schema.ResponseRecord {
	r := schema.ResponseRecord{
		Endpoint:   endpoint,
		StatusCode: status,
		Duration:   d,
		Success:    schema.IsSuccess(status),
		Timestamp:  time.Now(),
	}
	if status == 0 {
		r.Error = "connection refused"
	}
	return r
}

func assertInvariant(t *testing.T, s Stats) {
	t.Helper()
	assert.Equal(t, s.Total, s.SuccessCount+s.ErrorCount)
	assert.Equal(t, s.Total, len(s.Responses))
}

func TestAggregator_Record(t *testing.T) {
	tests := []struct {
		name        string
		records     []schema.ResponseRecord
		wantTotal   int
		wantSuccess int
		wantErrors  int
		wantTime    time.Duration
	}{
		// Test case for a single successful response
		// Verifies that counters and durations start from zero correctly
		{
			name:        "first request",
			records:     []schema.ResponseRecord{record("a", 200, time.Second)},
			wantTotal:   1,
			wantSuccess: 1,
			wantErrors:  0,
			wantTime:    time.Second,
		},
		// Test case for mixed outcomes
		// Verifies that application and transport errors both count as errors
		{
			name: "mixed outcomes",
			records: []schema.ResponseRecord{
				record("a", 200, time.Second),
				record("a", 404, 2*time.Second),
				record("b", 0, 3*time.Second),
				record("b", 302, time.Second),
			},
			wantTotal:   4,
			wantSuccess: 2,
			wantErrors:  2,
			wantTime:    7 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := New()
			for _, r := range tt.records {
				agg.Record(r)
				assertInvariant(t, agg.Snapshot())
			}

			s := agg.Snapshot()
			assert.Equal(t, tt.wantTotal, s.Total)
			assert.Equal(t, tt.wantSuccess, s.SuccessCount)
			assert.Equal(t, tt.wantErrors, s.ErrorCount)
			assert.Equal(t, tt.wantTime, s.TotalDuration)
			assert.Equal(t, tt.records, s.Responses)
		})
	}
}

func TestAggregator_ConcurrentRecord(t *testing.T) {
	t.Parallel()

	agg := New()
	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				status := 200
				if (w+i)%3 == 0 {
					status = 500
				}
				agg.Record(record(fmt.Sprintf("e%d", w%4), status, time.Millisecond))
				assertInvariant(t, agg.Snapshot())
			}
		}(w)
	}
	wg.Wait()

	s := agg.Snapshot()
	assert.Equal(t, 4000, s.Total)
	assertInvariant(t, s)
}

func TestAggregator_SnapshotIsCopy(t *testing.T) {
	agg := New()
	agg.Record(record("a", 200, time.Millisecond))

	s := agg.Snapshot()
	s.Responses[0].StatusCode = 500
	s.Total = 99

	again := agg.Snapshot()
	assert.Equal(t, 200, again.Responses[0].StatusCode)
	assert.Equal(t, 1, again.Total)
}

func TestAggregator_Report(t *testing.T) {
	agg := New()
	agg.Record(record("POST /users", 201, 30*time.Millisecond))
	agg.Record(record("GET /users", 200, 10*time.Millisecond))
	agg.Record(record("POST /users", 500, 50*time.Millisecond))
	agg.Record(record("GET /users/1", 0, 20*time.Millisecond))
	agg.Record(record("GET /users", 200, 10*time.Millisecond))

	report := agg.Report(2*time.Second, "run-1")

	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 3, report.SuccessCount)
	assert.Equal(t, 2, report.ErrorCount)
	assert.InDelta(t, 60.0, report.SuccessRate, 1e-9)
	assert.Equal(t, 24*time.Millisecond, report.AvgDuration)
	assert.InDelta(t, 2.5, report.Throughput, 1e-9)
	assert.Equal(t, map[int]int{200: 2, 201: 1, 500: 1}, report.StatusCodes)

	require.Len(t, report.Endpoints, 3)
	// first appearance order, not alphabetical
	assert.Equal(t, "POST /users", report.Endpoints[0].Name)
	assert.Equal(t, "GET /users", report.Endpoints[1].Name)
	assert.Equal(t, "GET /users/1", report.Endpoints[2].Name)

	post := report.Endpoints[0]
	assert.Equal(t, 2, post.Count)
	assert.InDelta(t, 50.0, post.SuccessRate(), 1e-9)
	assert.Equal(t, 40*time.Millisecond, post.AvgDuration())

	sum := 0
	for _, e := range report.Endpoints {
		sum += e.Count
	}
	assert.Equal(t, report.Total, sum)

	assert.InDelta(t, float64(50*time.Millisecond), float64(report.Latency.Max), float64(time.Millisecond))
	assert.LessOrEqual(t, report.Latency.P50, report.Latency.P90)
	assert.LessOrEqual(t, report.Latency.P90, report.Latency.P99)
}

func TestAggregator_ReportEmpty(t *testing.T) {
	report := New().Report(0, "")

	assert.Zero(t, report.Total)
	assert.Zero(t, report.SuccessRate)
	assert.Zero(t, report.AvgDuration)
	assert.Zero(t, report.Throughput)
	assert.Empty(t, report.Endpoints)
}
