package application

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/dvdk01/loadsim/internal/config"
	"github.com/dvdk01/loadsim/internal/schema"
	"github.com/stretchr/testify/assert"
)

func TestCLIApplication_Progress(t *testing.T) {
	tests := []struct {
		name     string
		done     int
		total    int
		expected string
	}{
		// Test case for a partially completed run
		// Verifies that the line is rewritten in place with percent and counts
		{name: "partial", done: 40, total: 100, expected: "\r📈 Progress: 40% (40/100)"},
		// Test case for percentages that are not whole numbers
		// Verifies that the percentage is rounded to the nearest integer
		{name: "rounded", done: 5, total: 23, expected: "\r📈 Progress: 22% (5/23)"},
		// Test case for completion
		// Verifies that the final batch reports 100 percent
		{name: "complete", done: 23, total: 23, expected: "\r📈 Progress: 100% (23/23)"},
		// Test case for an empty budget
		// Verifies that no division by zero happens
		{name: "empty", done: 0, total: 0, expected: "\r📈 Progress: 100% (0/0)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			NewCLIApplication(&out).Progress(tt.done, tt.total)
			assert.Equal(t, tt.expected, out.String())
		})
	}
}

func TestCLIApplication_PrintConfig(t *testing.T) {
	var out bytes.Buffer
	cfg := config.Default()
	cfg.TotalRequests = 23

	NewCLIApplication(&out).PrintConfig(cfg, 3)

	s := out.String()
	assert.Contains(t, s, "Total Requests: 23")
	assert.Contains(t, s, "Delay Between Requests: 100ms")
	assert.Contains(t, s, "Concurrent Requests: 5")
	assert.Contains(t, s, "Endpoints: 3")
	assert.Contains(t, s, "http://localhost:3000")
}

func TestCLIApplication_Render(t *testing.T) {
	var out bytes.Buffer
	report := schema.Report{
		RunID:        "abc",
		Total:        10,
		SuccessCount: 8,
		ErrorCount:   2,
		SuccessRate:  80,
		AvgDuration:  12500 * time.Microsecond,
		Throughput:   4.5,
		WallClock:    2222 * time.Millisecond,
		StatusCodes:  map[int]int{200: 8, 500: 2},
		Endpoints: []schema.EndpointStats{
			{Name: "POST /users (Create User)", Count: 4, SuccessCount: 2, TotalDuration: 40 * time.Millisecond},
			{Name: "GET /users (All Users)", Count: 6, SuccessCount: 6, TotalDuration: 60 * time.Millisecond},
		},
		Latency: schema.Latency{P50: 10 * time.Millisecond, P90: 20 * time.Millisecond, P99: 30 * time.Millisecond, Max: 31 * time.Millisecond},
	}

	NewCLIApplication(&out).Render(report)

	s := out.String()
	assert.Contains(t, s, "Simulation Complete!")
	assert.Contains(t, s, "8 (80.0%)")
	assert.Contains(t, s, "12.50ms")
	assert.Contains(t, s, "4.50")
	assert.Contains(t, s, "2222ms")
	assert.Contains(t, s, "50.0%")
	assert.Contains(t, s, "100.0%")
	assert.Contains(t, s, "30.00ms")
	// breakdown keeps first appearance order
	assert.Less(t, strings.Index(s, "POST /users (Create User)"), strings.Index(s, "GET /users (All Users)"))
}

func TestCLIApplication_RenderEmptyRun(t *testing.T) {
	var out bytes.Buffer

	NewCLIApplication(&out).Render(schema.Report{Interrupted: true, StatusCodes: map[int]int{}})

	s := out.String()
	assert.Contains(t, s, "Simulation Interrupted!")
	assert.Contains(t, s, "NO STATUS CODE")
	assert.Contains(t, s, "no requests completed")
	assert.NotContains(t, s, "P99")
}
