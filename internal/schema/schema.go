package schema

import "time"

// Endpoint describes one HTTP call the simulator may issue.
type Endpoint struct {
	Name    string `validate:"required"`
	Method  string `validate:"required,oneof=GET POST PUT PATCH DELETE HEAD OPTIONS"`
	Path    string `validate:"required,startswith=/"`
	Headers map[string]string
	Body    []byte
	Weight  float64 `validate:"gt=0"`

	// Payload, when set, replaces Body with a freshly built payload on every request.
	Payload func() []byte `validate:"-"`
}

func (e Endpoint) RequestBody() []byte {
	if e.Payload != nil {
		return e.Payload()
	}
	return e.Body
}

type ResponseRecord struct {
	Endpoint   string
	RequestID  string
	StatusCode int
	Duration   time.Duration
	Success    bool
	Timestamp  time.Time
	Error      string
}

// IsSuccess classifies a status code; 0 marks a request that never reached the server.
func IsSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 400
}

// Recorder consumes response records as they complete.
type Recorder interface {
	Record(ResponseRecord)
}

type EndpointStats struct {
	Name          string
	Count         int
	SuccessCount  int
	TotalDuration time.Duration
}

func (stats *EndpointStats) AvgDuration() time.Duration {
	if stats.Count == 0 {
		return 0
	}
	return stats.TotalDuration / time.Duration(stats.Count)
}

func (stats *EndpointStats) SuccessRate() float64 {
	if stats.Count == 0 {
		return 0
	}
	return 100 * float64(stats.SuccessCount) / float64(stats.Count)
}

type Latency struct {
	P50 time.Duration
	P90 time.Duration
	P99 time.Duration
	Max time.Duration
}

type Report struct {
	RunID        string
	Total        int
	SuccessCount int
	ErrorCount   int
	SuccessRate  float64
	AvgDuration  time.Duration
	Throughput   float64
	WallClock    time.Duration
	Latency      Latency
	StatusCodes  map[int]int
	Endpoints    []EndpointStats
	Interrupted  bool
}

type Summary struct {
	Duration    time.Duration
	Batches     int
	Completed   int
	Interrupted bool
}
