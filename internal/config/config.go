// Package config resolves the parameters of a simulation run.
//
// Values are layered, lowest precedence first: defaults, an optional YAML
// file, LOADSIM_* environment variables, then command line overrides. A
// value that cannot be parsed or is out of bounds silently keeps the
// default; configuration never fails a run.
package config

import (
	"time"
)

const (
	DefaultTotalRequests    = 100
	DefaultBatchConcurrency = 5
	DefaultDelayMillis      = 100
	DefaultTarget           = "http://localhost:3000"
	DefaultRequestTimeout   = 10 * time.Second
	DefaultLogLevel         = "info"
)

// Keys accepted in the YAML file, as LOADSIM_<KEY> variables and as overrides.
const (
	KeyRequests      = "requests"
	KeyConcurrent    = "concurrent"
	KeyDelay         = "delay"
	KeyVerbose       = "verbose"
	KeyTarget        = "target"
	KeyTimeout       = "timeout"
	KeySeed          = "seed"
	KeyUniquePayload = "unique_payload"
	KeyMetricsAddr   = "metrics_addr"
	KeyLogLevel      = "log_level"
)

// Config is resolved once before a run and then only read.
type Config struct {
	TotalRequests    int `validate:"gte=0"`
	BatchConcurrency int `validate:"gte=1"`
	DelayMillis      int `validate:"gte=0"`
	Verbose          bool
	Target           string
	RequestTimeout   time.Duration `validate:"gt=0"`

	// Seed fixes the endpoint selection sequence; 0 picks a random seed.
	Seed          uint64
	UniquePayload bool
	MetricsAddr   string
	LogLevel      string `validate:"oneof=trace debug info warn error"`
}

func Default() Config {
	return Config{
		TotalRequests:    DefaultTotalRequests,
		BatchConcurrency: DefaultBatchConcurrency,
		DelayMillis:      DefaultDelayMillis,
		Verbose:          true,
		Target:           DefaultTarget,
		RequestTimeout:   DefaultRequestTimeout,
		LogLevel:         DefaultLogLevel,
	}
}

func (c Config) InterBatchDelay() time.Duration {
	return time.Duration(c.DelayMillis) * time.Millisecond
}
