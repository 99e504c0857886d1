package executor

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dvdk01/loadsim/internal/schema"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-ID"

type Executor struct {
	client  *http.Client
	target  string
	logger  log.FieldLogger
	verbose bool
}

func New(client *http.Client, target string, logger log.FieldLogger, verbose bool) *Executor {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Executor{
		client:  client,
		target:  strings.TrimRight(target, "/"),
		logger:  logger,
		verbose: verbose,
	}
}

// Execute issues one request for the endpoint. Every outcome, including
// transport failures, is returned as a record.
func (e *Executor) Execute(ctx context.Context, endpoint schema.Endpoint) schema.ResponseRecord {
	requestID := uuid.NewString()
	result := e.makeRequest(ctx, endpoint, requestID)
	e.logResult(result)
	return result
}

func (e *Executor) makeRequest(ctx context.Context, endpoint schema.Endpoint, requestID string) schema.ResponseRecord {
	var body io.Reader
	if payload := endpoint.RequestBody(); payload != nil {
		body = bytes.NewReader(payload)
	}

	start := time.Now()

	// once dispatched a request runs to completion; the client timeout bounds it
	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), endpoint.Method, e.target+endpoint.Path, body)
	if err != nil {
		return failure(endpoint, requestID, start, err)
	}
	for name, value := range endpoint.Headers {
		req.Header.Set(name, value)
	}
	req.Header.Set(requestIDHeader, requestID)

	resp, err := e.client.Do(req)
	if err != nil {
		return failure(endpoint, requestID, start, err)
	}
	defer resp.Body.Close() //nolint

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return failure(endpoint, requestID, start, err)
	}

	end := time.Now()
	return schema.ResponseRecord{
		Endpoint:   endpoint.Name,
		RequestID:  requestID,
		StatusCode: resp.StatusCode,
		Duration:   end.Sub(start),
		Success:    schema.IsSuccess(resp.StatusCode),
		Timestamp:  end,
	}
}

func failure(endpoint schema.Endpoint, requestID string, start time.Time, err error) schema.ResponseRecord {
	end := time.Now()
	return schema.ResponseRecord{
		Endpoint:  endpoint.Name,
		RequestID: requestID,
		Duration:  end.Sub(start),
		Success:   false,
		Timestamp: end,
		Error:     err.Error(),
	}
}

func (e *Executor) logResult(result schema.ResponseRecord) {
	entry := e.logger.WithFields(log.Fields{
		"endpoint":   result.Endpoint,
		"status":     result.StatusCode,
		"duration":   result.Duration.Round(time.Millisecond),
		"request_id": result.RequestID,
	})

	switch {
	case result.Error != "":
		entry.WithField("error", result.Error).Errorf("❌ %s - ERROR - %s", result.Endpoint, result.Error)
	case !e.verbose:
		return
	case result.Success:
		entry.Infof("✅ %s - %d - %dms", result.Endpoint, result.StatusCode, result.Duration.Milliseconds())
	default:
		entry.Warnf("⚠️  %s - %d - %dms", result.Endpoint, result.StatusCode, result.Duration.Milliseconds())
	}
}
