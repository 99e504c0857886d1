// Package metrics exposes live counters for a running simulation in the
// Prometheus format.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dvdk01/loadsim/internal/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const namespace = "loadsim"

// Recorder counts every record before handing it to the next recorder.
type Recorder struct {
	next     schema.Recorder
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func NewRecorder(reg prometheus.Registerer, next schema.Recorder) (*Recorder, error) {
	r := &Recorder{
		next: next,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests completed, by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Request latency from dispatch to completion.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
		}, []string{"endpoint"}),
	}

	for _, c := range []prometheus.Collector{r.requests, r.latency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Recorder) Record(rec schema.ResponseRecord) {
	r.requests.WithLabelValues(rec.Endpoint, outcome(rec)).Inc()
	r.latency.WithLabelValues(rec.Endpoint).Observe(rec.Duration.Seconds())
	if r.next != nil {
		r.next.Record(rec)
	}
}

func outcome(rec schema.ResponseRecord) string {
	switch {
	case rec.Success:
		return "success"
	case rec.StatusCode == 0:
		return "transport_error"
	default:
		return "http_error"
	}
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	log.WithField("addr", addr).Info("serving metrics on /metrics")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
