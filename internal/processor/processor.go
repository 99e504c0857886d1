package processor

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dvdk01/loadsim/internal/application"
	"github.com/dvdk01/loadsim/internal/catalog"
	"github.com/dvdk01/loadsim/internal/config"
	"github.com/dvdk01/loadsim/internal/executor"
	"github.com/dvdk01/loadsim/internal/metrics"
	"github.com/dvdk01/loadsim/internal/scheduler"
	"github.com/dvdk01/loadsim/internal/schema"
	"github.com/dvdk01/loadsim/internal/selector"
	"github.com/dvdk01/loadsim/internal/stats"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

type processor struct {
	cfg         config.Config
	client      *http.Client
	application application.Application
	logger      log.FieldLogger
	endpoints   []schema.Endpoint
}

// New wires one simulation run. The endpoint catalog, including the create
// payload, is built here, once per run.
func New(cfg config.Config, client *http.Client, display application.Application, logger log.FieldLogger) *processor {
	if client == nil {
		client = &http.Client{
			Timeout: cfg.RequestTimeout,
			// 3xx answers are measured as they are, not followed
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &processor{
		cfg:         cfg,
		client:      client,
		application: display,
		logger:      logger,
		endpoints:   catalog.Default(time.Now(), cfg.UniquePayload),
	}
}

// Start runs every batch, renders the final report and returns it.
func (p *processor) Start(ctx context.Context) (schema.Report, error) {
	runID := uuid.NewString()
	logger := p.logger.WithField("run_id", runID)

	sel, err := selector.New(p.endpoints, selector.NewSource(p.cfg.Seed))
	if err != nil {
		return schema.Report{}, fmt.Errorf("build selector: %w", err)
	}

	aggregator := stats.New()
	registry := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(registry, aggregator)
	if err != nil {
		return schema.Report{}, fmt.Errorf("register metrics: %w", err)
	}

	if p.cfg.MetricsAddr != "" {
		metricsCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
		defer stop()
		go func() {
			if err := metrics.Serve(metricsCtx, p.cfg.MetricsAddr, registry); err != nil {
				logger.WithError(err).Warn("metrics listener stopped")
			}
		}()
	}

	p.application.PrintConfig(p.cfg, len(p.endpoints))

	exec := executor.New(p.client, p.cfg.Target, logger, p.cfg.Verbose)
	summary := scheduler.New(p.cfg, sel, exec, recorder, p.application).Run(ctx)

	report := aggregator.Report(summary.Duration, runID)
	report.Interrupted = summary.Interrupted
	p.application.Render(report)

	logger.WithFields(log.Fields{
		"total":       report.Total,
		"errors":      report.ErrorCount,
		"interrupted": report.Interrupted,
	}).Debug("simulation finished")

	return report, nil
}
