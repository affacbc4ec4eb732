// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics counts what a run did and writes the counts as a
// Prometheus textfile next to the corpus metadata.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdiddy/litcorpus/internal/pipeline"
)

// Skip reasons used as the "reason" label of SkippedRecords.
const (
	ReasonDownloaded   = "already_downloaded"
	ReasonNoDOI        = "no_doi"
	ReasonNoIdentifier = "no_identifier"
)

// Metrics holds the counters of one run in a private registry.
type Metrics struct {
	registry *prometheus.Registry

	RecordsFetched  prometheus.Gauge
	PDFsDownloaded  prometheus.Counter
	BytesDownloaded prometheus.Counter
	PDFURLNotFound  prometheus.Counter
	SkippedRecords  *prometheus.CounterVec
	StepDuration    *prometheus.GaugeVec
	StepsCompleted  prometheus.Counter
}

// New returns a Metrics with all collectors registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RecordsFetched: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "litcorpus_records",
			Help: "Number of records in the corpus metadata",
		}),
		PDFsDownloaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "litcorpus_pdfs_downloaded_total",
			Help: "PDFs downloaded and stored in this run",
		}),
		BytesDownloaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "litcorpus_pdf_bytes_total",
			Help: "Bytes of PDF data stored in this run",
		}),
		PDFURLNotFound: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "litcorpus_pdf_url_not_found_total",
			Help: "DOIs for which the mapper found no PDF URL",
		}),
		SkippedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "litcorpus_records_skipped_total",
			Help: "Records skipped by the downloader, by reason",
		}, []string{"reason"}),
		StepDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "litcorpus_step_duration_seconds",
			Help: "Wall time of each pipeline step run in this invocation",
		}, []string{"step"}),
		StepsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "litcorpus_steps_completed_total",
			Help: "Pipeline steps completed in this run",
		}),
	}
	m.registry.MustRegister(
		m.RecordsFetched,
		m.PDFsDownloaded,
		m.BytesDownloaded,
		m.PDFURLNotFound,
		m.SkippedRecords,
		m.StepDuration,
		m.StepsCompleted,
	)
	return m
}

// Registry exposes the collectors, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile writes the current values in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}

// Timed wraps step so that its duration and completion are recorded.
func (m *Metrics) Timed(step pipeline.Step) pipeline.Step {
	return &timedStep{Step: step, m: m}
}

type timedStep struct {
	pipeline.Step
	m *Metrics
}

func (t *timedStep) Run(ctx context.Context) error {
	start := time.Now()
	err := t.Step.Run(ctx)
	t.m.StepDuration.WithLabelValues(t.Name()).Set(time.Since(start).Seconds())
	if err == nil {
		t.m.StepsCompleted.Inc()
	}
	return err
}
