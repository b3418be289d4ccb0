package sinks

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/econlabs/nber-paper-crawler/internal/progress"
)

// PrometheusSink exports scan progress metrics. It owns all collectors for
// scans started/completed and per-paper outcome counters.
type PrometheusSink struct {
	scansStarted   prometheus.Counter
	scansCompleted *prometheus.CounterVec
	papersChecked  prometheus.Counter
	papersAccepted prometheus.Counter
	missOutcomes   *prometheus.CounterVec
	extractSeconds prometheus.Histogram
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		scansStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nberscan_scans_started_total",
			Help: "Total scans that have started.",
		}),
		scansCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nberscan_scans_completed_total",
			Help: "Total scans completed partitioned by result.",
		}, []string{"result"}),
		papersChecked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nberscan_papers_checked_total",
			Help: "Paper numbers examined.",
		}),
		papersAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nberscan_papers_accepted_total",
			Help: "Papers accepted into the result set.",
		}),
		missOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nberscan_paper_misses_total",
			Help: "Extraction misses partitioned by outcome.",
		}, []string{"outcome"}),
		extractSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nberscan_extract_duration_seconds",
			Help:    "Extraction latency per examined paper.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
	collectors := []prometheus.Collector{
		s.scansStarted, s.scansCompleted, s.papersChecked,
		s.papersAccepted, s.missOutcomes, s.extractSeconds,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the collectors for each event in the batch.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		switch evt.Stage {
		case progress.StageScanStart:
			s.scansStarted.Inc()
		case progress.StagePaperAccepted:
			s.papersChecked.Inc()
			s.papersAccepted.Inc()
			if evt.Dur > 0 {
				s.extractSeconds.Observe(evt.Dur.Seconds())
			}
		case progress.StagePaperMiss:
			s.papersChecked.Inc()
			s.missOutcomes.WithLabelValues(evt.Outcome).Inc()
			if evt.Dur > 0 {
				s.extractSeconds.Observe(evt.Dur.Seconds())
			}
		case progress.StageScanDone:
			s.scansCompleted.WithLabelValues(evt.Note).Inc()
		case progress.StageScanError:
			s.scansCompleted.WithLabelValues("error").Inc()
		}
	}
	return nil
}

// Close implements the Sink interface; collectors stay registered.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}
