package server

import (
	"context"
	"time"

	"github.com/robfig/cron"
	log "github.com/sirupsen/logrus"

	"github.com/stian-overasen/connectlog/internal/service"
)

// Refresher periodically re-fetches today's telemetry so readiness is
// served warm. Failures are logged and retried on the next tick.
type Refresher struct {
	summaries *service.SummaryService
	metrics   *Metrics
	cron      *cron.Cron
	spec      string
}

// NewRefresher creates a refresher with a cron spec like "@every 1h".
func NewRefresher(summaries *service.SummaryService, metrics *Metrics, spec string) (*Refresher, error) {
	r := &Refresher{
		summaries: summaries,
		metrics:   metrics,
		cron:      cron.New(),
		spec:      spec,
	}

	if err := r.cron.AddFunc(spec, r.refresh); err != nil {
		return nil, err
	}
	return r, nil
}

// Start begins the refresh schedule.
func (r *Refresher) Start() {
	log.Infof("cache refresher running (%s)", r.spec)
	r.cron.Start()
}

// Stop halts the refresh schedule.
func (r *Refresher) Stop() {
	r.cron.Stop()
}

func (r *Refresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := r.summaries.RefreshToday(ctx); err != nil {
		log.Warnf("background refresh failed: %v", err)
		return
	}
	if r.metrics != nil {
		r.metrics.CounterCacheRefresh.Inc()
	}
	log.Debug("background refresh of today's summary complete")
}
