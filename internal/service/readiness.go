package service

import (
	"context"
	"fmt"
	"time"

	"github.com/stian-overasen/connectlog/internal/readiness"
	"github.com/stian-overasen/connectlog/internal/store"
)

// ReadinessService derives today's training readiness from the daily
// summary pipeline.
type ReadinessService struct {
	summaries *SummaryService
}

// NewReadinessService creates a readiness service on top of the summary
// service.
func NewReadinessService(summaries *SummaryService) *ReadinessService {
	return &ReadinessService{summaries: summaries}
}

// Today evaluates readiness from today's metrics. The optional energy
// score is the user's subjective 1..10 self-report.
func (s *ReadinessService) Today(ctx context.Context, energy *int) (*readiness.Result, error) {
	summary, err := s.summaries.Today(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting today's summary: %w", err)
	}

	return readiness.Evaluate(metricsFromSummary(summary), energy)
}

// metricsFromSummary maps a cached summary onto readiness inputs. Body
// battery "start" is the day's max observed level, "current" the last
// observed level.
func metricsFromSummary(s *store.DailySummary) readiness.DailyMetrics {
	m := readiness.DailyMetrics{
		HRV:              s.HRVOvernightAvg,
		BodyBatteryStart: s.BodyBatteryMax,
		SleepScore:       s.SleepScore,
		RestingHR:        s.RestingHR,
	}

	if t, err := time.Parse("2006-01-02", s.Date); err == nil {
		m.Date = t
	}

	if len(s.BodyBatteryValues) > 0 {
		current := s.BodyBatteryValues[len(s.BodyBatteryValues)-1]
		m.BodyBatteryCurrent = &current
	}

	return m
}
