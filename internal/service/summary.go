// Package service orchestrates telemetry retrieval: it pulls from the
// Garmin client, caches in the store, and shapes the output records the
// API and dashboard consume.
package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/stian-overasen/connectlog/internal/garmin"
	"github.com/stian-overasen/connectlog/internal/store"
)

// TelemetryClient is the Garmin client surface the services consume.
type TelemetryClient interface {
	GetDailyStats(ctx context.Context, date string) (*garmin.DailyStats, error)
	GetHRV(ctx context.Context, date string) (*garmin.HRVData, error)
	GetBodyBattery(ctx context.Context, date string) ([]garmin.BodyBatteryEntry, error)
	GetSleep(ctx context.Context, date string) (*garmin.SleepData, error)
	GetActivitiesByDate(ctx context.Context, startDate, endDate string) ([]garmin.Activity, error)
}

// Summary is one day's health summary as served by the API.
type Summary struct {
	Date              string   `json:"date"`
	Steps             *int     `json:"steps"`
	HRVOvernightAvg   *float64 `json:"hrv_overnight_avg"`
	RestingHR         *int     `json:"resting_hr"`
	MaxHR             *int     `json:"max_hr"`
	BodyBatteryMax    *int     `json:"body_battery_max"`
	BodyBatteryMin    *int     `json:"body_battery_min"`
	BodyBatteryValues []int    `json:"body_battery_values"`
	SleepDuration     *string  `json:"sleep_duration"`
	SleepScore        *int     `json:"sleep_score"`
	NumActivities     int      `json:"num_activities"`
}

// SummaryService assembles daily health summaries, cache-first.
type SummaryService struct {
	client TelemetryClient
	store  *store.Store
	maxAge time.Duration
	now    func() time.Time
}

// NewSummaryService creates a summary service. maxAge bounds how stale a
// cached period may be before it is re-fetched.
func NewSummaryService(client TelemetryClient, st *store.Store, maxAge time.Duration) *SummaryService {
	return &SummaryService{
		client: client,
		store:  st,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Summaries returns daily summaries for the last months*30 days including
// today, newest first. A fresh cached period is served as-is; the core
// output is identical either way.
func (s *SummaryService) Summaries(ctx context.Context, months int) ([]Summary, error) {
	startDate, endDate := s.periodRange(months)

	stateKey := fmt.Sprintf("summary_fetched_at:%d", months)
	if s.cacheFresh(stateKey) {
		cached, err := s.store.ListDailySummaries(startDate, endDate)
		if err != nil {
			return nil, fmt.Errorf("reading cached summaries: %w", err)
		}
		log.Debugf("serving %d summaries for %d months from cache", len(cached), months)
		return formatSummaries(cached), nil
	}

	log.Infof("fetching summaries from %s to %s", startDate, endDate)

	// Fetch activities once for the whole period to count per date.
	activities, err := s.client.GetActivitiesByDate(ctx, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("fetching activities: %w", err)
	}
	counts := countActivitiesByDate(activities)

	var summaries []store.DailySummary
	for _, date := range datesInRange(startDate, endDate) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		summary := s.fetchDay(ctx, date)
		summary.NumActivities = counts[date]

		if err := s.store.UpsertDailySummary(summary); err != nil {
			return nil, fmt.Errorf("caching summary for %s: %w", date, err)
		}
		summaries = append(summaries, *summary)
	}

	if err := s.store.SetSyncState(stateKey, s.now().Format(time.RFC3339)); err != nil {
		log.Warnf("failed to record fetch time: %v", err)
	}

	return formatSummaries(summaries), nil
}

// Today returns today's summary, from cache when fresh enough, fetching
// otherwise.
func (s *SummaryService) Today(ctx context.Context) (*store.DailySummary, error) {
	date := s.now().Format(garmin.DateLayout)

	cached, err := s.store.GetDailySummary(date)
	if err == nil && s.now().Sub(cached.FetchedAt) < s.maxAge {
		return cached, nil
	}

	return s.RefreshToday(ctx)
}

// RefreshToday fetches today's telemetry unconditionally and updates the
// cache. Used by the background refresher.
func (s *SummaryService) RefreshToday(ctx context.Context) (*store.DailySummary, error) {
	date := s.now().Format(garmin.DateLayout)
	summary := s.fetchDay(ctx, date)

	if activities, err := s.client.GetActivitiesByDate(ctx, date, date); err != nil {
		log.Warnf("failed to count today's activities: %v", err)
	} else {
		summary.NumActivities = countActivitiesByDate(activities)[date]
	}

	if err := s.store.UpsertDailySummary(summary); err != nil {
		return nil, fmt.Errorf("caching summary for %s: %w", date, err)
	}
	return summary, nil
}

// fetchDay pulls one day's telemetry. Each source is fetched independently
// and failures degrade to nil fields rather than failing the day: the
// upstream routinely lacks data for some days.
func (s *SummaryService) fetchDay(ctx context.Context, date string) *store.DailySummary {
	summary := &store.DailySummary{
		Date:      date,
		FetchedAt: s.now(),
	}

	if stats, err := s.client.GetDailyStats(ctx, date); err != nil {
		log.Warnf("failed to get stats for %s: %v", date, err)
	} else if stats != nil {
		summary.Steps = stats.TotalSteps
		summary.RestingHR = stats.RestingHeartRate
		summary.MaxHR = stats.MaxHeartRate
	}

	if hrv, err := s.client.GetHRV(ctx, date); err != nil {
		log.Warnf("failed to get HRV for %s: %v", date, err)
	} else if hrv != nil && hrv.HRVSummary != nil {
		summary.HRVOvernightAvg = hrv.HRVSummary.LastNightAvg
	}

	if entries, err := s.client.GetBodyBattery(ctx, date); err != nil {
		log.Warnf("failed to get body battery for %s: %v", date, err)
	} else {
		// Aggregate across every entry the API returns for the day, not
		// just the last one.
		var values []int
		for _, entry := range entries {
			values = append(values, entry.Levels()...)
		}
		if len(values) > 0 {
			max, min := values[0], values[0]
			for _, v := range values[1:] {
				if v > max {
					max = v
				}
				if v < min {
					min = v
				}
			}
			summary.BodyBatteryMax = &max
			summary.BodyBatteryMin = &min
			summary.BodyBatteryValues = values
		}
	}

	if sleep, err := s.client.GetSleep(ctx, date); err != nil {
		log.Warnf("failed to get sleep for %s: %v", date, err)
	} else if sleep != nil && sleep.DailySleepDTO != nil {
		summary.SleepDurationSeconds = sleep.DailySleepDTO.SleepTimeSeconds
		if scores := sleep.DailySleepDTO.SleepScores; scores != nil && scores.Overall != nil {
			summary.SleepScore = scores.Overall.Value
		}
	}

	return summary
}

// periodRange computes the months*30-day range ending today.
func (s *SummaryService) periodRange(months int) (startDate, endDate string) {
	end := s.now()
	start := end.AddDate(0, 0, -months*30)
	return start.Format(garmin.DateLayout), end.Format(garmin.DateLayout)
}

func (s *SummaryService) cacheFresh(stateKey string) bool {
	value, err := s.store.GetSyncState(stateKey)
	if err != nil || value == "" {
		return false
	}
	fetchedAt, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return false
	}
	return s.now().Sub(fetchedAt) < s.maxAge
}

// datesInRange lists dates from endDate down to startDate inclusive,
// newest first.
func datesInRange(startDate, endDate string) []string {
	start, err := time.Parse(garmin.DateLayout, startDate)
	if err != nil {
		return nil
	}
	end, err := time.Parse(garmin.DateLayout, endDate)
	if err != nil {
		return nil
	}

	var dates []string
	for d := end; !d.Before(start); d = d.AddDate(0, 0, -1) {
		dates = append(dates, d.Format(garmin.DateLayout))
	}
	return dates
}

// countActivitiesByDate counts activities per local calendar date.
func countActivitiesByDate(activities []garmin.Activity) map[string]int {
	counts := make(map[string]int)
	for _, a := range activities {
		if len(a.StartTimeLocal) < 10 {
			continue
		}
		counts[a.StartTimeLocal[:10]]++
	}
	return counts
}

func formatSummaries(summaries []store.DailySummary) []Summary {
	out := make([]Summary, len(summaries))
	for i, s := range summaries {
		out[i] = Summary{
			Date:              s.Date,
			Steps:             s.Steps,
			HRVOvernightAvg:   s.HRVOvernightAvg,
			RestingHR:         s.RestingHR,
			MaxHR:             s.MaxHR,
			BodyBatteryMax:    s.BodyBatteryMax,
			BodyBatteryMin:    s.BodyBatteryMin,
			BodyBatteryValues: s.BodyBatteryValues,
			SleepDuration:     FormatSleepDuration(s.SleepDurationSeconds),
			SleepScore:        s.SleepScore,
			NumActivities:     s.NumActivities,
		}
	}
	return out
}
