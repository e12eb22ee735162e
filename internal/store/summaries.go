package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// UpsertDailySummary inserts or replaces the cached summary for a date.
func (s *Store) UpsertDailySummary(summary *DailySummary) error {
	var valuesJSON *string
	if summary.BodyBatteryValues != nil {
		data, err := json.Marshal(summary.BodyBatteryValues)
		if err != nil {
			return fmt.Errorf("encoding body battery values: %w", err)
		}
		str := string(data)
		valuesJSON = &str
	}

	_, err := s.db.Exec(`
		INSERT INTO daily_summaries (
			date, steps, hrv_overnight_avg, resting_hr, max_hr,
			body_battery_max, body_battery_min, body_battery_values,
			sleep_duration_seconds, sleep_score, num_activities, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			steps = excluded.steps,
			hrv_overnight_avg = excluded.hrv_overnight_avg,
			resting_hr = excluded.resting_hr,
			max_hr = excluded.max_hr,
			body_battery_max = excluded.body_battery_max,
			body_battery_min = excluded.body_battery_min,
			body_battery_values = excluded.body_battery_values,
			sleep_duration_seconds = excluded.sleep_duration_seconds,
			sleep_score = excluded.sleep_score,
			num_activities = excluded.num_activities,
			fetched_at = excluded.fetched_at`,
		summary.Date, summary.Steps, summary.HRVOvernightAvg, summary.RestingHR, summary.MaxHR,
		summary.BodyBatteryMax, summary.BodyBatteryMin, valuesJSON,
		summary.SleepDurationSeconds, summary.SleepScore, summary.NumActivities,
		summary.FetchedAt.Format(time.RFC3339))
	return err
}

// GetDailySummary returns the cached summary for a date, or ErrNoSummary.
func (s *Store) GetDailySummary(date string) (*DailySummary, error) {
	row := s.db.QueryRow(`
		SELECT date, steps, hrv_overnight_avg, resting_hr, max_hr,
			body_battery_max, body_battery_min, body_battery_values,
			sleep_duration_seconds, sleep_score, num_activities, fetched_at
		FROM daily_summaries WHERE date = ?`, date)

	summary, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSummary
	}
	return summary, err
}

// ListDailySummaries returns cached summaries within [startDate, endDate]
// inclusive, newest first.
func (s *Store) ListDailySummaries(startDate, endDate string) ([]DailySummary, error) {
	rows, err := s.db.Query(`
		SELECT date, steps, hrv_overnight_avg, resting_hr, max_hr,
			body_battery_max, body_battery_min, body_battery_values,
			sleep_duration_seconds, sleep_score, num_activities, fetched_at
		FROM daily_summaries
		WHERE date >= ? AND date <= ?
		ORDER BY date DESC`, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []DailySummary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSummary(row rowScanner) (*DailySummary, error) {
	var summary DailySummary
	var valuesJSON *string
	var fetchedAt string

	err := row.Scan(
		&summary.Date, &summary.Steps, &summary.HRVOvernightAvg, &summary.RestingHR, &summary.MaxHR,
		&summary.BodyBatteryMax, &summary.BodyBatteryMin, &valuesJSON,
		&summary.SleepDurationSeconds, &summary.SleepScore, &summary.NumActivities, &fetchedAt,
	)
	if err != nil {
		return nil, err
	}

	if valuesJSON != nil {
		if err := json.Unmarshal([]byte(*valuesJSON), &summary.BodyBatteryValues); err != nil {
			return nil, fmt.Errorf("decoding body battery values for %s: %w", summary.Date, err)
		}
	}
	if t, err := time.Parse(time.RFC3339, fetchedAt); err == nil {
		summary.FetchedAt = t
	}

	return &summary, nil
}
