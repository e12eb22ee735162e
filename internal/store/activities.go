package store

import "time"

// UpsertActivity inserts or replaces a cached activity.
func (s *Store) UpsertActivity(a *Activity) error {
	_, err := s.db.Exec(`
		INSERT INTO activities (
			id, start_time_local, activity_type, duration_seconds, distance_meters,
			hr_zone_1, hr_zone_2, hr_zone_3, hr_zone_4, hr_zone_5,
			body_battery_impact, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			start_time_local = excluded.start_time_local,
			activity_type = excluded.activity_type,
			duration_seconds = excluded.duration_seconds,
			distance_meters = excluded.distance_meters,
			hr_zone_1 = excluded.hr_zone_1,
			hr_zone_2 = excluded.hr_zone_2,
			hr_zone_3 = excluded.hr_zone_3,
			hr_zone_4 = excluded.hr_zone_4,
			hr_zone_5 = excluded.hr_zone_5,
			body_battery_impact = excluded.body_battery_impact,
			fetched_at = excluded.fetched_at`,
		a.ID, a.StartTimeLocal, a.ActivityType, a.DurationSeconds, a.DistanceMeters,
		a.HRZoneSeconds[0], a.HRZoneSeconds[1], a.HRZoneSeconds[2], a.HRZoneSeconds[3], a.HRZoneSeconds[4],
		a.BodyBatteryImpact, a.FetchedAt.Format(time.RFC3339))
	return err
}

// ListActivities returns cached activities whose local start date falls
// within [startDate, endDate] inclusive, newest first.
func (s *Store) ListActivities(startDate, endDate string) ([]Activity, error) {
	rows, err := s.db.Query(`
		SELECT id, start_time_local, activity_type, duration_seconds, distance_meters,
			hr_zone_1, hr_zone_2, hr_zone_3, hr_zone_4, hr_zone_5,
			body_battery_impact, fetched_at
		FROM activities
		WHERE substr(start_time_local, 1, 10) >= ? AND substr(start_time_local, 1, 10) <= ?
		ORDER BY start_time_local DESC`, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		var a Activity
		var fetchedAt string
		err := rows.Scan(
			&a.ID, &a.StartTimeLocal, &a.ActivityType, &a.DurationSeconds, &a.DistanceMeters,
			&a.HRZoneSeconds[0], &a.HRZoneSeconds[1], &a.HRZoneSeconds[2], &a.HRZoneSeconds[3], &a.HRZoneSeconds[4],
			&a.BodyBatteryImpact, &fetchedAt,
		)
		if err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, fetchedAt); err == nil {
			a.FetchedAt = t
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// CountActivitiesByDate returns the number of cached activities per local
// calendar date within the range.
func (s *Store) CountActivitiesByDate(startDate, endDate string) (map[string]int, error) {
	rows, err := s.db.Query(`
		SELECT substr(start_time_local, 1, 10) AS day, COUNT(*)
		FROM activities
		WHERE substr(start_time_local, 1, 10) >= ? AND substr(start_time_local, 1, 10) <= ?
		GROUP BY day`, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var day string
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		counts[day] = count
	}
	return counts, rows.Err()
}
