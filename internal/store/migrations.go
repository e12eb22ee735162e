package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Authentication (singleton row)
		`CREATE TABLE IF NOT EXISTS auth (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Daily health summaries, one row per calendar date
		`CREATE TABLE IF NOT EXISTS daily_summaries (
			date TEXT PRIMARY KEY,
			steps INTEGER,
			hrv_overnight_avg REAL,
			resting_hr INTEGER,
			max_hr INTEGER,
			body_battery_max INTEGER,
			body_battery_min INTEGER,
			body_battery_values TEXT,
			sleep_duration_seconds INTEGER,
			sleep_score INTEGER,
			num_activities INTEGER NOT NULL DEFAULT 0,
			fetched_at TEXT NOT NULL
		)`,

		// Activities from the activity search endpoint
		`CREATE TABLE IF NOT EXISTS activities (
			id INTEGER PRIMARY KEY,
			start_time_local TEXT NOT NULL,
			activity_type TEXT,
			duration_seconds REAL,
			distance_meters REAL,
			hr_zone_1 REAL,
			hr_zone_2 REAL,
			hr_zone_3 REAL,
			hr_zone_4 REAL,
			hr_zone_5 REAL,
			body_battery_impact INTEGER,
			fetched_at TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activities_start_time ON activities(start_time_local)`,

		// Fetch bookkeeping (key/value)
		`CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
