package store

import "time"

// Auth represents OAuth tokens for Garmin Connect API access
type Auth struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// DailySummary is one cached day of health telemetry. Nullable fields stay
// nil when Garmin had no data for that day.
type DailySummary struct {
	Date                 string // YYYY-MM-DD
	Steps                *int
	HRVOvernightAvg      *float64
	RestingHR            *int
	MaxHR                *int
	BodyBatteryMax       *int
	BodyBatteryMin       *int
	BodyBatteryValues    []int
	SleepDurationSeconds *int
	SleepScore           *int
	NumActivities        int
	FetchedAt            time.Time
}

// Activity is one cached activity with its sparse per-zone times.
type Activity struct {
	ID                int64
	StartTimeLocal    string // "YYYY-MM-DD HH:MM:SS"
	ActivityType      *string
	DurationSeconds   *float64
	DistanceMeters    *float64
	HRZoneSeconds     [5]*float64 // index 0 is zone 1
	BodyBatteryImpact *int
	FetchedAt         time.Time
}

// Date returns the activity's local calendar date, or "" when the start
// time is missing.
func (a Activity) Date() string {
	if len(a.StartTimeLocal) < 10 {
		return ""
	}
	return a.StartTimeLocal[:10]
}
