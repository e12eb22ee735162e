package garmin

// DailyStats is the subset of the user summary endpoint we consume.
// Fields are pointers because Garmin omits anything the device didn't
// record that day.
type DailyStats struct {
	TotalSteps       *int `json:"totalSteps"`
	RestingHeartRate *int `json:"restingHeartRate"`
	MaxHeartRate     *int `json:"maxHeartRate"`
}

// HRVData is the overnight heart-rate-variability report.
type HRVData struct {
	HRVSummary *HRVSummary `json:"hrvSummary"`
}

// HRVSummary holds the aggregated overnight values.
type HRVSummary struct {
	LastNightAvg *float64 `json:"lastNightAvg"`
	WeeklyAvg    *float64 `json:"weeklyAvg"`
	Status       string   `json:"status"`
}

// BodyBatteryEntry is one reported segment of the day's body battery
// timeseries. The values array rows are heterogeneous lists whose last
// element is the battery level.
type BodyBatteryEntry struct {
	Date                   string          `json:"date"`
	Charged                *int            `json:"charged"`
	Drained                *int            `json:"drained"`
	BodyBatteryValuesArray [][]interface{} `json:"bodyBatteryValuesArray"`
}

// Levels extracts the battery level series from the values array, skipping
// rows whose level is missing or non-numeric.
func (e BodyBatteryEntry) Levels() []int {
	var levels []int
	for _, row := range e.BodyBatteryValuesArray {
		if len(row) == 0 {
			continue
		}
		if v, ok := row[len(row)-1].(float64); ok {
			levels = append(levels, int(v))
		}
	}
	return levels
}

// SleepData is the daily sleep endpoint response.
type SleepData struct {
	DailySleepDTO *DailySleepDTO `json:"dailySleepDTO"`
}

// DailySleepDTO holds the sleep summary for one night.
type DailySleepDTO struct {
	SleepTimeSeconds *int         `json:"sleepTimeSeconds"`
	SleepScores      *SleepScores `json:"sleepScores"`
}

// SleepScores wraps the nested overall sleep score.
type SleepScores struct {
	Overall *SleepScoreValue `json:"overall"`
}

// SleepScoreValue is the overall sleep score container.
type SleepScoreValue struct {
	Value *int `json:"value"`
}

// Activity is one entry from the activity search endpoint. Per-zone times
// arrive as five separate sparse fields.
type Activity struct {
	ActivityID            int64        `json:"activityId"`
	ActivityName          string       `json:"activityName"`
	StartTimeLocal        string       `json:"startTimeLocal"`
	ActivityType          ActivityType `json:"activityType"`
	Duration              *float64     `json:"duration"`
	Distance              *float64     `json:"distance"`
	HRTimeInZone1         *float64     `json:"hrTimeInZone_1"`
	HRTimeInZone2         *float64     `json:"hrTimeInZone_2"`
	HRTimeInZone3         *float64     `json:"hrTimeInZone_3"`
	HRTimeInZone4         *float64     `json:"hrTimeInZone_4"`
	HRTimeInZone5         *float64     `json:"hrTimeInZone_5"`
	DifferenceBodyBattery *int         `json:"differenceBodyBattery"`
}

// HRTimeInZone returns the time spent in zone z (1..5), or nil if the
// activity has no recorded time for that zone.
func (a Activity) HRTimeInZone(z int) *float64 {
	switch z {
	case 1:
		return a.HRTimeInZone1
	case 2:
		return a.HRTimeInZone2
	case 3:
		return a.HRTimeInZone3
	case 4:
		return a.HRTimeInZone4
	case 5:
		return a.HRTimeInZone5
	}
	return nil
}

// ActivityType holds the activity type key, e.g. "running" or "walking".
type ActivityType struct {
	TypeKey string `json:"typeKey"`
}

// UserProfile is the social profile, fetched once to learn the display
// name some wellness endpoints require in their path.
type UserProfile struct {
	DisplayName string `json:"displayName"`
	UserName    string `json:"userName"`
	FullName    string `json:"fullName"`
}
