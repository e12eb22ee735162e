package readiness

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func testDate() time.Time {
	return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
}

func metricStatus(t *testing.T, result *Result, name string) Status {
	t.Helper()
	for _, m := range result.Metrics {
		if m.Metric == name {
			return m.Status
		}
	}
	t.Fatalf("metric %q not found in result", name)
	return ""
}

func TestEvaluateAllGreen(t *testing.T) {
	m := DailyMetrics{
		Date:               testDate(),
		HRV:                floatPtr(70),
		BodyBatteryStart:   intPtr(80),
		BodyBatteryCurrent: intPtr(40),
		SleepScore:         intPtr(80),
		RestingHR:          intPtr(45),
	}

	result, err := Evaluate(m, nil)
	if err != nil {
		t.Fatalf("Evaluate() unexpected error: %v", err)
	}

	for _, name := range []string{"hrv", "body_battery_start", "sleep_score", "resting_hr"} {
		if got := metricStatus(t, result, name); got != StatusGreen {
			t.Errorf("%s status = %v, want green", name, got)
		}
	}
	if result.OverallStatus != StatusGreen {
		t.Errorf("OverallStatus = %v, want green", result.OverallStatus)
	}
	if result.Recommendation != "Training OK" {
		t.Errorf("Recommendation = %q, want %q", result.Recommendation, "Training OK")
	}
}

func TestEvaluateAllMissing(t *testing.T) {
	result, err := Evaluate(DailyMetrics{Date: testDate()}, nil)
	if err != nil {
		t.Fatalf("Evaluate() unexpected error: %v", err)
	}

	if result.OverallStatus != StatusUnknown {
		t.Errorf("OverallStatus = %v, want unknown", result.OverallStatus)
	}
	if result.Recommendation != "Insufficient data to determine readiness" {
		t.Errorf("Recommendation = %q", result.Recommendation)
	}
}

func TestEvaluateTwoRedsDominate(t *testing.T) {
	// Two reds and two greens give mean 1.0, which alone would be yellow;
	// the red count forces red.
	m := DailyMetrics{
		Date:             testDate(),
		HRV:              floatPtr(50), // red
		BodyBatteryStart: intPtr(40),   // red
		SleepScore:       intPtr(90),   // green
		RestingHR:        intPtr(42),   // green
	}

	result, err := Evaluate(m, nil)
	if err != nil {
		t.Fatalf("Evaluate() unexpected error: %v", err)
	}

	if result.OverallStatus != StatusRed {
		t.Errorf("OverallStatus = %v, want red", result.OverallStatus)
	}
	if result.Recommendation != "Rest day recommended" {
		t.Errorf("Recommendation = %q, want %q", result.Recommendation, "Rest day recommended")
	}
}

func TestEvaluateLowMeanSingleRed(t *testing.T) {
	// One red plus two yellows with one metric missing: mean (0+1+1)/3 < 1.0.
	m := DailyMetrics{
		Date:             testDate(),
		HRV:              floatPtr(50), // red
		BodyBatteryStart: intPtr(70),   // yellow
		SleepScore:       intPtr(72),   // yellow
	}

	result, err := Evaluate(m, nil)
	if err != nil {
		t.Fatalf("Evaluate() unexpected error: %v", err)
	}

	if result.OverallStatus != StatusRed {
		t.Errorf("OverallStatus = %v, want red", result.OverallStatus)
	}
}

func TestEvaluateYellow(t *testing.T) {
	// Two yellows and a green with one metric missing: mean 4/3.
	m := DailyMetrics{
		Date:             testDate(),
		HRV:              floatPtr(60), // yellow
		BodyBatteryStart: intPtr(70),   // yellow
		SleepScore:       intPtr(80),   // green
	}

	result, err := Evaluate(m, nil)
	if err != nil {
		t.Fatalf("Evaluate() unexpected error: %v", err)
	}

	if result.OverallStatus != StatusYellow {
		t.Errorf("OverallStatus = %v, want yellow", result.OverallStatus)
	}
	if result.Recommendation != "Light activity only" {
		t.Errorf("Recommendation = %q, want %q", result.Recommendation, "Light activity only")
	}
}

func TestEvaluateBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		m      DailyMetrics
		metric string
		want   Status
	}{
		{"hrv 62 is yellow", DailyMetrics{HRV: floatPtr(62)}, "hrv", StatusYellow},
		{"hrv 58 is yellow", DailyMetrics{HRV: floatPtr(58)}, "hrv", StatusYellow},
		{"hrv 57.9 is red", DailyMetrics{HRV: floatPtr(57.9)}, "hrv", StatusRed},
		{"body battery 76 is green", DailyMetrics{BodyBatteryStart: intPtr(76)}, "body_battery_start", StatusGreen},
		{"body battery 65 is yellow", DailyMetrics{BodyBatteryStart: intPtr(65)}, "body_battery_start", StatusYellow},
		{"body battery 64 is red", DailyMetrics{BodyBatteryStart: intPtr(64)}, "body_battery_start", StatusRed},
		{"sleep 75 is yellow", DailyMetrics{SleepScore: intPtr(75)}, "sleep_score", StatusYellow},
		{"sleep 69 is red", DailyMetrics{SleepScore: intPtr(69)}, "sleep_score", StatusRed},
		{"resting hr 47 is green", DailyMetrics{RestingHR: intPtr(47)}, "resting_hr", StatusGreen},
		{"resting hr 50 is yellow", DailyMetrics{RestingHR: intPtr(50)}, "resting_hr", StatusYellow},
		{"resting hr 51 is red", DailyMetrics{RestingHR: intPtr(51)}, "resting_hr", StatusRed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.m.Date = testDate()
			result, err := Evaluate(tt.m, nil)
			if err != nil {
				t.Fatalf("Evaluate() unexpected error: %v", err)
			}
			if got := metricStatus(t, result, tt.metric); got != tt.want {
				t.Errorf("%s status = %v, want %v", tt.metric, got, tt.want)
			}
		})
	}
}

func TestEvaluateCurrentBatteryNeverScored(t *testing.T) {
	// Present current battery stays unknown and contributes nothing: all
	// scored metrics missing means overall unknown regardless.
	m := DailyMetrics{
		Date:               testDate(),
		BodyBatteryCurrent: intPtr(95),
	}

	result, err := Evaluate(m, nil)
	if err != nil {
		t.Fatalf("Evaluate() unexpected error: %v", err)
	}

	if got := metricStatus(t, result, "body_battery_current"); got != StatusUnknown {
		t.Errorf("body_battery_current status = %v, want unknown", got)
	}
	if result.OverallStatus != StatusUnknown {
		t.Errorf("OverallStatus = %v, want unknown", result.OverallStatus)
	}
}

func TestEvaluateEnergyScore(t *testing.T) {
	tests := []struct {
		score     int
		want      Status
		expectErr bool
	}{
		{1, StatusRed, false},
		{4, StatusRed, false},
		{5, StatusYellow, false},
		{6, StatusYellow, false},
		{7, StatusGreen, false},
		{10, StatusGreen, false},
		{0, "", true},
		{11, "", true},
		{-3, "", true},
	}

	for _, tt := range tests {
		result, err := Evaluate(DailyMetrics{Date: testDate()}, intPtr(tt.score))
		if tt.expectErr {
			if !errors.Is(err, ErrInvalidEnergyScore) {
				t.Errorf("Evaluate(energy=%d) error = %v, want ErrInvalidEnergyScore", tt.score, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Evaluate(energy=%d) unexpected error: %v", tt.score, err)
			continue
		}
		if result.Energy == nil {
			t.Errorf("Evaluate(energy=%d) Energy is nil", tt.score)
			continue
		}
		if result.Energy.Status != tt.want {
			t.Errorf("Evaluate(energy=%d) status = %v, want %v", tt.score, result.Energy.Status, tt.want)
		}
		// Energy never folds into the overall status.
		if result.OverallStatus != StatusUnknown {
			t.Errorf("Evaluate(energy=%d) OverallStatus = %v, want unknown", tt.score, result.OverallStatus)
		}
	}
}

func TestEvaluateNoEnergyOmitsEnergy(t *testing.T) {
	result, err := Evaluate(DailyMetrics{Date: testDate()}, nil)
	if err != nil {
		t.Fatalf("Evaluate() unexpected error: %v", err)
	}
	if result.Energy != nil {
		t.Errorf("Energy = %+v, want nil", result.Energy)
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	m := DailyMetrics{
		Date:             testDate(),
		HRV:              floatPtr(61),
		BodyBatteryStart: intPtr(77),
		SleepScore:       intPtr(71),
		RestingHR:        intPtr(49),
	}

	first, err := Evaluate(m, intPtr(6))
	if err != nil {
		t.Fatalf("Evaluate() unexpected error: %v", err)
	}
	second, err := Evaluate(m, intPtr(6))
	if err != nil {
		t.Fatalf("Evaluate() unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated Evaluate calls differ:\n%+v\n%+v", first, second)
	}
}
