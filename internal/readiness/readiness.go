// Package readiness turns a day's physiological metrics into a
// green/yellow/red training verdict. Thresholds are tuned for pacing with
// ME/CFS-style energy envelopes rather than performance training: the point
// is to catch days where exertion should be avoided.
package readiness

import (
	"errors"
	"fmt"
	"time"
)

// Status classifies a single metric or the overall day.
type Status string

const (
	StatusGreen   Status = "green"
	StatusYellow  Status = "yellow"
	StatusRed     Status = "red"
	StatusUnknown Status = "unknown"
)

// ErrInvalidEnergyScore is returned when a subjective energy score is
// outside the 1..10 scale.
var ErrInvalidEnergyScore = errors.New("energy score must be between 1 and 10")

// DailyMetrics holds one day's inputs. Any field the upstream source lacked
// is nil; absence propagates through evaluation as StatusUnknown and is
// never defaulted to a number.
type DailyMetrics struct {
	Date               time.Time
	HRV                *float64
	BodyBatteryStart   *int
	BodyBatteryCurrent *int
	SleepScore         *int
	RestingHR          *int
}

// Thresholds are the display strings for one metric's bands.
type Thresholds struct {
	Green  string `json:"green"`
	Yellow string `json:"yellow"`
	Red    string `json:"red"`
}

// MetricEvaluation is one metric's classified value.
type MetricEvaluation struct {
	Metric     string      `json:"metric"`
	Value      interface{} `json:"value"`
	Status     Status      `json:"status"`
	Thresholds *Thresholds `json:"thresholds,omitempty"`
}

// Result is the full readiness verdict for a day.
type Result struct {
	Date           string             `json:"date"`
	Metrics        []MetricEvaluation `json:"metrics"`
	Energy         *MetricEvaluation  `json:"energy,omitempty"`
	OverallStatus  Status             `json:"overall_status"`
	Recommendation string             `json:"recommendation"`
}

// metricRule classifies a value: unknown when nil, green when the green
// predicate holds, yellow when the yellow predicate holds, red otherwise.
type metricRule struct {
	name       string
	thresholds Thresholds
	green      func(float64) bool
	yellow     func(float64) bool
}

func (r metricRule) classify(value *float64) Status {
	switch {
	case value == nil:
		return StatusUnknown
	case r.green(*value):
		return StatusGreen
	case r.yellow(*value):
		return StatusYellow
	default:
		return StatusRed
	}
}

var (
	hrvRule = metricRule{
		name:       "hrv",
		thresholds: Thresholds{Green: ">62 ms", Yellow: "58-62 ms", Red: "<58 ms"},
		green:      func(v float64) bool { return v > 62 },
		yellow:     func(v float64) bool { return v >= 58 && v <= 62 },
	}
	bodyBatteryRule = metricRule{
		name:       "body_battery_start",
		thresholds: Thresholds{Green: ">75", Yellow: "65-75", Red: "<65"},
		green:      func(v float64) bool { return v > 75 },
		yellow:     func(v float64) bool { return v >= 65 && v <= 75 },
	}
	sleepScoreRule = metricRule{
		name:       "sleep_score",
		thresholds: Thresholds{Green: ">75", Yellow: "70-75", Red: "<70"},
		green:      func(v float64) bool { return v > 75 },
		yellow:     func(v float64) bool { return v >= 70 && v <= 75 },
	}
	restingHRRule = metricRule{
		name:       "resting_hr",
		thresholds: Thresholds{Green: "<48 bpm", Yellow: "48-50 bpm", Red: ">50 bpm"},
		green:      func(v float64) bool { return v < 48 },
		yellow:     func(v float64) bool { return v >= 48 && v <= 50 },
	}
)

// statusScore maps a scored status to its aggregation weight.
var statusScore = map[Status]float64{
	StatusGreen:  2,
	StatusYellow: 1,
	StatusRed:    0,
}

// Evaluate classifies each metric and aggregates the scored ones into an
// overall verdict. The optional subjective energy score is validated and
// reported but never folds into the overall status.
func Evaluate(m DailyMetrics, energy *int) (*Result, error) {
	if energy != nil && (*energy < 1 || *energy > 10) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidEnergyScore, *energy)
	}

	hrvStatus := hrvRule.classify(m.HRV)
	bbStatus := bodyBatteryRule.classify(intToFloat(m.BodyBatteryStart))
	sleepStatus := sleepScoreRule.classify(intToFloat(m.SleepScore))
	rhrStatus := restingHRRule.classify(intToFloat(m.RestingHR))

	metrics := []MetricEvaluation{
		{Metric: hrvRule.name, Value: floatValue(m.HRV), Status: hrvStatus, Thresholds: &hrvRule.thresholds},
		{Metric: bodyBatteryRule.name, Value: intValue(m.BodyBatteryStart), Status: bbStatus, Thresholds: &bodyBatteryRule.thresholds},
		{Metric: sleepScoreRule.name, Value: intValue(m.SleepScore), Status: sleepStatus, Thresholds: &sleepScoreRule.thresholds},
		{Metric: restingHRRule.name, Value: intValue(m.RestingHR), Status: rhrStatus, Thresholds: &restingHRRule.thresholds},
		// Current body battery is display-only and never scored; its status
		// is unknown regardless of whether the value is present.
		{Metric: "body_battery_current", Value: intValue(m.BodyBatteryCurrent), Status: StatusUnknown},
	}

	overall, recommendation := aggregate([]Status{hrvStatus, bbStatus, sleepStatus, rhrStatus})

	result := &Result{
		Date:           m.Date.Format("2006-01-02"),
		Metrics:        metrics,
		OverallStatus:  overall,
		Recommendation: recommendation,
	}

	if energy != nil {
		eval := classifyEnergy(*energy)
		result.Energy = &eval
	}

	return result, nil
}

// aggregate applies the decision rule over the scored statuses. Two reds
// force a rest day even when the remaining metrics are green.
func aggregate(statuses []Status) (Status, string) {
	var sum float64
	var scored, redCount int

	for _, s := range statuses {
		score, ok := statusScore[s]
		if !ok {
			continue
		}
		sum += score
		scored++
		if s == StatusRed {
			redCount++
		}
	}

	if scored == 0 {
		return StatusUnknown, "Insufficient data to determine readiness"
	}

	mean := sum / float64(scored)
	switch {
	case redCount >= 2 || mean < 1.0:
		return StatusRed, "Rest day recommended"
	case mean >= 1.5:
		return StatusGreen, "Training OK"
	default:
		return StatusYellow, "Light activity only"
	}
}

// energyBands maps each 1..10 self-reported score to a band.
var energyBands = [11]Status{
	1:  StatusRed,
	2:  StatusRed,
	3:  StatusRed,
	4:  StatusRed,
	5:  StatusYellow,
	6:  StatusYellow,
	7:  StatusGreen,
	8:  StatusGreen,
	9:  StatusGreen,
	10: StatusGreen,
}

func classifyEnergy(score int) MetricEvaluation {
	return MetricEvaluation{
		Metric: "subjective_energy",
		Value:  score,
		Status: energyBands[score],
		Thresholds: &Thresholds{
			Green:  "7-10",
			Yellow: "5-6",
			Red:    "1-4",
		},
	}
}

func intToFloat(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

// floatValue and intValue unwrap optional metrics for JSON output, keeping
// nil as JSON null rather than a zero.
func floatValue(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func intValue(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
