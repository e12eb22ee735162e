package zones

import (
	"fmt"
	"strings"
)

// Scheme identifies which heart-rate zone table is in use.
type Scheme int

const (
	// SchemeGarmin is the default 5-zone model used by Garmin devices.
	SchemeGarmin Scheme = iota
	// SchemeOlympiatoppen is the Norwegian Olympic federation intensity scale.
	SchemeOlympiatoppen
)

// ParseScheme parses a scheme name case-insensitively.
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(s) {
	case "garmin":
		return SchemeGarmin, nil
	case "olympiatoppen":
		return SchemeOlympiatoppen, nil
	}
	return 0, fmt.Errorf("unknown zone scheme %q", s)
}

// String returns the canonical lowercase scheme name.
func (s Scheme) String() string {
	if s == SchemeOlympiatoppen {
		return "olympiatoppen"
	}
	return "garmin"
}

// DisplayName returns the scheme name used in zone labels.
func (s Scheme) DisplayName() string {
	if s == SchemeOlympiatoppen {
		return "Olympiatoppen"
	}
	return "Garmin"
}

// MarshalText implements encoding.TextMarshaler so Scheme serializes as
// its canonical name in JSON.
func (s Scheme) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scheme) UnmarshalText(text []byte) error {
	parsed, err := ParseScheme(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ZoneRange is one row of a zone table: a label and its percent-of-max-HR
// bounds.
type ZoneRange struct {
	Label      string
	MinPercent int
	MaxPercent int
}

// RangeTable holds exactly five zone ranges ordered from zone 5 down to
// zone 1, so the range for zone z lives at index 5-z.
type RangeTable [5]ZoneRange

var garminTable = RangeTable{
	{Label: "Zone 5", MinPercent: 90, MaxPercent: 100},
	{Label: "Zone 4", MinPercent: 80, MaxPercent: 90},
	{Label: "Zone 3", MinPercent: 70, MaxPercent: 80},
	{Label: "Zone 2", MinPercent: 60, MaxPercent: 70},
	{Label: "Zone 1", MinPercent: 50, MaxPercent: 60},
}

var olympiatoppenTable = RangeTable{
	{Label: "I-5", MinPercent: 92, MaxPercent: 97},
	{Label: "I-4", MinPercent: 87, MaxPercent: 92},
	{Label: "I-3", MinPercent: 82, MaxPercent: 87},
	{Label: "I-2", MinPercent: 72, MaxPercent: 82},
	{Label: "I-1", MinPercent: 55, MaxPercent: 72},
}

// Table returns the fixed range table for a scheme. Anything that is not
// Olympiatoppen gets the Garmin table; Garmin is the system default.
func Table(scheme Scheme) RangeTable {
	if scheme == SchemeOlympiatoppen {
		return olympiatoppenTable
	}
	return garminTable
}

// Observation is the time spent in a single zone during one activity.
// Zones with no recorded time are simply absent.
type Observation struct {
	Zone        int     `json:"zone"`
	TimeSeconds float64 `json:"time_seconds"`
}

// LabeledZone pairs a scheme-qualified zone label with the observed time.
type LabeledZone struct {
	Label       string  `json:"label"`
	Zone        int     `json:"zone"`
	TimeSeconds float64 `json:"time_seconds"`
}

// Label maps observations onto scheme-qualified zone labels, preserving
// input order. A nil or empty input returns nil, which callers use to
// distinguish "no zone data" from "zero time in every zone". Zone numbers
// outside 1..5 are a caller bug and panic on the table lookup.
func Label(observations []Observation, scheme Scheme) []LabeledZone {
	if len(observations) == 0 {
		return nil
	}

	table := Table(scheme)
	name := scheme.DisplayName()

	labeled := make([]LabeledZone, len(observations))
	for i, obs := range observations {
		labeled[i] = LabeledZone{
			Label:       fmt.Sprintf("%s (%s)", table[5-obs.Zone].Label, name),
			Zone:        obs.Zone,
			TimeSeconds: obs.TimeSeconds,
		}
	}
	return labeled
}
