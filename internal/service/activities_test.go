package service

import (
	"context"
	"testing"
	"time"

	"github.com/stian-overasen/connectlog/internal/garmin"
	"github.com/stian-overasen/connectlog/internal/profile"
	"github.com/stian-overasen/connectlog/internal/store"
	"github.com/stian-overasen/connectlog/internal/zones"
)

func strPtr(s string) *string { return &s }

func mustProfiles(t *testing.T, raw []profile.RawOverride) *profile.Set {
	t.Helper()
	set, err := profile.Load(raw)
	if err != nil {
		t.Fatalf("loading overrides: %v", err)
	}
	return set
}

func newTestActivityService(t *testing.T, client *fakeClient, profiles *profile.Set) *ActivityService {
	t.Helper()
	st := store.NewTestStore(t)
	svc := NewActivityService(client, st, profiles, 6*time.Hour)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestActivitiesFetchThenCache(t *testing.T) {
	client := newFakeClient()
	client.activities = []garmin.Activity{
		{
			ActivityID:     10,
			StartTimeLocal: "2024-06-15 07:30:00",
			ActivityType:   garmin.ActivityType{TypeKey: "running"},
			Duration:       floatPtr(3723.4),
			Distance:       floatPtr(10500),
			HRTimeInZone2:  floatPtr(1200.567),
			HRTimeInZone4:  floatPtr(300.0),
		},
	}

	svc := newTestActivityService(t, client, &profile.Set{})

	records, err := svc.Activities(context.Background(), 1)
	if err != nil {
		t.Fatalf("Activities() error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}

	r := records[0]
	if r.Datetime != "2024-06-15 07:30:00" {
		t.Errorf("Datetime = %q", r.Datetime)
	}
	if r.ActivityType == nil || *r.ActivityType != "running" {
		t.Errorf("ActivityType = %v, want running", r.ActivityType)
	}
	if r.Duration == nil || *r.Duration != "1h 02m 03s" {
		t.Errorf("Duration = %v, want 1h 02m 03s", r.Duration)
	}
	if r.Distance == nil || *r.Distance != "10.50km" {
		t.Errorf("Distance = %v, want 10.50km", r.Distance)
	}

	// Only recorded zones appear, highest first, with the default labels.
	if len(r.HRZones) != 2 {
		t.Fatalf("HRZones = %+v, want 2 entries", r.HRZones)
	}
	if r.HRZones[0].Zone != 4 || r.HRZones[0].Label != "Zone 4 (Garmin)" {
		t.Errorf("HRZones[0] = %+v, want zone 4 Zone 4 (Garmin)", r.HRZones[0])
	}
	if r.HRZones[1].Zone != 2 || r.HRZones[1].TimeSeconds != 1200.57 {
		t.Errorf("HRZones[1] = %+v, want zone 2 rounded to 1200.57", r.HRZones[1])
	}
	if r.ZoneScheme != zones.SchemeGarmin {
		t.Errorf("ZoneScheme = %v, want garmin", r.ZoneScheme)
	}
	if r.Device != nil || r.MaxHR != nil {
		t.Errorf("default context should carry no device or max HR, got %v / %v", r.Device, r.MaxHR)
	}

	fetchCalls := client.calls["activities"]
	if _, err := svc.Activities(context.Background(), 1); err != nil {
		t.Fatalf("Activities() second call error: %v", err)
	}
	if client.calls["activities"] != fetchCalls {
		t.Errorf("activities calls grew from %d to %d, want cache hit", fetchCalls, client.calls["activities"])
	}
}

func TestActivitiesLabeledUnderResolvedProfile(t *testing.T) {
	profiles := mustProfiles(t, []profile.RawOverride{
		{
			StartDate:  strPtr("2024-06-01"),
			EndDate:    strPtr("2024-06-30"),
			Device:     strPtr("Forerunner 965"),
			MaxHR:      intPtr(188),
			ZoneScheme: "olympiatoppen",
		},
	})

	client := newFakeClient()
	client.activities = []garmin.Activity{
		{
			ActivityID:     20,
			StartTimeLocal: "2024-06-15 07:30:00",
			HRTimeInZone5:  floatPtr(90),
		},
		{
			ActivityID:     21,
			StartTimeLocal: "2024-05-20 07:30:00",
			HRTimeInZone5:  floatPtr(45),
		},
	}

	svc := newTestActivityService(t, client, profiles)

	records, err := svc.Activities(context.Background(), 2)
	if err != nil {
		t.Fatalf("Activities() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}

	inside := records[0]
	if inside.ZoneScheme != zones.SchemeOlympiatoppen {
		t.Errorf("inside override: ZoneScheme = %v, want olympiatoppen", inside.ZoneScheme)
	}
	if inside.Device == nil || *inside.Device != "Forerunner 965" {
		t.Errorf("inside override: Device = %v", inside.Device)
	}
	if inside.MaxHR == nil || *inside.MaxHR != 188 {
		t.Errorf("inside override: MaxHR = %v", inside.MaxHR)
	}
	if len(inside.HRZones) != 1 || inside.HRZones[0].Label != "I-5 (Olympiatoppen)" {
		t.Errorf("inside override: HRZones = %+v, want I-5 (Olympiatoppen)", inside.HRZones)
	}

	outside := records[1]
	if outside.ZoneScheme != zones.SchemeGarmin {
		t.Errorf("outside override: ZoneScheme = %v, want garmin", outside.ZoneScheme)
	}
	if len(outside.HRZones) != 1 || outside.HRZones[0].Label != "Zone 5 (Garmin)" {
		t.Errorf("outside override: HRZones = %+v, want Zone 5 (Garmin)", outside.HRZones)
	}
	if outside.Device != nil {
		t.Errorf("outside override: Device = %v, want nil", outside.Device)
	}
}

func TestConvertActivity(t *testing.T) {
	a := garmin.Activity{
		ActivityID:            42,
		StartTimeLocal:        "2024-06-15 07:30:00",
		ActivityType:          garmin.ActivityType{TypeKey: "walking"},
		Duration:              floatPtr(1800),
		HRTimeInZone1:         floatPtr(123.456789),
		DifferenceBodyBattery: intPtr(-12),
	}

	sa := convertActivity(a, fixedNow)

	if sa.ID != 42 {
		t.Errorf("ID = %d, want 42", sa.ID)
	}
	if sa.ActivityType == nil || *sa.ActivityType != "walking" {
		t.Errorf("ActivityType = %v, want walking", sa.ActivityType)
	}
	if sa.HRZoneSeconds[0] == nil || *sa.HRZoneSeconds[0] != 123.46 {
		t.Errorf("HRZoneSeconds[0] = %v, want 123.46", sa.HRZoneSeconds[0])
	}
	for z := 2; z <= 5; z++ {
		if sa.HRZoneSeconds[z-1] != nil {
			t.Errorf("HRZoneSeconds[%d] = %v, want nil", z-1, *sa.HRZoneSeconds[z-1])
		}
	}
	if sa.BodyBatteryImpact == nil || *sa.BodyBatteryImpact != -12 {
		t.Errorf("BodyBatteryImpact = %v, want -12", sa.BodyBatteryImpact)
	}

	// An empty type key stays nil rather than becoming "".
	sa = convertActivity(garmin.Activity{ActivityID: 43}, fixedNow)
	if sa.ActivityType != nil {
		t.Errorf("ActivityType = %q, want nil for empty type key", *sa.ActivityType)
	}
}

func TestZoneObservationsOrder(t *testing.T) {
	a := store.Activity{}
	a.HRZoneSeconds[0] = floatPtr(10) // zone 1
	a.HRZoneSeconds[2] = floatPtr(30) // zone 3
	a.HRZoneSeconds[4] = floatPtr(50) // zone 5

	obs := zoneObservations(a)
	wantZones := []int{5, 3, 1}
	if len(obs) != len(wantZones) {
		t.Fatalf("zoneObservations() = %+v, want zones %v", obs, wantZones)
	}
	for i, z := range wantZones {
		if obs[i].Zone != z {
			t.Errorf("obs[%d].Zone = %d, want %d", i, obs[i].Zone, z)
		}
	}
}

func TestReadinessTodayFromSummary(t *testing.T) {
	client := newFakeClient()
	summaries, st := newTestSummaryService(t, client)

	seed := &store.DailySummary{
		Date:              "2024-06-15",
		HRVOvernightAvg:   floatPtr(70),
		RestingHR:         intPtr(45),
		BodyBatteryMax:    intPtr(90),
		BodyBatteryMin:    intPtr(30),
		BodyBatteryValues: []int{90, 60, 37},
		SleepScore:        intPtr(80),
		FetchedAt:         fixedNow.Add(-time.Minute),
	}
	if err := st.UpsertDailySummary(seed); err != nil {
		t.Fatalf("seeding summary: %v", err)
	}

	svc := NewReadinessService(summaries)

	result, err := svc.Today(context.Background(), intPtr(8))
	if err != nil {
		t.Fatalf("Today() error: %v", err)
	}

	if result.Date != "2024-06-15" {
		t.Errorf("Date = %q, want 2024-06-15", result.Date)
	}
	if result.OverallStatus != "green" {
		t.Errorf("OverallStatus = %v, want green", result.OverallStatus)
	}
	if result.Energy == nil || result.Energy.Status != "green" {
		t.Errorf("Energy = %+v, want green band", result.Energy)
	}

	// Body battery "start" is the day's max, "current" the last observed
	// level, and current is reported but never scored.
	for _, m := range result.Metrics {
		switch m.Metric {
		case "body_battery_start":
			if m.Value != 90 {
				t.Errorf("body_battery_start value = %v, want 90", m.Value)
			}
		case "body_battery_current":
			if m.Value != 37 {
				t.Errorf("body_battery_current value = %v, want 37", m.Value)
			}
			if m.Status != "unknown" {
				t.Errorf("body_battery_current status = %v, want unknown", m.Status)
			}
		}
	}
}
