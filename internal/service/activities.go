package service

import (
	"context"
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/stian-overasen/connectlog/internal/garmin"
	"github.com/stian-overasen/connectlog/internal/profile"
	"github.com/stian-overasen/connectlog/internal/store"
	"github.com/stian-overasen/connectlog/internal/zones"
)

// startTimeLayout is the local start time format the activity endpoint uses.
const startTimeLayout = "2006-01-02 15:04:05"

// ActivityRecord is one activity as served by the API: formatted fields
// plus zone output labeled under the profile that applied on its date.
type ActivityRecord struct {
	Datetime     string             `json:"datetime"`
	ActivityType *string            `json:"activity_type"`
	Duration     *string            `json:"duration"`
	Distance     *string            `json:"distance"`
	HRZones      []zones.LabeledZone `json:"hr_zones"`
	ZoneScheme   zones.Scheme       `json:"zone_scheme"`
	Device       *string            `json:"device"`
	MaxHR        *int               `json:"max_hr"`
	BBImpact     *int               `json:"bb_impact"`
}

// ActivityService assembles activity records, cache-first, labeling heart
// rate zones under the per-date resolved profile.
type ActivityService struct {
	client   TelemetryClient
	store    *store.Store
	profiles *profile.Set
	maxAge   time.Duration
	now      func() time.Time
}

// NewActivityService creates an activity service.
func NewActivityService(client TelemetryClient, st *store.Store, profiles *profile.Set, maxAge time.Duration) *ActivityService {
	return &ActivityService{
		client:   client,
		store:    st,
		profiles: profiles,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Activities returns activities for the last months*30 days including
// today, newest first.
func (s *ActivityService) Activities(ctx context.Context, months int) ([]ActivityRecord, error) {
	end := s.now()
	start := end.AddDate(0, 0, -months*30)
	startDate := start.Format(garmin.DateLayout)
	endDate := end.Format(garmin.DateLayout)

	stateKey := fmt.Sprintf("activities_fetched_at:%d", months)
	if s.cacheFresh(stateKey) {
		cached, err := s.store.ListActivities(startDate, endDate)
		if err != nil {
			return nil, fmt.Errorf("reading cached activities: %w", err)
		}
		log.Debugf("serving %d activities for %d months from cache", len(cached), months)
		return s.formatStored(cached), nil
	}

	log.Infof("fetching activities from %s to %s", startDate, endDate)

	fetched, err := s.client.GetActivitiesByDate(ctx, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("fetching activities: %w", err)
	}

	stored := make([]store.Activity, 0, len(fetched))
	for _, a := range fetched {
		sa := convertActivity(a, s.now())
		if err := s.store.UpsertActivity(&sa); err != nil {
			return nil, fmt.Errorf("caching activity %d: %w", a.ActivityID, err)
		}
		stored = append(stored, sa)
	}

	if err := s.store.SetSyncState(stateKey, s.now().Format(time.RFC3339)); err != nil {
		log.Warnf("failed to record fetch time: %v", err)
	}

	return s.formatStored(stored), nil
}

func (s *ActivityService) cacheFresh(stateKey string) bool {
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

// formatStored shapes cached activities into API records, resolving the
// profile per activity date.
func (s *ActivityService) formatStored(activities []store.Activity) []ActivityRecord {
	records := make([]ActivityRecord, len(activities))
	for i, a := range activities {
		var activityDate time.Time
		if t, err := time.Parse(startTimeLayout, a.StartTimeLocal); err == nil {
			activityDate = t
		}

		// A zero date resolves to the default context.
		pctx := s.profiles.Resolve(activityDate)

		records[i] = ActivityRecord{
			Datetime:     a.StartTimeLocal,
			ActivityType: a.ActivityType,
			Duration:     FormatDuration(a.DurationSeconds),
			Distance:     FormatDistance(a.DistanceMeters),
			HRZones:      zones.Label(zoneObservations(a), pctx.Scheme),
			ZoneScheme:   pctx.Scheme,
			Device:       pctx.Device,
			MaxHR:        pctx.MaxHR,
			BBImpact:     a.BodyBatteryImpact,
		}
	}
	return records
}

// zoneObservations extracts sparse zone observations, highest zone first,
// matching the upstream field order.
func zoneObservations(a store.Activity) []zones.Observation {
	var obs []zones.Observation
	for z := 5; z >= 1; z-- {
		secs := a.HRZoneSeconds[z-1]
		if secs == nil {
			continue
		}
		obs = append(obs, zones.Observation{Zone: z, TimeSeconds: *secs})
	}
	return obs
}

// convertActivity converts a Garmin API activity to a store activity,
// rounding zone times to two decimals.
func convertActivity(a garmin.Activity, fetchedAt time.Time) store.Activity {
	sa := store.Activity{
		ID:                a.ActivityID,
		StartTimeLocal:    a.StartTimeLocal,
		DurationSeconds:   a.Duration,
		DistanceMeters:    a.Distance,
		BodyBatteryImpact: a.DifferenceBodyBattery,
		FetchedAt:         fetchedAt,
	}

	if a.ActivityType.TypeKey != "" {
		typeKey := a.ActivityType.TypeKey
		sa.ActivityType = &typeKey
	}

	for z := 1; z <= 5; z++ {
		if secs := a.HRTimeInZone(z); secs != nil {
			rounded := math.Round(*secs*100) / 100
			sa.HRZoneSeconds[z-1] = &rounded
		}
	}

	return sa
}
