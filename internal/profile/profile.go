// Package profile resolves which device and zone-scheme configuration was
// active on a given date. A user may switch watches or training philosophies
// over time; overrides capture those periods so historical activities are
// labeled with the context that actually applied when they happened.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/stian-overasen/connectlog/internal/zones"
)

const dateLayout = "2006-01-02"

var (
	// ErrInvalidZoneScheme is returned when an override names an unknown scheme.
	ErrInvalidZoneScheme = errors.New("invalid zone scheme")
	// ErrInvalidDateFormat is returned when an override date is not YYYY-MM-DD.
	ErrInvalidDateFormat = errors.New("invalid date format")
	// ErrInvalidDateRange is returned when an override starts after it ends.
	ErrInvalidDateRange = errors.New("invalid date range")
	// ErrOverlappingOverrides is returned when two overrides cover the same date.
	ErrOverlappingOverrides = errors.New("overlapping overrides")
)

// RawOverride is the on-disk form of an override entry, with string dates.
type RawOverride struct {
	StartDate  *string `json:"start_date"`
	EndDate    *string `json:"end_date"`
	Device     *string `json:"device"`
	MaxHR      *int    `json:"max_hr"`
	ZoneScheme string  `json:"zone_scheme"`
}

// Override is a validated, immutable time-bounded profile entry. A nil Start
// means unbounded past; a nil End means unbounded future.
type Override struct {
	Start  *time.Time
	End    *time.Time
	Device *string
	MaxHR  *int
	Scheme zones.Scheme
}

// Context is the profile that applies to a single date.
type Context struct {
	Scheme zones.Scheme `json:"zone_scheme"`
	MaxHR  *int         `json:"max_hr"`
	Device *string      `json:"device"`
}

// DefaultContext is what Resolve returns when no override covers a date:
// the Garmin scheme with no device or max HR known.
func DefaultContext() Context {
	return Context{Scheme: zones.SchemeGarmin}
}

// Set is a validated collection of non-overlapping overrides. It is built
// once at startup and safe for concurrent readers thereafter.
type Set struct {
	overrides []Override
}

// Len returns the number of overrides in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.overrides)
}

// Load validates raw entries and builds a Set. Validation is atomic: any
// invalid entry means no Set is produced.
func Load(raw []RawOverride) (*Set, error) {
	overrides := make([]Override, 0, len(raw))

	for i, r := range raw {
		scheme, err := zones.ParseScheme(r.ZoneScheme)
		if err != nil {
			return nil, fmt.Errorf("override %d: %w: %q", i, ErrInvalidZoneScheme, r.ZoneScheme)
		}

		start, err := parseDate(r.StartDate)
		if err != nil {
			return nil, fmt.Errorf("override %d: %w: start_date %q", i, ErrInvalidDateFormat, *r.StartDate)
		}
		end, err := parseDate(r.EndDate)
		if err != nil {
			return nil, fmt.Errorf("override %d: %w: end_date %q", i, ErrInvalidDateFormat, *r.EndDate)
		}

		if start != nil && end != nil && start.After(*end) {
			return nil, fmt.Errorf("override %d: %w: start %s is after end %s",
				i, ErrInvalidDateRange, start.Format(dateLayout), end.Format(dateLayout))
		}

		overrides = append(overrides, Override{
			Start:  start,
			End:    end,
			Device: r.Device,
			MaxHR:  r.MaxHR,
			Scheme: scheme,
		})
	}

	// Pairwise overlap check with nil bounds treated as -inf/+inf.
	for i := 0; i < len(overrides); i++ {
		for j := i + 1; j < len(overrides); j++ {
			if overlaps(overrides[i], overrides[j]) {
				return nil, fmt.Errorf("%w: %s and %s",
					ErrOverlappingOverrides, rangeString(overrides[i]), rangeString(overrides[j]))
			}
		}
	}

	return &Set{overrides: overrides}, nil
}

// LoadFile loads overrides from a JSON file. A missing path or file is not
// an error and yields an empty set.
func LoadFile(path string) (*Set, error) {
	if path == "" {
		return &Set{}, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Set{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading overrides file: %w", err)
	}

	var raw []RawOverride
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing overrides file: %w", err)
	}

	return Load(raw)
}

// Resolve returns the context that applies on the given date. A zero date,
// an empty set, or a date outside every override yields the default
// context. The set is non-overlapping by construction, so the first match
// is the only match.
func (s *Set) Resolve(date time.Time) Context {
	if s == nil || date.IsZero() {
		return DefaultContext()
	}

	day := truncateToDay(date)
	for _, o := range s.overrides {
		if o.Start != nil && day.Before(*o.Start) {
			continue
		}
		if o.End != nil && day.After(*o.End) {
			continue
		}
		return Context{Scheme: o.Scheme, MaxHR: o.MaxHR, Device: o.Device}
	}

	return DefaultContext()
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// overlaps reports whether two overrides share at least one day, treating
// nil bounds as unbounded. [s1,e1] and [s2,e2] overlap iff s1<=e2 && s2<=e1.
func overlaps(a, b Override) bool {
	aStartsBeforeBEnds := a.Start == nil || b.End == nil || !a.Start.After(*b.End)
	bStartsBeforeAEnds := b.Start == nil || a.End == nil || !b.Start.After(*a.End)
	return aStartsBeforeBEnds && bStartsBeforeAEnds
}

func rangeString(o Override) string {
	start, end := "-inf", "+inf"
	if o.Start != nil {
		start = o.Start.Format(dateLayout)
	}
	if o.End != nil {
		end = o.End.Format(dateLayout)
	}
	return fmt.Sprintf("[%s, %s]", start, end)
}
