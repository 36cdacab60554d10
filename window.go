package fitapp

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // embedded zone database so zone ids validate on hosts without one
)

// QueryLayout is the offset-less ISO-8601 form the document store compares against.
const QueryLayout = "2006-01-02T15:04:05"

const (
	dateLayout = "2006-01-02"
)

var clockLayouts = []string{"15:04:05", "15:04"}

// WindowSpec is a user-selected local date/time range.
type WindowSpec struct {
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
	StartTime string // HH:MM[:SS]
	EndTime   string // HH:MM[:SS]
	Timezone  string // IANA zone id
}

// TimeWindow is the half-open UTC interval [StartUTC, EndUTC).
type TimeWindow struct {
	StartUTC time.Time
	EndUTC   time.Time
	Location *time.Location
}

// LoadLocation validates a zone id against the zone database.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fieldError(ErrConfiguration, "timezone", name, fmt.Errorf("timezone is required"))
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fieldError(ErrConfiguration, "timezone", name, err)
	}
	return loc, nil
}

// ResolveWindow combines each local date and time-of-day in the named zone and
// converts them to UTC. An inverted range is returned as is.
func ResolveWindow(spec WindowSpec) (TimeWindow, error) {
	loc, err := LoadLocation(spec.Timezone)
	if err != nil {
		return TimeWindow{}, err
	}
	start, err := localInstant(spec.StartDate, spec.StartTime, loc, "start")
	if err != nil {
		return TimeWindow{}, err
	}
	end, err := localInstant(spec.EndDate, spec.EndTime, loc, "end")
	if err != nil {
		return TimeWindow{}, err
	}
	return TimeWindow{StartUTC: start.UTC(), EndUTC: end.UTC(), Location: loc}, nil
}

func localInstant(date, clock string, loc *time.Location, which string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, fieldError(ErrConfiguration, which+"_date", date, err)
	}
	clock = strings.TrimSpace(clock)
	var c time.Time
	parsed := false
	for _, layout := range clockLayouts {
		if c, err = time.Parse(layout, clock); err == nil {
			parsed = true
			break
		}
	}
	if !parsed {
		return time.Time{}, fieldError(ErrConfiguration, which+"_time", clock, err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), c.Second(), 0, loc), nil
}

// DefaultWindow spans previous-day 00:00:00 through today 23:59:59 in loc.
func DefaultWindow(now time.Time, loc *time.Location) TimeWindow {
	return DefaultWindowSpan(now, loc, 1)
}

// DefaultWindowSpan starts days before today at 00:00:00 and ends today at 23:59:59.
func DefaultWindowSpan(now time.Time, loc *time.Location, days int) TimeWindow {
	if loc == nil {
		loc = time.UTC
	}
	if days < 0 {
		days = 0
	}
	local := now.In(loc)
	y, m, d := local.Date()
	start := time.Date(y, m, d-days, 0, 0, 0, 0, loc)
	end := time.Date(y, m, d, 23, 59, 59, 0, loc)
	return TimeWindow{StartUTC: start.UTC(), EndUTC: end.UTC(), Location: loc}
}

// Contains reports whether t falls in [StartUTC, EndUTC).
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.StartUTC) && t.Before(w.EndUTC)
}

// Empty reports whether no instant can fall in the window.
func (w TimeWindow) Empty() bool {
	return !w.StartUTC.Before(w.EndUTC)
}

// QueryBounds formats the bounds as offset-less UTC strings for store filters.
func (w TimeWindow) QueryBounds() (string, string) {
	return w.StartUTC.UTC().Format(QueryLayout), w.EndUTC.UTC().Format(QueryLayout)
}
