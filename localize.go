package fitapp

import (
	"time"
)

// TitleLayout formats the localized start in activity titles.
const TitleLayout = "2006-01-02 15:04:05"

// LocalizedSession carries both the audited UTC start and its display form.
type LocalizedSession struct {
	StartRaw   string    `json:"start_raw"`
	StartUTC   time.Time `json:"start_utc"`
	StartLocal time.Time `json:"start_local"`
	Title      string    `json:"title"`
}

// ParseStartTime reads a stored start_time. Strings without an offset are UTC.
func ParseStartTime(s string) (time.Time, error) {
	t, err := parseTimestamp(s)
	if err != nil {
		return time.Time{}, fieldError(ErrMalformedTimestamp, "start_time", s, err)
	}
	return t, nil
}

// Localize converts the activity start into loc and builds its display title.
func Localize(act Activity, loc *time.Location) LocalizedSession {
	if loc == nil {
		loc = time.UTC
	}
	local := act.StartUTC.In(loc)
	return LocalizedSession{
		StartRaw:   act.StartRaw,
		StartUTC:   act.StartUTC,
		StartLocal: local,
		Title:      local.Format(TitleLayout) + "_" + act.Sport + "_" + act.SubSport,
	}
}
