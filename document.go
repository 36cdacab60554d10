package fitapp

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Document is one raw activity as produced by the decoder and held in the
// document store.
type Document struct {
	ID           string        `json:"id,omitempty"`
	SessionMesgs []SessionMesg `json:"session_mesgs"`
	RecordMesgs  []RecordMesg  `json:"record_mesgs"`

	// Raw and DecodeErr are set by DecodeStored when the stored payload does
	// not decode; Normalize then fails for this document only.
	Raw       json.RawMessage `json:"-"`
	DecodeErr error           `json:"-"`
}

// SessionMesg is the session summary message.
type SessionMesg struct {
	Sport            string   `json:"sport"`
	SubSport         string   `json:"sub_sport"`
	StartTime        string   `json:"start_time"`
	TotalDistance    *float64 `json:"total_distance,omitempty"`
	TotalElapsedTime *float64 `json:"total_elapsed_time,omitempty"`
	EnhancedAvgSpeed *float64 `json:"enhanced_avg_speed,omitempty"`
	AvgCadence       *float64 `json:"avg_cadence,omitempty"`
	TotalCalories    *float64 `json:"total_calories,omitempty"`
	AvgTemperature   *float64 `json:"avg_temperature,omitempty"`
	TotalAscent      *float64 `json:"total_ascent,omitempty"`
	TotalDescent     *float64 `json:"total_descent,omitempty"`
}

// RecordMesg is one per-sample record message. Positions are semicircles.
type RecordMesg struct {
	Timestamp        string   `json:"timestamp"`
	Speed            *float64 `json:"speed,omitempty"`
	EnhancedSpeed    *float64 `json:"enhanced_speed,omitempty"`
	EnhancedAltitude *float64 `json:"enhanced_altitude,omitempty"`
	Power            *float64 `json:"power,omitempty"`
	Cadence          *float64 `json:"cadence,omitempty"`
	HeartRate        *float64 `json:"heart_rate,omitempty"`
	Distance         *float64 `json:"distance,omitempty"`
	PositionLat      *int64   `json:"position_lat,omitempty"`
	PositionLong     *int64   `json:"position_long,omitempty"`
}

// ParseDocument decodes one JSON activity document.
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode activity document: %w", err)
	}
	return doc, nil
}

// DecodeStored parses a payload held under id in a store. The payload id wins
// when present. A payload that does not decode is still returned, carrying the
// error and, when it can be read, its session start for window filtering.
func DecodeStored(id string, data []byte) Document {
	doc, err := ParseDocument(data)
	if err != nil {
		doc = Document{
			ID:        id,
			Raw:       append(json.RawMessage(nil), data...),
			DecodeErr: err,
		}
		if start, ok := storedStart(data); ok {
			doc.SessionMesgs = []SessionMesg{{StartTime: start}}
		}
		return doc
	}
	if doc.ID == "" {
		doc.ID = id
	}
	return doc
}

// storedStart reads only session_mesgs[0].start_time.
func storedStart(data []byte) (string, bool) {
	var partial struct {
		SessionMesgs []struct {
			StartTime string `json:"start_time"`
		} `json:"session_mesgs"`
	}
	if err := json.Unmarshal(data, &partial); err != nil || len(partial.SessionMesgs) == 0 {
		return "", false
	}
	return partial.SessionMesgs[0].StartTime, partial.SessionMesgs[0].StartTime != ""
}

// StartTime returns the raw start_time of the first session, or "" when absent.
func (d Document) StartTime() string {
	if len(d.SessionMesgs) == 0 {
		return ""
	}
	return d.SessionMesgs[0].StartTime
}

// Normalize converts a document into an Activity. Only session_mesgs[0] is used.
func Normalize(doc Document) (Activity, error) {
	if doc.DecodeErr != nil {
		return Activity{}, fieldError(ErrValidation, "document", "", doc.DecodeErr)
	}
	if len(doc.SessionMesgs) == 0 {
		return Activity{}, fieldError(ErrValidation, "session_mesgs", "", fmt.Errorf("no session message"))
	}
	s := doc.SessionMesgs[0]
	start, err := parseTimestamp(s.StartTime)
	if err != nil {
		return Activity{}, fieldError(ErrMalformedTimestamp, "session_mesgs[0].start_time", s.StartTime, err)
	}

	act := Activity{
		ID:              doc.ID,
		Sport:           strings.ToLower(strings.TrimSpace(s.Sport)),
		SubSport:        strings.ToLower(strings.TrimSpace(s.SubSport)),
		StartRaw:        s.StartTime,
		StartUTC:        start,
		TotalDistanceM:  valueOrNaN(s.TotalDistance),
		TotalElapsedS:   valueOrNaN(s.TotalElapsedTime),
		AvgSpeedMPS:     valueOrNaN(s.EnhancedAvgSpeed),
		AvgCadence:      valueOrNaN(s.AvgCadence),
		TotalCalories:   valueOrNaN(s.TotalCalories),
		AvgTemperatureC: valueOrNaN(s.AvgTemperature),
		TotalAscentM:    valueOrNaN(s.TotalAscent),
		TotalDescentM:   valueOrNaN(s.TotalDescent),
		Records:         make([]RecordPoint, 0, len(doc.RecordMesgs)),
	}
	for i, r := range doc.RecordMesgs {
		ts, err := parseTimestamp(r.Timestamp)
		if err != nil {
			return Activity{}, fieldError(ErrMalformedTimestamp, fmt.Sprintf("record_mesgs[%d].timestamp", i), r.Timestamp, err)
		}
		act.Records = append(act.Records, RecordPoint{
			TimestampUTC: ts,
			SpeedMPS:     valueOrNaN(r.EnhancedSpeed),
			RawSpeedMPS:  valueOrNaN(r.Speed),
			AltitudeM:    valueOrNaN(r.EnhancedAltitude),
			PowerW:       valueOrNaN(r.Power),
			Cadence:      valueOrNaN(r.Cadence),
			HeartRate:    valueOrNaN(r.HeartRate),
			PositionLat:  r.PositionLat,
			PositionLong: r.PositionLong,
		})
	}
	return act, nil
}

// Naive layouts are read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

var offsetLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp layout")
}
