// Package fitapp turns raw wearable activity documents into localized titles, summary
// cards, sport-specific derived series and cleaned GPS paths.
package fitapp

import (
	"encoding/json"
	"time"
)

// Activity is one normalized recording session and its samples.
// Numeric fields hold NaN when the source value was missing.
type Activity struct {
	ID       string
	Sport    string
	SubSport string

	// StartRaw is the start_time string exactly as stored, kept for audit display.
	StartRaw string
	StartUTC time.Time

	TotalDistanceM  float64
	TotalElapsedS   float64
	AvgSpeedMPS     float64
	AvgCadence      float64
	TotalCalories   float64
	AvgTemperatureC float64
	TotalAscentM    float64
	TotalDescentM   float64

	Records []RecordPoint
}

// RecordPoint is one timestamped sample. Missing numerics are NaN; missing
// coordinates are nil.
type RecordPoint struct {
	TimestampUTC time.Time
	SpeedMPS     float64 // enhanced_speed
	RawSpeedMPS  float64 // speed
	AltitudeM    float64
	PowerW       float64
	Cadence      float64
	HeartRate    float64
	PositionLat  *int64
	PositionLong *int64
}

// Series is one derived channel, index-aligned with Derivation.Timestamps.
type Series struct {
	Name   string
	Unit   string
	Values []float64
}

type seriesJSON struct {
	Name   string     `json:"name"`
	Unit   string     `json:"unit"`
	Values []*float64 `json:"values"`
}

// MarshalJSON renders unavailable (NaN) values as null.
func (s Series) MarshalJSON() ([]byte, error) {
	return json.Marshal(seriesJSON{Name: s.Name, Unit: s.Unit, Values: nullableFloats(s.Values)})
}

// UnmarshalJSON maps null values back to NaN.
func (s *Series) UnmarshalJSON(data []byte) error {
	var raw seriesJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Name = raw.Name
	s.Unit = raw.Unit
	s.Values = make([]float64, len(raw.Values))
	for i, v := range raw.Values {
		s.Values[i] = valueOrNaN(v)
	}
	return nil
}

// Derivation is what Derive produces for one activity.
type Derivation struct {
	Variant    Variant     `json:"variant"`
	Card       SummaryCard `json:"card"`
	Timestamps []time.Time `json:"timestamps,omitempty"`
	Series     []Series    `json:"series,omitempty"`
	NeedsPath  bool        `json:"needs_path"`
}

// Channel returns the named series.
func (d Derivation) Channel(name string) (Series, bool) {
	for _, s := range d.Series {
		if s.Name == name {
			return s, true
		}
	}
	return Series{}, false
}

// LatLng is a position in decimal degrees.
type LatLng struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

// GeoPath is the cleaned, chronologically ordered track. Centroid is nil when no
// sample carried both coordinates.
type GeoPath struct {
	Points   []LatLng `json:"points"`
	Centroid *LatLng  `json:"centroid"`
}
