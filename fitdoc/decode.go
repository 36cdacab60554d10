// Package fitdoc decodes binary FIT activity recordings into the session/record
// JSON documents consumed by the activity stores.
package fitdoc

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
	"unicode"

	fitapp "github.com/juan-esteban-berger/fit-app"
	"github.com/tormoder/fit"
)

// Decode reads a FIT activity file into a document. Timestamps are written as
// offset-less UTC strings, positions stay in semicircles.
func Decode(r io.Reader) (fitapp.Document, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return fitapp.Document{}, fmt.Errorf("decode fit: %w", err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return fitapp.Document{}, fmt.Errorf("fit activity: %w", err)
	}
	return documentFromActivity(activity), nil
}

// DecodeBytes is Decode over raw bytes; the document id is derived from the
// content hash so repeated decodes of one file share an id.
func DecodeBytes(data []byte) (fitapp.Document, error) {
	doc, err := Decode(bytes.NewReader(data))
	if err != nil {
		return fitapp.Document{}, err
	}
	doc.ID = contentID(data)
	return doc, nil
}

func contentID(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

func documentFromActivity(a *fit.ActivityFile) fitapp.Document {
	doc := fitapp.Document{
		SessionMesgs: make([]fitapp.SessionMesg, 0, len(a.Sessions)),
		RecordMesgs:  make([]fitapp.RecordMesg, 0, len(a.Records)),
	}
	for _, s := range a.Sessions {
		doc.SessionMesgs = append(doc.SessionMesgs, sessionMesg(s))
	}
	for _, r := range a.Records {
		doc.RecordMesgs = append(doc.RecordMesgs, recordMesg(r))
	}
	return doc
}

func sessionMesg(s *fit.SessionMsg) fitapp.SessionMesg {
	return fitapp.SessionMesg{
		Sport:            sportName(s.Sport),
		SubSport:         subSportName(s.SubSport),
		StartTime:        formatTimestamp(s.StartTime),
		TotalDistance:    scaled(s.GetTotalDistanceScaled()),
		TotalElapsedTime: scaled(s.GetTotalElapsedTimeScaled()),
		EnhancedAvgSpeed: avgSpeed(s),
		AvgCadence:       cadenceFromAny(s.GetAvgCadence()),
		TotalCalories:    validUint16(s.TotalCalories),
		AvgTemperature:   validInt8(s.AvgTemperature),
		TotalAscent:      validUint16(s.TotalAscent),
		TotalDescent:     validUint16(s.TotalDescent),
	}
}

func avgSpeed(s *fit.SessionMsg) *float64 {
	if v := scaled(s.GetEnhancedAvgSpeedScaled()); v != nil {
		return v
	}
	return scaled(s.GetAvgSpeedScaled())
}

func recordMesg(r *fit.RecordMsg) fitapp.RecordMesg {
	m := fitapp.RecordMesg{
		Timestamp:        formatTimestamp(r.Timestamp),
		Speed:            scaled(r.GetSpeedScaled()),
		EnhancedSpeed:    scaled(r.GetEnhancedSpeedScaled()),
		EnhancedAltitude: scaled(r.GetEnhancedAltitudeScaled()),
		Power:            validUint16(r.Power),
		Cadence:          validUint8(r.Cadence),
		HeartRate:        validUint8(r.HeartRate),
		Distance:         scaled(r.GetDistanceScaled()),
	}
	if m.EnhancedSpeed == nil {
		m.EnhancedSpeed = m.Speed
	}
	if m.EnhancedAltitude == nil {
		m.EnhancedAltitude = scaled(r.GetAltitudeScaled())
	}
	if !r.PositionLat.Invalid() && !r.PositionLong.Invalid() {
		lat := int64(r.PositionLat.Semicircles())
		long := int64(r.PositionLong.Semicircles())
		m.PositionLat = &lat
		m.PositionLong = &long
	}
	return m
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() || fit.IsBaseTime(t) {
		return ""
	}
	return t.UTC().Format(fitapp.QueryLayout)
}

func scaled(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func validUint16(v uint16) *float64 {
	if v == math.MaxUint16 {
		return nil
	}
	f := float64(v)
	return &f
}

func validUint8(v uint8) *float64 {
	if v == math.MaxUint8 {
		return nil
	}
	f := float64(v)
	return &f
}

func validInt8(v int8) *float64 {
	if v == math.MaxInt8 {
		return nil
	}
	f := float64(v)
	return &f
}

func cadenceFromAny(v any) *float64 {
	switch x := v.(type) {
	case uint8:
		return validUint8(x)
	case uint16:
		return validUint16(x)
	case float64:
		return scaled(x)
	default:
		return nil
	}
}

var sportNames = map[fit.Sport]string{
	fit.SportGeneric:  "generic",
	fit.SportRunning:  "running",
	fit.SportCycling:  "cycling",
	fit.SportSwimming: "swimming",
	fit.SportWalking:  "walking",
	fit.SportHiking:   "hiking",
	fit.SportTraining: "training",
}

var subSportNames = map[fit.SubSport]string{
	fit.SubSportGeneric:         "generic",
	fit.SubSportTreadmill:       "treadmill",
	fit.SubSportStreet:          "street",
	fit.SubSportTrail:           "trail",
	fit.SubSportTrack:           "track",
	fit.SubSportSpin:            "spin",
	fit.SubSportIndoorCycling:   "indoor_cycling",
	fit.SubSportRoad:            "road",
	fit.SubSportMountain:        "mountain",
	fit.SubSportVirtualActivity: "virtual_activity",
	fit.SubSportLapSwimming:     "lap_swimming",
	fit.SubSportOpenWater:       "open_water",
}

func sportName(s fit.Sport) string {
	if name, ok := sportNames[s]; ok {
		return name
	}
	return snakeCase(strings.TrimPrefix(fmt.Sprint(s), "Sport"))
}

func subSportName(s fit.SubSport) string {
	if name, ok := subSportNames[s]; ok {
		return name
	}
	return snakeCase(strings.TrimPrefix(fmt.Sprint(s), "SubSport"))
}

// snakeCase turns "IndoorCycling" into "indoor_cycling".
func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
