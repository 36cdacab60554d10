package fitdoc

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	fitapp "github.com/juan-esteban-berger/fit-app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tormoder/fit"
)

func buildTestFIT(t *testing.T) []byte {
	t.Helper()

	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	require.NoError(t, err)

	activity, err := file.Activity()
	require.NoError(t, err)

	start := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	first := fit.NewRecordMsg()
	first.Timestamp = start
	first.Speed = 2500
	first.EnhancedSpeed = 2500
	first.HeartRate = 140
	first.Cadence = 85
	first.PositionLat = fit.NewLatitude(1 << 29)
	first.PositionLong = fit.NewLongitude(-(1 << 30))
	activity.Records = append(activity.Records, first)

	second := fit.NewRecordMsg()
	second.Timestamp = start.Add(time.Second)
	second.Speed = 0
	second.EnhancedSpeed = 0
	activity.Records = append(activity.Records, second)

	session := fit.NewSessionMsg()
	session.Timestamp = start.Add(time.Hour)
	session.StartTime = start
	session.Sport = fit.SportRunning
	session.SubSport = fit.SubSportTrail
	session.TotalDistance = 1023400    // cm
	session.TotalElapsedTime = 3723600 // ms
	session.TotalCalories = 640
	session.TotalAscent = 120
	activity.Sessions = append(activity.Sessions, session)

	var buf bytes.Buffer
	require.NoError(t, fit.Encode(&buf, file, binary.LittleEndian))
	return buf.Bytes()
}

func TestDecodeBytes(t *testing.T) {
	data := buildTestFIT(t)
	doc, err := DecodeBytes(data)
	require.NoError(t, err)

	assert.Len(t, doc.ID, 16)
	require.Len(t, doc.SessionMesgs, 1)
	s := doc.SessionMesgs[0]
	assert.Equal(t, "running", s.Sport)
	assert.Equal(t, "trail", s.SubSport)
	assert.Equal(t, "2024-06-01T10:00:00", s.StartTime)
	require.NotNil(t, s.TotalDistance)
	assert.InDelta(t, 10234.0, *s.TotalDistance, 1e-6)
	require.NotNil(t, s.TotalElapsedTime)
	assert.InDelta(t, 3723.6, *s.TotalElapsedTime, 1e-6)
	require.NotNil(t, s.TotalCalories)
	assert.Equal(t, 640.0, *s.TotalCalories)
	assert.Nil(t, s.TotalDescent)
	assert.Nil(t, s.AvgTemperature)

	require.Len(t, doc.RecordMesgs, 2)
	r := doc.RecordMesgs[0]
	assert.Equal(t, "2024-06-01T10:00:00", r.Timestamp)
	require.NotNil(t, r.EnhancedSpeed)
	assert.InDelta(t, 2.5, *r.EnhancedSpeed, 1e-9)
	require.NotNil(t, r.PositionLat)
	assert.Equal(t, int64(1<<29), *r.PositionLat)
	assert.Equal(t, int64(-(1 << 30)), *r.PositionLong)
	assert.Nil(t, r.Power)

	assert.Nil(t, doc.RecordMesgs[1].PositionLat)
	assert.Nil(t, doc.RecordMesgs[1].PositionLong)
}

func TestDecodedDocumentNormalizes(t *testing.T) {
	doc, err := DecodeBytes(buildTestFIT(t))
	require.NoError(t, err)

	act, err := fitapp.Normalize(doc)
	require.NoError(t, err)
	d, err := fitapp.Derive(act, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, fitapp.VariantRunning, d.Variant)
	assert.Equal(t, "10.23", d.Card.Map()[fitapp.LabelDistance])

	path := fitapp.ExtractPath(act.Records)
	require.Len(t, path.Points, 1)
	assert.Equal(t, fitapp.LatLng{Lat: 45, Long: -90}, path.Points[0])
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := DecodeBytes([]byte("definitely not a fit file"))
	assert.Error(t, err)
}

func TestExportFileWritesSibling(t *testing.T) {
	tmp := t.TempDir()
	input := filepath.Join(tmp, "morning_run.fit")
	require.NoError(t, os.WriteFile(input, buildTestFIT(t), 0o644))

	res, err := ExportFile(input, ExportOptions{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmp, "morning_run.json"), res.OutputPath)
	assert.Equal(t, 1, res.SessionCount)
	assert.Equal(t, 2, res.RecordCount)

	data, err := os.ReadFile(res.OutputPath)
	require.NoError(t, err)
	var doc fitapp.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, res.DocumentID, doc.ID)
	assert.Equal(t, "trail", doc.SessionMesgs[0].SubSport)

	_, err = ExportFile(input, ExportOptions{})
	assert.ErrorContains(t, err, "output file exists")

	_, err = ExportFile(input, ExportOptions{Overwrite: true})
	assert.NoError(t, err)
}

func TestExportFileDecodeFailureWritesNothing(t *testing.T) {
	tmp := t.TempDir()
	input := filepath.Join(tmp, "broken.fit")
	require.NoError(t, os.WriteFile(input, []byte{0x0e, 0x10}, 0o644))

	_, err := ExportFile(input, ExportOptions{})
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(tmp, "broken.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestSnakeCase(t *testing.T) {
	assert.Equal(t, "indoor_cycling", snakeCase("IndoorCycling"))
	assert.Equal(t, "running", snakeCase("Running"))
	assert.Equal(t, "e_bike", snakeCase("EBike"))
}
