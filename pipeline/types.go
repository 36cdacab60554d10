package pipeline

import (
	"time"

	"github.com/google/uuid"
	fitapp "github.com/juan-esteban-berger/fit-app"
	"github.com/juan-esteban-berger/fit-app/bodymetrics"
	"github.com/sirupsen/logrus"
)

// Options configures Process and Run.
type Options struct {
	// Logger receives per-activity diagnostics. Defaults to the logrus standard logger.
	Logger logrus.FieldLogger

	// Cache, when set, memoizes rendered activities by id and timezone.
	Cache Cache

	// RunID tags log entries; a random one is generated when zero.
	RunID uuid.UUID
}

// RenderedActivity is everything the display layer needs for one activity.
type RenderedActivity struct {
	ID         string                  `json:"id"`
	Sport      string                  `json:"sport"`
	SubSport   string                  `json:"sub_sport"`
	Session    fitapp.LocalizedSession `json:"session"`
	Derivation fitapp.Derivation       `json:"derivation"`
	Path       *fitapp.GeoPath         `json:"path,omitempty"`
}

// Diagnostic records one activity that was skipped.
type Diagnostic struct {
	Index      int    `json:"index"`
	ActivityID string `json:"activity_id,omitempty"`
	Kind       string `json:"kind"`
	Field      string `json:"field,omitempty"`
	Message    string `json:"message"`
}

// Result is the output of one pipeline invocation.
type Result struct {
	RunID       uuid.UUID                 `json:"run_id"`
	Timezone    string                    `json:"timezone"`
	WindowStart time.Time                 `json:"window_start_utc"`
	WindowEnd   time.Time                 `json:"window_end_utc"`
	Activities  []RenderedActivity        `json:"activities"`
	Diagnostics []Diagnostic              `json:"diagnostics"`
	Body        *bodymetrics.Frame        `json:"body_metrics,omitempty"`
	Strength    []bodymetrics.StrengthRow `json:"strength,omitempty"`
}

// Artifacts lists the files written by WriteArtifacts.
type Artifacts struct {
	OutputDir       string `json:"output_dir"`
	ActivitiesPath  string `json:"activities_path"`
	DiagnosticsPath string `json:"diagnostics_path"`
	SeriesPath      string `json:"series_path"`
	BodyMetricsPath string `json:"body_metrics_path,omitempty"`
}

// seriesRow is one long-format derived sample.
type seriesRow struct {
	ActivityID     string
	RecordIndex    int
	TimestampLocal string
	Channel        string
	Unit           string
	Value          *float64
}
