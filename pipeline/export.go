package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// WriteArtifacts writes the result into outDir:
//   - activities.json
//   - diagnostics.json
//   - derived_series.parquet or derived_series.csv (one row per channel sample)
//   - body_metrics.xlsx (only when body metrics were loaded)
func WriteArtifacts(res *Result, outDir, format string) (*Artifacts, error) {
	if res == nil {
		return nil, fmt.Errorf("result is required")
	}
	if strings.TrimSpace(outDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "parquet"
	}
	if format != "parquet" && format != "csv" {
		return nil, fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	out := &Artifacts{
		OutputDir:       outDir,
		ActivitiesPath:  filepath.Join(outDir, "activities.json"),
		DiagnosticsPath: filepath.Join(outDir, "diagnostics.json"),
		SeriesPath:      filepath.Join(outDir, "derived_series."+format),
	}
	if err := writeJSON(out.ActivitiesPath, res.Activities); err != nil {
		return nil, fmt.Errorf("write activities.json: %w", err)
	}
	if err := writeJSON(out.DiagnosticsPath, res.Diagnostics); err != nil {
		return nil, fmt.Errorf("write diagnostics.json: %w", err)
	}

	rows := seriesRows(res.Activities)
	switch format {
	case "csv":
		if err := writeSeriesCSV(out.SeriesPath, rows); err != nil {
			return nil, fmt.Errorf("write series csv: %w", err)
		}
	case "parquet":
		if err := writeSeriesParquet(out.SeriesPath, rows); err != nil {
			return nil, fmt.Errorf("write series parquet: %w", err)
		}
	}

	if res.Body != nil {
		out.BodyMetricsPath = filepath.Join(outDir, "body_metrics.xlsx")
		if err := writeBodyMetricsXLSX(out.BodyMetricsPath, *res.Body, res.Strength); err != nil {
			return nil, fmt.Errorf("write body_metrics.xlsx: %w", err)
		}
	}
	return out, nil
}

// seriesRows flattens every channel of every activity, keeping record order.
func seriesRows(activities []RenderedActivity) []seriesRow {
	var out []seriesRow
	for _, a := range activities {
		d := a.Derivation
		for _, s := range d.Series {
			for i, v := range s.Values {
				row := seriesRow{
					ActivityID:  a.ID,
					RecordIndex: i,
					Channel:     s.Name,
					Unit:        s.Unit,
				}
				if i < len(d.Timestamps) {
					row.TimestampLocal = d.Timestamps[i].Format(time.RFC3339)
				}
				if !math.IsNaN(v) && !math.IsInf(v, 0) {
					row.Value = floatPtr(v)
				}
				out = append(out, row)
			}
		}
	}
	return out
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var seriesHeader = []string{"activity_id", "record_index", "timestamp_local", "channel", "unit", "value"}

func writeSeriesCSV(path string, rows []seriesRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(seriesHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.ActivityID,
			strconv.Itoa(r.RecordIndex),
			r.TimestampLocal,
			r.Channel,
			r.Unit,
			formatFloatPtr(r.Value),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func floatPtr(v float64) *float64 {
	out := v
	return &out
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 6, 64)
}
