package bodymetrics

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	fitapp "github.com/juan-esteban-berger/fit-app"
)

// Statistic is the reducer applied to each trailing window.
type Statistic string

const (
	Median Statistic = "median"
	Mean   Statistic = "mean"
)

// Spec describes one rolling aggregate.
type Spec struct {
	Column     string    `json:"column" mapstructure:"column"`
	Window     int       `json:"window" mapstructure:"window"`
	MinPeriods int       `json:"min_periods" mapstructure:"min_periods"`
	Statistic  Statistic `json:"statistic" mapstructure:"statistic"`
}

// Name is the output column name, e.g. "lbs_median_10".
func (s Spec) Name() string {
	return fmt.Sprintf("%s_%s_%d", s.Column, s.Statistic, s.Window)
}

// DefaultSpecs are the aggregates the dashboard plots.
func DefaultSpecs() []Spec {
	return []Spec{
		{Column: ColumnLbs, Window: 10, MinPeriods: 3, Statistic: Median},
		{Column: ColumnCaloricIntake, Window: 10, MinPeriods: 3, Statistic: Mean},
		{Column: ColumnCardioCalories, Window: 10, MinPeriods: 3, Statistic: Mean},
	}
}

// Aggregate is one rolling output aligned with Frame.Rows. NaN marks positions
// without enough observations.
type Aggregate struct {
	Spec   Spec
	Values []float64
}

type aggregateJSON struct {
	Name   string     `json:"name"`
	Spec   Spec       `json:"spec"`
	Values []*float64 `json:"values"`
}

// MarshalJSON renders undefined positions as null.
func (a Aggregate) MarshalJSON() ([]byte, error) {
	out := aggregateJSON{Name: a.Spec.Name(), Spec: a.Spec, Values: make([]*float64, len(a.Values))}
	for i, v := range a.Values {
		if !math.IsNaN(v) {
			v := v
			out.Values[i] = &v
		}
	}
	return json.Marshal(out)
}

// Frame is the date-sorted input plus one aggregate per spec.
type Frame struct {
	Rows       []Row       `json:"rows"`
	Aggregates []Aggregate `json:"aggregates"`
}

// Aggregate returns the output for the named spec.
func (f Frame) Aggregate(name string) (Aggregate, bool) {
	for _, a := range f.Aggregates {
		if a.Spec.Name() == name {
			return a, true
		}
	}
	return Aggregate{}, false
}

// Rolling sorts a copy of rows by date and computes each spec over trailing
// windows. Only non-missing values count towards MinPeriods.
func Rolling(rows []Row, specs []Spec) (Frame, error) {
	for i, r := range rows {
		if r.Date.IsZero() {
			return Frame{}, &fitapp.FieldError{
				Kind:  fitapp.ErrAggregation,
				Field: "date",
				Err:   fmt.Errorf("row %d has no date", i),
			}
		}
	}
	for _, s := range specs {
		if err := validateSpec(s); err != nil {
			return Frame{}, err
		}
	}

	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	frame := Frame{Rows: sorted, Aggregates: make([]Aggregate, 0, len(specs))}
	for _, s := range specs {
		values := make([]float64, len(sorted))
		for i, r := range sorted {
			values[i], _ = r.Value(s.Column)
		}
		frame.Aggregates = append(frame.Aggregates, Aggregate{Spec: s, Values: trailing(values, s)})
	}
	return frame, nil
}

func validateSpec(s Spec) error {
	if _, ok := (Row{}).Value(s.Column); !ok {
		return &fitapp.FieldError{Kind: fitapp.ErrAggregation, Field: "column", Value: s.Column, Err: fmt.Errorf("unknown column")}
	}
	if s.Window < 1 {
		return &fitapp.FieldError{Kind: fitapp.ErrAggregation, Field: "window", Value: fmt.Sprint(s.Window), Err: fmt.Errorf("window must be positive")}
	}
	if s.MinPeriods < 1 || s.MinPeriods > s.Window {
		return &fitapp.FieldError{Kind: fitapp.ErrAggregation, Field: "min_periods", Value: fmt.Sprint(s.MinPeriods), Err: fmt.Errorf("min_periods must be in [1, %d]", s.Window)}
	}
	switch s.Statistic {
	case Median, Mean:
	default:
		return &fitapp.FieldError{Kind: fitapp.ErrAggregation, Field: "statistic", Value: string(s.Statistic), Err: fmt.Errorf("expected median|mean")}
	}
	return nil
}

func trailing(values []float64, s Spec) []float64 {
	out := make([]float64, len(values))
	window := make([]float64, 0, s.Window)
	for i := range values {
		window = window[:0]
		for j := max(0, i-s.Window+1); j <= i; j++ {
			if !math.IsNaN(values[j]) {
				window = append(window, values[j])
			}
		}
		if len(window) < s.MinPeriods {
			out[i] = math.NaN()
			continue
		}
		if s.Statistic == Median {
			out[i] = median(window)
		} else {
			out[i] = average(window)
		}
	}
	return out
}

func average(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// median sorts values in place.
func median(values []float64) float64 {
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return (values[mid-1] + values[mid]) / 2
}
