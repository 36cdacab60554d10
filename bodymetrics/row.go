// Package bodymetrics reads daily body-metric rows and computes trailing-window
// aggregates over them.
package bodymetrics

import (
	"math"
	"time"
)

// Column names of the fitness.weight table.
const (
	ColumnLbs            = "lbs"
	ColumnCaloricIntake  = "caloric_intake"
	ColumnCardioCalories = "cardio_calories"
	ColumnRunKms         = "run_kms"
	ColumnRunCalories    = "run_calories"
	ColumnBikeKms        = "bike_kms"
	ColumnBikeCalories   = "bike_calories"
)

// Row is one day's body-metric entry. Missing numerics are nil.
type Row struct {
	Date           time.Time `json:"date"`
	Lbs            *float64  `json:"lbs"`
	CaloricIntake  *float64  `json:"caloric_intake"`
	CardioCalories *float64  `json:"cardio_calories"`
	RunKms         *float64  `json:"run_kms"`
	RunCalories    *float64  `json:"run_calories"`
	RunType        string    `json:"run_type"`
	BikeKms        *float64  `json:"bike_kms"`
	BikeCalories   *float64  `json:"bike_calories"`
	BikeType       string    `json:"bike_type"`
}

// StrengthRow is one strength-training set. It is passed through untransformed.
type StrengthRow struct {
	Date      time.Time `json:"date"`
	Exercise  string    `json:"exercise"`
	Variation string    `json:"variation"`
	Reps      *float64  `json:"reps"`
}

// NumericColumns lists the columns Rolling can aggregate, in table order.
func NumericColumns() []string {
	return []string{
		ColumnLbs, ColumnCaloricIntake, ColumnCardioCalories,
		ColumnRunKms, ColumnRunCalories, ColumnBikeKms, ColumnBikeCalories,
	}
}

// Value returns the named numeric column, NaN when missing. ok is false for an
// unknown column.
func (r Row) Value(column string) (v float64, ok bool) {
	var p *float64
	switch column {
	case ColumnLbs:
		p = r.Lbs
	case ColumnCaloricIntake:
		p = r.CaloricIntake
	case ColumnCardioCalories:
		p = r.CardioCalories
	case ColumnRunKms:
		p = r.RunKms
	case ColumnRunCalories:
		p = r.RunCalories
	case ColumnBikeKms:
		p = r.BikeKms
	case ColumnBikeCalories:
		p = r.BikeCalories
	default:
		return math.NaN(), false
	}
	if p == nil || math.IsNaN(*p) {
		return math.NaN(), true
	}
	return *p, true
}
