package pipeline

import (
	"math"

	"github.com/juan-esteban-berger/fit-app/bodymetrics"
	"github.com/xuri/excelize/v2"
)

const (
	bodySheet     = "body_metrics"
	strengthSheet = "strength"
	dateLayout    = "2006-01-02"
)

func writeBodyMetricsXLSX(path string, frame bodymetrics.Frame, strength []bodymetrics.StrengthRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", bodySheet); err != nil {
		return err
	}
	header := []any{
		"date", "lbs", "caloric_intake", "cardio_calories", "run_kms", "run_calories",
		"run_type", "bike_kms", "bike_calories", "bike_type",
	}
	for _, a := range frame.Aggregates {
		header = append(header, a.Spec.Name())
	}
	if err := f.SetSheetRow(bodySheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range frame.Rows {
		row := []any{
			r.Date.Format(dateLayout), cell(r.Lbs), cell(r.CaloricIntake), cell(r.CardioCalories),
			cell(r.RunKms), cell(r.RunCalories), r.RunType, cell(r.BikeKms), cell(r.BikeCalories), r.BikeType,
		}
		for _, a := range frame.Aggregates {
			row = append(row, nanCell(a.Values[i]))
		}
		if err := setRow(f, bodySheet, i+2, row); err != nil {
			return err
		}
	}

	if len(strength) > 0 {
		if _, err := f.NewSheet(strengthSheet); err != nil {
			return err
		}
		if err := f.SetSheetRow(strengthSheet, "A1", &[]any{"date", "exercise", "variation", "reps"}); err != nil {
			return err
		}
		for i, r := range strength {
			row := []any{r.Date.Format(dateLayout), r.Exercise, r.Variation, cell(r.Reps)}
			if err := setRow(f, strengthSheet, i+2, row); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(path)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	addr, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, addr, &values)
}

// cell leaves missing values as empty cells.
func cell(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nanCell(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
