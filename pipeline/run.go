package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	fitapp "github.com/juan-esteban-berger/fit-app"
	"github.com/juan-esteban-berger/fit-app/activitystore"
	"github.com/juan-esteban-berger/fit-app/bodymetrics"
	"github.com/sirupsen/logrus"
)

// BodyMetricSource supplies the daily body-metric rows.
type BodyMetricSource interface {
	BodyMetrics(ctx context.Context) ([]bodymetrics.Row, error)
}

// StrengthSource supplies strength rows, passed through for display.
type StrengthSource interface {
	Strength(ctx context.Context) ([]bodymetrics.StrengthRow, error)
}

// Sources are the external collaborators queried by Run. Body and Strength
// are optional.
type Sources struct {
	Activities activitystore.Source
	Body       BodyMetricSource
	Strength   StrengthSource
}

// Request selects what Run renders.
type Request struct {
	// Window is the local range to query. When both dates are empty the default
	// window ending today in Window.Timezone is used.
	Window fitapp.WindowSpec

	// DefaultDays is how many days before today the default window starts:
	// 0 covers today only, 1 starts yesterday. config supplies 1.
	DefaultDays int

	// Now anchors the default window; time.Now when zero.
	Now time.Time

	// Rolling lists body-metric aggregates; DefaultSpecs when nil.
	Rolling []bodymetrics.Spec
}

// ResolveRequestWindow turns the request into a UTC window.
func ResolveRequestWindow(req Request) (fitapp.TimeWindow, error) {
	if strings.TrimSpace(req.Window.StartDate) == "" && strings.TrimSpace(req.Window.EndDate) == "" {
		loc, err := fitapp.LoadLocation(req.Window.Timezone)
		if err != nil {
			return fitapp.TimeWindow{}, err
		}
		now := req.Now
		if now.IsZero() {
			now = time.Now()
		}
		return fitapp.DefaultWindowSpan(now, loc, req.DefaultDays), nil
	}
	return fitapp.ResolveWindow(req.Window)
}

// Run resolves the window, queries the sources and renders everything.
// Window and aggregation errors abort the run; per-activity errors become
// diagnostics on the result.
func Run(ctx context.Context, src Sources, req Request, opts Options) (*Result, error) {
	if src.Activities == nil {
		return nil, fmt.Errorf("activity source is required")
	}
	opts = opts.withDefaults()
	log := opts.Logger.WithField("run_id", opts.RunID.String())

	window, err := ResolveRequestWindow(req)
	if err != nil {
		return nil, fmt.Errorf("resolve window: %w", err)
	}
	docs, err := src.Activities.Activities(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	log.WithFields(logrus.Fields{
		"window_start": window.StartUTC,
		"window_end":   window.EndUTC,
		"documents":    len(docs),
	}).Info("activities loaded")

	res := Process(ctx, docs, window.Location, opts)
	res.WindowStart = window.StartUTC
	res.WindowEnd = window.EndUTC

	if src.Body != nil {
		rows, err := src.Body.BodyMetrics(ctx)
		if err != nil {
			return nil, fmt.Errorf("query body metrics: %w", err)
		}
		specs := req.Rolling
		if specs == nil {
			specs = bodymetrics.DefaultSpecs()
		}
		frame, err := bodymetrics.Rolling(rows, specs)
		if err != nil {
			return nil, fmt.Errorf("aggregate body metrics: %w", err)
		}
		res.Body = &frame
	}
	if src.Strength != nil {
		rows, err := src.Strength.Strength(ctx)
		if err != nil {
			return nil, fmt.Errorf("query strength: %w", err)
		}
		res.Strength = rows
	}

	log.WithFields(logrus.Fields{
		"rendered": len(res.Activities),
		"skipped":  len(res.Diagnostics),
	}).Info("run complete")
	return &res, nil
}
