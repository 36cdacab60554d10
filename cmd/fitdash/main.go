package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	fitapp "github.com/juan-esteban-berger/fit-app"
	"github.com/juan-esteban-berger/fit-app/internal/config"
	"github.com/juan-esteban-berger/fit-app/internal/database"
	"github.com/juan-esteban-berger/fit-app/internal/logging"
	"github.com/juan-esteban-berger/fit-app/pipeline"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to config.yaml")
		startDate  = flag.String("start-date", "", "Window start date YYYY-MM-DD (default: yesterday)")
		endDate    = flag.String("end-date", "", "Window end date YYYY-MM-DD (default: today)")
		startTime  = flag.String("start-time", "00:00", "Window start time HH:MM[:SS]")
		endTime    = flag.String("end-time", "23:59:59", "Window end time HH:MM[:SS]")
		tz         = flag.String("tz", "", "IANA timezone (default: config timezone)")
		outDir     = flag.String("out", "", "Output directory (default: config output.dir)")
		format     = flag.String("format", "", "Derived series format: parquet|csv")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [--config config.yaml] [--start-date 2024-06-01 --end-date 2024-06-07] [--tz America/Chicago]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fitdash failed: %v\n", err)
		os.Exit(2)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fitdash failed: %v\n", err)
		os.Exit(2)
	}
	if *tz == "" {
		*tz = cfg.Timezone
	}
	if *outDir == "" {
		*outDir = cfg.Output.Dir
	}
	if *format == "" {
		*format = cfg.Output.Format
	}

	ctx := context.Background()
	backends, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("open backends")
	}
	defer backends.Close()

	res, err := pipeline.Run(ctx, backends.Sources, pipeline.Request{
		Window: fitapp.WindowSpec{
			StartDate: *startDate,
			EndDate:   *endDate,
			StartTime: *startTime,
			EndTime:   *endTime,
			Timezone:  *tz,
		},
		DefaultDays: cfg.DefaultDays,
		Rolling:     cfg.Rolling,
	}, pipeline.Options{Logger: log, Cache: backends.Cache})
	if err != nil {
		log.WithError(err).Error("run failed")
		backends.Close()
		os.Exit(1)
	}

	art, err := pipeline.WriteArtifacts(res, *outDir, *format)
	if err != nil {
		log.WithError(err).Error("write artifacts")
		backends.Close()
		os.Exit(1)
	}

	fmt.Printf("fitdash complete\n")
	fmt.Printf("Window:            %s .. %s (%s)\n", res.WindowStart.Format(fitapp.QueryLayout), res.WindowEnd.Format(fitapp.QueryLayout), res.Timezone)
	for _, a := range res.Activities {
		fmt.Printf("  %s\n", a.Session.Title)
	}
	if len(res.Diagnostics) > 0 {
		fmt.Printf("Skipped:           %d activities\n", len(res.Diagnostics))
	}
	fmt.Printf("Output dir:        %s\n", art.OutputDir)
	fmt.Printf("activities.json:   %s\n", art.ActivitiesPath)
	fmt.Printf("diagnostics.json:  %s\n", art.DiagnosticsPath)
	fmt.Printf("derived series:    %s\n", art.SeriesPath)
	if art.BodyMetricsPath != "" {
		fmt.Printf("body metrics:      %s\n", art.BodyMetricsPath)
	}
}
