package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juan-esteban-berger/fit-app/internal/api"
	"github.com/juan-esteban-berger/fit-app/internal/config"
	"github.com/juan-esteban-berger/fit-app/internal/database"
	"github.com/juan-esteban-berger/fit-app/internal/logging"
	"github.com/juan-esteban-berger/fit-app/pipeline"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load configuration: %v\n", err)
		os.Exit(2)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configure logging: %v\n", err)
		os.Exit(2)
	}
	gin.SetMode(cfg.Server.Mode)

	backends, err := database.Open(context.Background(), cfg, log)
	if err != nil {
		log.WithError(err).Fatal("open backends")
	}
	defer backends.Close()

	h := api.NewHandler(backends.Sources.Activities, backends.Sources.Body, backends.Sources.Strength, api.HandlerConfig{
		Timezone:    cfg.Timezone,
		DefaultDays: cfg.DefaultDays,
		Rolling:     cfg.Rolling,
		Options:     pipeline.Options{Logger: log, Cache: backends.Cache},
	})
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
	log.Info("server exited")
}
