// Package api serves rendered activities and body metrics over HTTP.
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	fitapp "github.com/juan-esteban-berger/fit-app"
	"github.com/juan-esteban-berger/fit-app/activitystore"
	"github.com/juan-esteban-berger/fit-app/bodymetrics"
	"github.com/juan-esteban-berger/fit-app/pipeline"
	"github.com/sirupsen/logrus"
)

// Handler answers dashboard requests.
type Handler struct {
	activities activitystore.Source
	body       pipeline.BodyMetricSource
	strength   pipeline.StrengthSource

	timezone    string
	defaultDays int
	rolling     []bodymetrics.Spec
	opts        pipeline.Options
}

// HandlerConfig carries the defaults applied when a request leaves them out.
type HandlerConfig struct {
	Timezone    string
	DefaultDays int
	Rolling     []bodymetrics.Spec
	Options     pipeline.Options
}

// NewHandler creates a Handler. body and strength may be nil.
func NewHandler(activities activitystore.Source, body pipeline.BodyMetricSource, strength pipeline.StrengthSource, cfg HandlerConfig) *Handler {
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
	if cfg.Options.Logger == nil {
		cfg.Options.Logger = logrus.StandardLogger()
	}
	return &Handler{
		activities:  activities,
		body:        body,
		strength:    strength,
		timezone:    cfg.Timezone,
		defaultDays: cfg.DefaultDays,
		rolling:     cfg.Rolling,
		opts:        cfg.Options,
	}
}

// NewRouter registers the routes on a fresh gin engine.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", h.Health)
	api := r.Group("/api")
	{
		api.GET("/activities", h.GetActivities)
		api.GET("/body-metrics", h.GetBodyMetrics)
	}
	return r
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetActivities renders every activity in the requested window.
//
// Query parameters: start_date, end_date (YYYY-MM-DD), start_time, end_time
// (HH:MM[:SS]) and tz. Without dates the default window ending today is used.
func (h *Handler) GetActivities(c *gin.Context) {
	req := pipeline.Request{
		Window: fitapp.WindowSpec{
			StartDate: c.Query("start_date"),
			EndDate:   c.Query("end_date"),
			StartTime: c.DefaultQuery("start_time", "00:00"),
			EndTime:   c.DefaultQuery("end_time", "23:59:59"),
			Timezone:  c.DefaultQuery("tz", h.timezone),
		},
		DefaultDays: h.defaultDays,
	}

	opts := h.opts
	opts.RunID = uuid.New()
	res, err := pipeline.Run(c.Request.Context(), pipeline.Sources{Activities: h.activities}, req, opts)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    res,
	})
}

// GetBodyMetrics returns the rolling body-metric frame and strength rows.
func (h *Handler) GetBodyMetrics(c *gin.Context) {
	if h.body == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "body metrics are not configured",
		})
		return
	}
	ctx := c.Request.Context()

	rows, err := h.body.BodyMetrics(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	specs := h.rolling
	if specs == nil {
		specs = bodymetrics.DefaultSpecs()
	}
	frame, err := bodymetrics.Rolling(rows, specs)
	if err != nil {
		h.fail(c, err)
		return
	}

	data := gin.H{"body": frame}
	if h.strength != nil {
		strength, err := h.strength.Strength(ctx)
		if err != nil {
			h.fail(c, err)
			return
		}
		data["strength"] = strength
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	entry := h.opts.Logger.WithError(err).WithField("path", c.Request.URL.Path)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Warn("request rejected")
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   strings.TrimSpace(err.Error()),
	})
}

// statusFor maps caller mistakes to 4xx and upstream failures to 502.
func statusFor(err error) int {
	switch {
	case errors.Is(err, fitapp.ErrConfiguration), errors.Is(err, fitapp.ErrMalformedTimestamp):
		return http.StatusBadRequest
	case errors.Is(err, fitapp.ErrAggregation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}
