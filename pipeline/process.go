package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	fitapp "github.com/juan-esteban-berger/fit-app"
	"github.com/sirupsen/logrus"
)

// Process renders each document in arrival order. A document that fails is
// logged, recorded as a Diagnostic and skipped; the rest still render.
func Process(ctx context.Context, docs []fitapp.Document, loc *time.Location, opts Options) Result {
	if loc == nil {
		loc = time.UTC
	}
	opts = opts.withDefaults()
	res := Result{
		RunID:       opts.RunID,
		Timezone:    loc.String(),
		Activities:  make([]RenderedActivity, 0, len(docs)),
		Diagnostics: []Diagnostic{},
	}
	log := opts.Logger.WithField("run_id", opts.RunID.String())

	for i, doc := range docs {
		// an undecodable payload never reuses an older rendering
		if doc.DecodeErr == nil {
			if cached, ok := lookupCache(ctx, opts.Cache, doc.ID, loc, log); ok {
				res.Activities = append(res.Activities, *cached)
				continue
			}
		}
		rendered, err := Render(doc, loc)
		if err != nil {
			diag := diagnose(i, doc.ID, err)
			log.WithFields(logrus.Fields{
				"activity_id": doc.ID,
				"index":       i,
				"field":       diag.Field,
				"error":       err.Error(),
			}).Warn("skipping activity")
			res.Diagnostics = append(res.Diagnostics, diag)
			continue
		}
		storeCache(ctx, opts.Cache, rendered, loc, log)
		res.Activities = append(res.Activities, *rendered)
	}
	return res
}

// Render runs normalization, localization, derivation and, when the variant
// wants one, path extraction for a single document.
func Render(doc fitapp.Document, loc *time.Location) (*RenderedActivity, error) {
	act, err := fitapp.Normalize(doc)
	if err != nil {
		return nil, err
	}
	derivation, err := fitapp.Derive(act, loc)
	if err != nil {
		return nil, err
	}
	out := &RenderedActivity{
		ID:         act.ID,
		Sport:      act.Sport,
		SubSport:   act.SubSport,
		Session:    fitapp.Localize(act, loc),
		Derivation: derivation,
	}
	if derivation.NeedsPath {
		path := fitapp.ExtractPath(act.Records)
		out.Path = &path
	}
	return out, nil
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	if o.RunID == uuid.Nil {
		o.RunID = uuid.New()
	}
	return o
}

func diagnose(index int, id string, err error) Diagnostic {
	d := Diagnostic{Index: index, ActivityID: id, Kind: errorKind(err), Message: err.Error()}
	var fe *fitapp.FieldError
	if errors.As(err, &fe) {
		d.Field = fe.Field
	}
	return d
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, fitapp.ErrMalformedTimestamp):
		return "malformed_timestamp"
	case errors.Is(err, fitapp.ErrValidation):
		return "validation"
	case errors.Is(err, fitapp.ErrConfiguration):
		return "configuration"
	default:
		return "unknown"
	}
}

func lookupCache(ctx context.Context, cache Cache, id string, loc *time.Location, log logrus.FieldLogger) (*RenderedActivity, bool) {
	if cache == nil || id == "" {
		return nil, false
	}
	cached, ok, err := cache.Get(ctx, CacheKey(id, loc))
	if err != nil {
		log.WithFields(logrus.Fields{"activity_id": id, "error": err.Error()}).Warn("cache read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	relocate(cached, loc)
	return cached, true
}

func storeCache(ctx context.Context, cache Cache, r *RenderedActivity, loc *time.Location, log logrus.FieldLogger) {
	if cache == nil || r.ID == "" {
		return
	}
	if err := cache.Set(ctx, CacheKey(r.ID, loc), r); err != nil {
		log.WithFields(logrus.Fields{"activity_id": r.ID, "error": err.Error()}).Warn("cache write failed")
	}
}

// relocate restores loc on times decoded from a cache payload, which only
// carry a fixed offset.
func relocate(r *RenderedActivity, loc *time.Location) {
	r.Session.StartUTC = r.Session.StartUTC.UTC()
	r.Session.StartLocal = r.Session.StartLocal.In(loc)
	for i, ts := range r.Derivation.Timestamps {
		r.Derivation.Timestamps[i] = ts.In(loc)
	}
}

// CacheKey identifies a rendering: outputs depend only on the document and the zone.
func CacheKey(id string, loc *time.Location) string {
	return fmt.Sprintf("fitapp:activity:%s:%s", id, loc.String())
}
