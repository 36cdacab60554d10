// Package activitystore provides the activity document sources queried by the
// pipeline. Every source returns documents whose session start falls inside the
// requested window, compared the way the stores hold it: offset-less UTC strings.
package activitystore

import (
	"context"

	fitapp "github.com/juan-esteban-berger/fit-app"
)

// Source returns the raw activity documents that started inside w.
// Clients are opened by the caller and passed in; sources never own a global handle.
type Source interface {
	Activities(ctx context.Context, w fitapp.TimeWindow) ([]fitapp.Document, error)
}

// Static is an in-memory Source, filtered the same way as the stores.
type Static []fitapp.Document

// Activities implements Source.
func (s Static) Activities(_ context.Context, w fitapp.TimeWindow) ([]fitapp.Document, error) {
	if w.Empty() {
		return nil, nil
	}
	out := make([]fitapp.Document, 0, len(s))
	for _, doc := range s {
		if inWindow(doc, w) {
			out = append(out, doc)
		}
	}
	return out, nil
}

// inWindow keeps documents whose start cannot be parsed so the pipeline can
// report them.
func inWindow(doc fitapp.Document, w fitapp.TimeWindow) bool {
	start, err := fitapp.ParseStartTime(doc.StartTime())
	if err != nil {
		return true
	}
	return w.Contains(start)
}
