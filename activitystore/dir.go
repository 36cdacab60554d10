package activitystore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	fitapp "github.com/juan-esteban-berger/fit-app"
	"github.com/sirupsen/logrus"
)

// DirSource reads every *.json decoder output in a directory.
type DirSource struct {
	Dir    string
	Logger logrus.FieldLogger
}

// NewDirSource reads dir; a nil logger means the logrus standard logger.
func NewDirSource(dir string, logger logrus.FieldLogger) *DirSource {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DirSource{Dir: dir, Logger: logger}
}

// Activities implements Source. Files are read in name order. A file that does
// not decode is still returned, carrying the decode error, when its start is
// unknown or inside w.
func (s *DirSource) Activities(ctx context.Context, w fitapp.TimeWindow) ([]fitapp.Document, error) {
	if w.Empty() {
		return nil, nil
	}
	paths, err := filepath.Glob(filepath.Join(s.Dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.Dir, err)
	}
	sort.Strings(paths)

	var out []fitapp.Document
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		doc := fitapp.DecodeStored(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), data)
		if doc.DecodeErr != nil {
			s.Logger.WithFields(logrus.Fields{"path": path, "activity_id": doc.ID}).Debug("undecodable document")
		}
		if inWindow(doc, w) {
			out = append(out, doc)
		}
	}
	return out, nil
}
