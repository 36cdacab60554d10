package fitdoc

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExportOptions controls ExportFile.
type ExportOptions struct {
	// OutputPath overrides the sibling <base>.json destination.
	OutputPath string

	// Overwrite allows replacing an existing output file.
	Overwrite bool
}

// ExportResult describes the written document.
type ExportResult struct {
	SourceFile      string `json:"source_file"`
	OutputPath      string `json:"output_path"`
	DocumentID      string `json:"document_id"`
	SourceSizeBytes int64  `json:"source_size_bytes"`
	SessionCount    int    `json:"session_count"`
	RecordCount     int    `json:"record_count"`
}

// ExportFile decodes inputPath and writes its document next to it as
// <base>.json. Nothing is written when decoding fails.
func ExportFile(inputPath string, opts ExportOptions) (*ExportResult, error) {
	if strings.TrimSpace(inputPath) == "" {
		return nil, fmt.Errorf("input path is required")
	}
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("read fit file: %w", err)
	}
	doc, err := DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse fit file: %w", err)
	}

	outPath := opts.OutputPath
	if outPath == "" {
		outPath = SiblingPath(inputPath)
	}
	if err := ensureWritable(outPath, opts.Overwrite); err != nil {
		return nil, err
	}
	if err := writeJSON(outPath, doc); err != nil {
		return nil, fmt.Errorf("write %s: %w", filepath.Base(outPath), err)
	}

	return &ExportResult{
		SourceFile:      inputPath,
		OutputPath:      outPath,
		DocumentID:      doc.ID,
		SourceSizeBytes: int64(len(data)),
		SessionCount:    len(doc.SessionMesgs),
		RecordCount:     len(doc.RecordMesgs),
	}, nil
}

// SiblingPath replaces the extension of path with .json.
func SiblingPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
}

func ensureWritable(path string, overwrite bool) error {
	_, err := os.Stat(path)
	switch {
	case err == nil && !overwrite:
		return fmt.Errorf("output file exists: %s (set overwrite to replace it)", path)
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("stat output file: %w", err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
