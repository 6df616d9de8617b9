package utils

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// NewSugaredLogger returns a development logger when verbose is set and a production
// logger otherwise. Only the development logger enables debug entries, which carry the
// per-read trace and the base quality histogram.
func NewSugaredLogger(verbose bool) (*zap.SugaredLogger, error) {
	newLogger, kind := zap.NewProduction, "production"
	if verbose {
		newLogger, kind = zap.NewDevelopment, "development"
	}
	l, err := newLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to create %s logger: %w", kind, err)
	}
	return l.Sugar(), nil
}

// NewRunID names a run after its input file and start time, e.g. "NA12878-20260301T110000Z".
func NewRunID(input string, at time.Time) string {
	base := filepath.Base(input)
	for _, ext := range []string{".gz", ".bam", ".sam"} {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "run"
	}
	return base + "-" + at.UTC().Format("20060102T150405Z")
}
