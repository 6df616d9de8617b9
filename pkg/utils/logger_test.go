package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewSugaredLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
	}{
		{name: "production", verbose: false, wantDebug: false},
		{name: "development", verbose: true, wantDebug: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			log, err := NewSugaredLogger(tt.verbose)
			require.NoError(t, err)
			require.NotNil(t, log)
			require.Equal(t, tt.wantDebug, log.Desugar().Core().Enabled(zapcore.DebugLevel))
		})
	}
}

func TestNewRunID(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	tests := []struct {
		input    string
		expected string
	}{
		{"/data/NA12878.bam", "NA12878-20260301T110000Z"},
		{"reads.sam.gz", "reads-20260301T110000Z"},
		{"-", "--20260301T110000Z"},
		{"", "run-20260301T110000Z"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.expected, NewRunID(tt.input, at))
		})
	}
}
