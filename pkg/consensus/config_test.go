package consensus

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "zero ceiling allowed", mutate: func(c *Config) { c.AverageDepthAtVariableSites = 0 }},
		{name: "zero context", mutate: func(c *Config) { c.ContextSize = 0 }, wantErr: true},
		{name: "zero max run length", mutate: func(c *Config) { c.MaxRunLength = 0 }, wantErr: true},
		{name: "single column runs", mutate: func(c *Config) { c.MaxRunLength = 1 }},
		{name: "negative ceiling", mutate: func(c *Config) { c.AverageDepthAtVariableSites = -1 }, wantErr: true},
		{name: "alt above one", mutate: func(c *Config) { c.MinAltProportion = 1.5 }, wantErr: true},
		{name: "alt negative", mutate: func(c *Config) { c.MinAltProportion = -0.1 }, wantErr: true},
		{name: "alt NaN", mutate: func(c *Config) { c.MinAltProportion = math.NaN() }, wantErr: true},
		{name: "negative consensus qual", mutate: func(c *Config) { c.MaxConsensusQual = -1 }, wantErr: true},
		{name: "base qual too large", mutate: func(c *Config) { c.MinBaseQual = 256 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrConfiguration)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("REDUCE_CONTEXT_SIZE", "25")
	t.Setenv("REDUCE_MIN_ALT_PROPORTION", "0.2")
	t.Setenv("REDUCE_MAX_RUN_LENGTH", "250")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	want := DefaultConfig()
	want.ContextSize = 25
	want.MinAltProportion = 0.2
	want.MaxRunLength = 250
	require.Equal(t, want, cfg)

	t.Setenv("REDUCE_CONTEXT_SIZE", "0")
	_, err = LoadConfig()
	require.ErrorIs(t, err, ErrConfiguration)
}
