package consensus

import (
	"errors"
	"fmt"
	"math"

	"github.com/caarlos0/env/v11"
)

// ErrConfiguration is returned for out-of-range parameters and for reads that reference
// a read group the input header never declared.
var ErrConfiguration = errors.New("configuration error")

// Config holds the consensus engine parameters.
type Config struct {
	ContextSize                 int     `env:"REDUCE_CONTEXT_SIZE"           envDefault:"10"`   // Window span in reference bases
	AverageDepthAtVariableSites int     `env:"REDUCE_DEPTH_CEILING"          envDefault:"500"`  // Columns this deep are always consensus
	MinMappingQuality           int     `env:"REDUCE_MIN_MAPPING_QUALITY"    envDefault:"20"`   // Reads below it count toward depth only
	MinTailQuality              int     `env:"REDUCE_MIN_TAIL_QUALITY"       envDefault:"2"`    // Read ends below it are hard clipped
	MinAltProportion            float64 `env:"REDUCE_MIN_ALT_PROPORTION"     envDefault:"0.3"`  // Minority share that marks a column variable
	MinBaseQual                 int     `env:"REDUCE_MIN_BASE_QUAL"          envDefault:"20"`   // Bases below it are not considered
	MaxConsensusQual            int     `env:"REDUCE_MAX_CONSENSUS_QUAL"     envDefault:"99"`   // Cap on aggregated consensus quality
	MaxRunLength                int     `env:"REDUCE_MAX_RUN_LENGTH"         envDefault:"1000"` // Longest run held before it is emitted
}

// DefaultConfig returns a Config with the standard reduction parameters.
func DefaultConfig() Config {
	return Config{
		ContextSize:                 10,
		AverageDepthAtVariableSites: 500,
		MinMappingQuality:           20,
		MinTailQuality:              2,
		MinAltProportion:            0.3,
		MinBaseQual:                 20,
		MaxConsensusQual:            99,
		MaxRunLength:                1000,
	}
}

// LoadConfig reads the parameters from the environment and validates them.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse consensus config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every parameter before a traversal starts.
func (c Config) Validate() error {
	if c.ContextSize < 1 {
		return fmt.Errorf("%w: invalid context size: must be >= 1, got %d", ErrConfiguration, c.ContextSize)
	}
	if c.MaxRunLength < 1 {
		return fmt.Errorf("%w: invalid max run length: must be >= 1, got %d", ErrConfiguration, c.MaxRunLength)
	}
	if c.AverageDepthAtVariableSites < 0 {
		return fmt.Errorf("%w: invalid depth ceiling: must be >= 0, got %d", ErrConfiguration, c.AverageDepthAtVariableSites)
	}
	if math.IsNaN(c.MinAltProportion) || c.MinAltProportion < 0 || c.MinAltProportion > 1 {
		return fmt.Errorf("%w: invalid alt proportion: must be in [0,1], got %v", ErrConfiguration, c.MinAltProportion)
	}
	for _, q := range []struct {
		name string
		v    int
	}{
		{"mapping quality", c.MinMappingQuality},
		{"tail quality", c.MinTailQuality},
		{"base quality", c.MinBaseQual},
		{"consensus quality", c.MaxConsensusQual},
	} {
		if q.v < 0 || q.v > math.MaxUint8 {
			return fmt.Errorf("%w: invalid %s: must be in [0,255], got %d", ErrConfiguration, q.name, q.v)
		}
	}
	return nil
}
