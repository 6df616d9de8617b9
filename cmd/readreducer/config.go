package main

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/ava-labs/readreducer/pkg/clickhouse"
	"github.com/ava-labs/readreducer/pkg/consensus"
	"github.com/ava-labs/readreducer/pkg/kafka"
	"github.com/ava-labs/readreducer/pkg/progress"
)

// Config holds all configuration for one readreducer run.
type Config struct {
	Verbose bool

	Input          string
	Output         string
	Intervals      string
	BGZFWorkers    int
	KeepDuplicates bool

	Consensus consensus.Config
	Progress  progress.Config

	ClickHouseEnabled bool
	ClickHouse        clickhouse.Config
	KafkaEnabled      bool
	Kafka             kafka.PublisherConfig

	MetricsHost   string
	MetricsPort   int
	Sample        string
	Environment   string
	Region        string
	CloudProvider string
}

// MetricsAddr returns the formatted metrics address
func (c *Config) MetricsAddr() string {
	return fmt.Sprintf("%s:%d", c.MetricsHost, c.MetricsPort)
}

// buildConfig builds a Config from CLI context flags. The env file is loaded first so it can
// supply any REDUCE_*, CLICKHOUSE_* or KAFKA_* value not already in the environment.
func buildConfig(c *cli.Context) (*Config, error) {
	if path := c.String("env-file"); path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}

	cc, err := buildConsensusConfig(c)
	if err != nil {
		return nil, err
	}

	interval := c.Duration("progress-interval")
	if interval <= 0 {
		return nil, fmt.Errorf("progress-interval must be positive, got %s", interval)
	}
	pc := progress.DefaultConfig()
	pc.Interval = interval

	cfg := &Config{
		Verbose:           c.Bool("verbose"),
		Input:             c.String("input"),
		Output:            c.String("output"),
		Intervals:         c.String("intervals"),
		BGZFWorkers:       c.Int("bgzf-workers"),
		KeepDuplicates:    c.Bool("keep-duplicates"),
		Consensus:         cc,
		Progress:          pc,
		ClickHouseEnabled: c.Bool("report-clickhouse"),
		KafkaEnabled:      c.Bool("report-kafka"),
		MetricsHost:       c.String("metrics-host"),
		MetricsPort:       c.Int("metrics-port"),
		Sample:            c.String("sample"),
		Environment:       c.String("environment"),
		Region:            c.String("region"),
		CloudProvider:     c.String("cloud-provider"),
	}
	if cfg.BGZFWorkers < 0 {
		return nil, fmt.Errorf("bgzf-workers must not be negative, got %d", cfg.BGZFWorkers)
	}
	if cfg.Input == cfg.Output {
		return nil, fmt.Errorf("output must differ from input %s", cfg.Input)
	}

	if cfg.ClickHouseEnabled {
		if cfg.ClickHouse, err = clickhouse.LoadConfig(); err != nil {
			return nil, err
		}
	}
	if cfg.KafkaEnabled {
		if cfg.Kafka, err = kafka.LoadPublisherConfig(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// buildConsensusConfig starts from the REDUCE_* environment and applies the flags that were
// set explicitly.
func buildConsensusConfig(c *cli.Context) (consensus.Config, error) {
	cc, err := consensus.LoadConfig()
	if err != nil {
		return consensus.Config{}, err
	}
	ints := map[string]*int{
		"context-size":        &cc.ContextSize,
		"depth-ceiling":       &cc.AverageDepthAtVariableSites,
		"min-mapping-quality": &cc.MinMappingQuality,
		"min-tail-quality":    &cc.MinTailQuality,
		"min-base-qual":       &cc.MinBaseQual,
		"max-consensus-qual":  &cc.MaxConsensusQual,
		"max-run-length":      &cc.MaxRunLength,
	}
	for name, dst := range ints {
		if c.IsSet(name) {
			*dst = c.Int(name)
		}
	}
	if c.IsSet("min-alt-proportion") {
		cc.MinAltProportion = c.Float64("min-alt-proportion")
	}
	if err := cc.Validate(); err != nil {
		return consensus.Config{}, err
	}
	return cc, nil
}

// flushTimeout bounds how long Close waits for the Kafka producer.
func (c *Config) flushTimeout() time.Duration {
	if c.Kafka.FlushTimeout > 0 {
		return c.Kafka.FlushTimeout
	}
	return 15 * time.Second
}
