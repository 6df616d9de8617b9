package main

import (
	"time"

	"github.com/urfave/cli/v2"
)

// runFlags returns the flags of the run command. Reduction parameters have no flag default:
// an unset flag falls back to the REDUCE_* environment, then to the built-in default.
func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable verbose logging, including the per-read trace",
		},
		&cli.StringFlag{
			Name:    "env-file",
			Usage:   "Load environment variables from this file before reading configuration",
			EnvVars: []string{"ENV_FILE"},
		},
		&cli.StringFlag{
			Name:     "input",
			Aliases:  []string{"I"},
			Usage:    "Coordinate-sorted input (.bam, .sam or .sam.gz)",
			EnvVars:  []string{"INPUT"},
			Required: true,
		},
		&cli.StringFlag{
			Name:     "output",
			Aliases:  []string{"o"},
			Usage:    "Reduced output (.bam, .sam or .sam.gz)",
			EnvVars:  []string{"OUTPUT"},
			Required: true,
		},
		&cli.StringFlag{
			Name:    "intervals",
			Aliases: []string{"L"},
			Usage:   "Restrict output to regions from a BED or interval list file",
			EnvVars: []string{"INTERVALS"},
		},
		&cli.IntFlag{
			Name:    "bgzf-workers",
			Usage:   "Concurrent BGZF compressors for BAM output (0 uses all CPUs)",
			EnvVars: []string{"BGZF_WORKERS"},
		},
		// Reduction parameters
		&cli.IntFlag{
			Name:        "context-size",
			Usage:       "Reference bases a column stays open after the last read starting before it",
			EnvVars:     []string{"REDUCE_CONTEXT_SIZE"},
			DefaultText: "10",
		},
		&cli.IntFlag{
			Name:        "depth-ceiling",
			Usage:       "Columns at least this deep are always consensus (0 disables variable calling)",
			EnvVars:     []string{"REDUCE_DEPTH_CEILING"},
			DefaultText: "500",
		},
		&cli.IntFlag{
			Name:        "min-mapping-quality",
			Usage:       "Reads below this mapping quality count toward depth only",
			EnvVars:     []string{"REDUCE_MIN_MAPPING_QUALITY"},
			DefaultText: "20",
		},
		&cli.IntFlag{
			Name:        "min-tail-quality",
			Usage:       "Read ends below this base quality are hard clipped",
			EnvVars:     []string{"REDUCE_MIN_TAIL_QUALITY"},
			DefaultText: "2",
		},
		&cli.Float64Flag{
			Name:        "min-alt-proportion",
			Usage:       "Minority allele share that marks a column variable",
			EnvVars:     []string{"REDUCE_MIN_ALT_PROPORTION"},
			DefaultText: "0.3",
		},
		&cli.IntFlag{
			Name:        "min-base-qual",
			Usage:       "Bases below this quality are not considered",
			EnvVars:     []string{"REDUCE_MIN_BASE_QUAL"},
			DefaultText: "20",
		},
		&cli.IntFlag{
			Name:        "max-consensus-qual",
			Usage:       "Cap on the aggregated quality of a consensus base",
			EnvVars:     []string{"REDUCE_MAX_CONSENSUS_QUAL"},
			DefaultText: "99",
		},
		&cli.IntFlag{
			Name:        "max-run-length",
			Usage:       "Longest stretch of columns held before it is written out",
			EnvVars:     []string{"REDUCE_MAX_RUN_LENGTH"},
			DefaultText: "1000",
		},
		&cli.BoolFlag{
			Name:    "keep-duplicates",
			Usage:   "Do not filter reads flagged as PCR or optical duplicates",
			EnvVars: []string{"KEEP_DUPLICATES"},
		},
		// Progress
		&cli.DurationFlag{
			Name:    "progress-interval",
			Usage:   "How often to report traversal progress",
			EnvVars: []string{"PROGRESS_INTERVAL"},
			Value:   30 * time.Second,
		},
		// Run report sinks; connection settings come from CLICKHOUSE_* and KAFKA_* variables
		&cli.BoolFlag{
			Name:    "report-clickhouse",
			Usage:   "Write the run report to ClickHouse",
			EnvVars: []string{"REPORT_CLICKHOUSE"},
		},
		&cli.BoolFlag{
			Name:    "report-kafka",
			Usage:   "Publish a reduction.completed event to Kafka",
			EnvVars: []string{"REPORT_KAFKA"},
		},
		// Metrics
		&cli.StringFlag{
			Name:    "metrics-host",
			Usage:   "Host for the Prometheus metrics server (empty for all interfaces)",
			EnvVars: []string{"METRICS_HOST"},
		},
		&cli.IntFlag{
			Name:    "metrics-port",
			Aliases: []string{"m"},
			Usage:   "Port for the Prometheus metrics server (0 disables it)",
			EnvVars: []string{"METRICS_PORT"},
			Value:   9090,
		},
		&cli.StringFlag{
			Name:    "sample",
			Usage:   "Sample label for metrics (defaults to the first read group sample)",
			EnvVars: []string{"SAMPLE"},
		},
		&cli.StringFlag{
			Name:    "environment",
			Usage:   "Deployment environment label for metrics",
			EnvVars: []string{"ENVIRONMENT"},
		},
		&cli.StringFlag{
			Name:    "region",
			Usage:   "Cloud region label for metrics",
			EnvVars: []string{"REGION"},
		},
		&cli.StringFlag{
			Name:    "cloud-provider",
			Usage:   "Cloud provider label for metrics",
			EnvVars: []string{"CLOUD_PROVIDER"},
		},
	}
}
