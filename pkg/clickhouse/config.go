package clickhouse

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the connection settings for the report store.
//
// ClickHouse processes data in blocks of column parts. MaxBlockSize is the recommended
// upper bound on rows per block; see https://clickhouse.com/docs/operations/settings/settings
type Config struct {
	Hosts                []string `env:"CLICKHOUSE_HOSTS" envSeparator:"," envDefault:"localhost:9000"`
	Database             string   `env:"CLICKHOUSE_DATABASE" envDefault:"default"`
	Username             string   `env:"CLICKHOUSE_USERNAME" envDefault:"default"`
	Password             string   `env:"CLICKHOUSE_PASSWORD" envDefault:""`
	Cluster              string   `env:"CLICKHOUSE_CLUSTER" envDefault:"default"`
	ReportsTable         string   `env:"CLICKHOUSE_REPORTS_TABLE" envDefault:"reduction_reports"`
	Debug                bool     `env:"CLICKHOUSE_DEBUG" envDefault:"false"`
	InsecureSkipVerify   bool     `env:"CLICKHOUSE_INSECURE_SKIP_VERIFY" envDefault:"true"`
	MaxExecutionTime     int      `env:"CLICKHOUSE_MAX_EXECUTION_TIME" envDefault:"60"` // seconds
	DialTimeout          int      `env:"CLICKHOUSE_DIAL_TIMEOUT" envDefault:"30"`       // seconds
	MaxOpenConns         int      `env:"CLICKHOUSE_MAX_OPEN_CONNS" envDefault:"5"`
	MaxIdleConns         int      `env:"CLICKHOUSE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime      int      `env:"CLICKHOUSE_CONN_MAX_LIFETIME" envDefault:"10"` // minutes
	BlockBufferSize      int      `env:"CLICKHOUSE_BLOCK_BUFFER_SIZE" envDefault:"10"`
	MaxBlockSize         int      `env:"CLICKHOUSE_MAX_BLOCK_SIZE" envDefault:"1000"`
	MaxCompressionBuffer int      `env:"CLICKHOUSE_MAX_COMPRESSION_BUFFER" envDefault:"10240"` // bytes
	ClientName           string   `env:"CLICKHOUSE_CLIENT_NAME" envDefault:"readreducer"`
	ClientVersion        string   `env:"CLICKHOUSE_CLIENT_VERSION" envDefault:"1.0"`
}

// LoadConfig reads the ClickHouse settings from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse clickhouse config: %w", err)
	}
	if len(cfg.Hosts) == 0 {
		return Config{}, fmt.Errorf("failed to parse clickhouse config: no hosts")
	}
	return cfg, nil
}
