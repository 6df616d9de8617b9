package clickhouse

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"
)

// Client wraps the ClickHouse connection
type Client interface {
	Conn() driver.Conn
	Ping(ctx context.Context) error
	Close() error
}

const (
	maxExecutionTime = "max_execution_time"
	maxBlockSize     = "max_block_size"
)

const defaultPingTimeout = 10 * time.Second

type client struct {
	conn driver.Conn
	log  *zap.SugaredLogger
}

// NewWithConn wraps an already open connection.
func NewWithConn(conn driver.Conn, log *zap.SugaredLogger) Client {
	return &client{conn: conn, log: log}
}

// New opens a connection and pings it. A failed ping is returned as an error so the
// caller can decide whether reports are optional.
func New(cfg Config, log *zap.SugaredLogger) (Client, error) {
	opts := &clickhouse.Options{
		Addr: cfg.Hosts,
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialContext: func(ctx context.Context, addr string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "tcp", addr)
		},
		Settings: clickhouse.Settings{
			maxExecutionTime: cfg.MaxExecutionTime,
			maxBlockSize:     cfg.MaxBlockSize,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		DialTimeout:          time.Duration(cfg.DialTimeout) * time.Second,
		MaxOpenConns:         cfg.MaxOpenConns,
		MaxIdleConns:         cfg.MaxIdleConns,
		ConnMaxLifetime:      time.Duration(cfg.ConnMaxLifetime) * time.Minute,
		ConnOpenStrategy:     clickhouse.ConnOpenInOrder,
		BlockBufferSize:      uint8(cfg.BlockBufferSize),
		MaxCompressionBuffer: cfg.MaxCompressionBuffer,
		ClientInfo: clickhouse.ClientInfo{
			Products: []struct {
				Name    string
				Version string
			}{
				{Name: cfg.ClientName, Version: cfg.ClientVersion},
			},
		},
		TLS: &tls.Config{
			//nolint:gosec // configurable for local clusters
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
	}
	if cfg.Debug && log != nil {
		opts.Debugf = log.Debugf
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open ClickHouse connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultPingTimeout)
	defer cancel()
	if err := conn.Ping(ctx); err != nil {
		if log != nil {
			var exception *clickhouse.Exception
			if errors.As(err, &exception) {
				log.Errorw("failed to ping ClickHouse", "code", exception.Code, "error", exception.Message)
			} else {
				log.Errorw("failed to ping ClickHouse", "error", err)
			}
		}
		_ = conn.Close()
		return nil, err
	}

	return &client{conn: conn, log: log}, nil
}

func (c *client) Conn() driver.Conn {
	return c.conn
}

func (c *client) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *client) Close() error {
	return c.conn.Close()
}
