// Package kafka holds the settings for publishing run events to Kafka.
package kafka

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// PublisherConfig holds the configuration for the completion-event producer.
type PublisherConfig struct {
	BootstrapServers string        `env:"KAFKA_BOOTSTRAP_SERVERS" envDefault:"localhost:9092"`
	Topic            string        `env:"KAFKA_TOPIC"             envDefault:"reduction-events"`
	ClientID         string        `env:"KAFKA_CLIENT_ID"         envDefault:"readreducer"`
	Acks             string        `env:"KAFKA_ACKS"              envDefault:"all"`
	Compression      string        `env:"KAFKA_COMPRESSION"       envDefault:"lz4"`
	MessageTimeout   time.Duration `env:"KAFKA_MESSAGE_TIMEOUT"   envDefault:"30s"`
	FlushTimeout     time.Duration `env:"KAFKA_FLUSH_TIMEOUT"     envDefault:"15s"`
	EnableLogs       bool          `env:"KAFKA_ENABLE_LOGS"       envDefault:"false"` // librdkafka client logs
}

// LoadPublisherConfig reads the producer settings from the environment.
func LoadPublisherConfig() (PublisherConfig, error) {
	var cfg PublisherConfig
	if err := env.Parse(&cfg); err != nil {
		return PublisherConfig{}, fmt.Errorf("failed to parse kafka publisher config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return PublisherConfig{}, err
	}
	return cfg, nil
}

func (c PublisherConfig) Validate() error {
	if c.BootstrapServers == "" {
		return errors.New("invalid kafka config: bootstrap servers must be set")
	}
	if c.Topic == "" {
		return errors.New("invalid kafka config: topic must be set")
	}
	if c.MessageTimeout <= 0 {
		return errors.New("invalid kafka config: message timeout must be positive")
	}
	return nil
}

// ConfigMap builds the librdkafka configuration.
func (c PublisherConfig) ConfigMap() *kafka.ConfigMap {
	return &kafka.ConfigMap{
		"bootstrap.servers":      c.BootstrapServers,
		"client.id":              c.ClientID,
		"acks":                   c.Acks,
		"compression.type":       c.Compression,
		"enable.idempotence":     c.Acks == "all",
		"message.timeout.ms":     int(c.MessageTimeout / time.Millisecond),
		"go.logs.channel.enable": c.EnableLogs,
	}
}
