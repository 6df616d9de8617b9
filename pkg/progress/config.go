package progress

import "time"

// Config holds the configuration for the progress reporter.
type Config struct {
	Interval      time.Duration // Interval between reports
	ReportTimeout time.Duration // Timeout for each report
	MaxRetries    int           // Maximum number of retry attempts for failed reports
	RetryBackoff  time.Duration // Backoff duration between retry attempts
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:      30 * time.Second,
		ReportTimeout: 1 * time.Second,
		MaxRetries:    3,
		RetryBackoff:  300 * time.Millisecond,
	}
}
