package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SubscriptionConfig holds the settings for the tag subscription and the
// aggregation behaviour of the pipeline.
type SubscriptionConfig struct {
	// TagFile is the path of the tag list file, one tag identifier per line.
	TagFile string `yaml:"tag_file"`
	// AggregateRecords merges change events sharing a timestamp into a
	// single wide row when true; otherwise each event passes through 1:1.
	AggregateRecords bool `yaml:"aggregate_records"`
	// NotifyOnTimestampOnlyChange delivers events whose value is unchanged
	// from the previous notification for the same tag.
	NotifyOnTimestampOnlyChange bool `yaml:"notify_on_ts_change"`
	// MinPublishIntervalMs is the minimum publish interval of subscription
	// notification messages. It also serves as the staleness threshold for
	// flushing partial rows. Must be positive.
	MinPublishIntervalMs int64 `yaml:"min_publish_interval_ms"`
	// DrainIntervalMs is the cadence of the drain/flush cycle.
	DrainIntervalMs int64 `yaml:"drain_interval_ms"`
}

// QueueConfig bounds the inbound event queue.
type QueueConfig struct {
	Capacity int `yaml:"capacity"`
}

// NATSConfig holds the connection details of the telemetry transport.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// CSVSinkConfig configures the file sink for finished records.
type CSVSinkConfig struct {
	Enabled  bool   `yaml:"enabled"`
	RootPath string `yaml:"root_path"`
}

// ClickHouseConfig holds the connection details for the ClickHouse sink and
// the query API.
type ClickHouseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SinksConfig groups the configured record sinks. FailurePath is where
// records whose delivery failed are written so they never vanish unobserved.
type SinksConfig struct {
	CSV         CSVSinkConfig    `yaml:"csv"`
	ClickHouse  ClickHouseConfig `yaml:"clickhouse"`
	FailurePath string           `yaml:"failure_path"`
}

// AlerterRule defines a single threshold rule over a pipeline counter.
type AlerterRule struct {
	Metric    string `yaml:"metric"`
	Threshold uint64 `yaml:"threshold"`
}

// AlerterConfig holds the configuration for the pipeline alerter.
type AlerterConfig struct {
	Enabled       bool          `yaml:"enabled"`
	CheckInterval string        `yaml:"check_interval"`
	Rules         []AlerterRule `yaml:"rules"`
}

// SMTPConfig holds the settings for the email notifier.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

// APIConfig holds the settings for the HTTP query API.
type APIConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Subscription SubscriptionConfig `yaml:"subscription"`
	Queue        QueueConfig        `yaml:"queue"`
	NATS         NATSConfig         `yaml:"nats"`
	Sinks        SinksConfig        `yaml:"sinks"`
	Alerter      AlerterConfig      `yaml:"alerter"`
	SMTP         SMTPConfig         `yaml:"smtp"`
	API          APIConfig          `yaml:"api"`
}

// LoadConfig reads the configuration from a YAML file and returns a Config
// struct with defaults applied and validated.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Defaults are set before unmarshalling so that omitted keys keep them.
	cfg := Config{
		Subscription: SubscriptionConfig{
			NotifyOnTimestampOnlyChange: true,
			MinPublishIntervalMs:        1000,
			DrainIntervalMs:             100,
		},
		Queue: QueueConfig{Capacity: 65536},
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	if cfg.Subscription.TagFile == "" {
		return nil, fmt.Errorf("subscription.tag_file must be set")
	}
	if cfg.Subscription.MinPublishIntervalMs <= 0 {
		return nil, fmt.Errorf("subscription.min_publish_interval_ms must be positive")
	}
	if cfg.Subscription.DrainIntervalMs <= 0 {
		return nil, fmt.Errorf("subscription.drain_interval_ms must be positive")
	}
	if cfg.Queue.Capacity <= 0 {
		return nil, fmt.Errorf("queue.capacity must be positive")
	}

	return &cfg, nil
}
