package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds server configuration. Values are layered: built-in
// defaults, then the YAML config file (if present), then ECHO_*
// environment variables.
type Config struct {
	Listen          string  `yaml:"listen"`
	ListenSecondary string  `yaml:"listen_secondary"`
	ListenTCP       string  `yaml:"listen_tcp"`
	ListenUDP       string  `yaml:"listen_udp"`
	CertFile        string  `yaml:"cert_file"`
	KeyFile         string  `yaml:"key_file"`
	EnableCORS      bool    `yaml:"enable_cors"`
	LogRequests     bool    `yaml:"log_requests"`
	LogHeaders      bool    `yaml:"log_headers"`
	MaxBodySize     int64   `yaml:"max_body_size"`
	PIDFile         string  `yaml:"pid_file"`
	RateLimitRPS    float64 `yaml:"rate_limit_rps"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`

	Metrics MetricsConfig `yaml:"metrics"`
	Chaos   ChaosConfig   `yaml:"chaos"`

	Hostname string `yaml:"-"`
}

// MetricsConfig controls the request statistics store. Bucket count and
// duration are tunable; the defaults give a one-hour window at
// one-minute granularity.
type MetricsConfig struct {
	Enabled       bool `yaml:"enabled"`
	Buckets       int  `yaml:"buckets"`
	BucketSeconds int  `yaml:"bucket_seconds"`
}

func defaultConfig() Config {
	return Config{
		Listen:          "0.0.0.0:8080",
		ListenSecondary: "",
		CertFile:        "server.crt",
		KeyFile:         "server.key",
		EnableCORS:      true,
		LogRequests:     true,
		LogHeaders:      false,
		MaxBodySize:     10485760, // 10MB
		PIDFile:         "chaos-echo-server.pid",
		Metrics: MetricsConfig{
			Enabled:       true,
			Buckets:       60,
			BucketSeconds: 60,
		},
	}
}

// loadConfig builds a Config from defaults, the YAML file at path (if it
// exists), and environment variable overrides. Validation errors are
// returned to the caller and are fatal at startup.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if hostname, _ := os.Hostname(); hostname != "" {
		cfg.Hostname = hostname
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Listen, "ECHO_LISTEN")
	setString(&cfg.ListenSecondary, "ECHO_LISTEN_SECONDARY")
	setString(&cfg.ListenTCP, "ECHO_LISTEN_TCP")
	setString(&cfg.ListenUDP, "ECHO_LISTEN_UDP")
	setString(&cfg.CertFile, "ECHO_CERT_FILE")
	setString(&cfg.KeyFile, "ECHO_KEY_FILE")
	setBool(&cfg.EnableCORS, "ECHO_ENABLE_CORS")
	setBool(&cfg.LogRequests, "ECHO_LOG_REQUESTS")
	setBool(&cfg.LogHeaders, "ECHO_LOG_HEADERS")
	setInt64(&cfg.MaxBodySize, "ECHO_MAX_BODY_SIZE")
	setString(&cfg.PIDFile, "ECHO_PID_FILE")
	setFloat64(&cfg.RateLimitRPS, "ECHO_RATE_LIMIT_RPS")
	setInt(&cfg.RateLimitBurst, "ECHO_RATE_LIMIT_BURST")

	setBool(&cfg.Metrics.Enabled, "ECHO_METRICS_ENABLED")
	setInt(&cfg.Metrics.Buckets, "ECHO_METRICS_BUCKETS")
	setInt(&cfg.Metrics.BucketSeconds, "ECHO_METRICS_BUCKET_SECONDS")

	if v := os.Getenv("ECHO_CHAOS_MODES"); v != "" {
		cfg.Chaos.Modes = splitCSV(v)
	}
	setFloat64(&cfg.Chaos.FailureRate, "ECHO_CHAOS_FAILURE_RATE")
	if v := os.Getenv("ECHO_CHAOS_FAILURE_CODES"); v != "" {
		cfg.Chaos.FailureCodes = parseIntList(v)
	}
	setFloat64(&cfg.Chaos.DelayRate, "ECHO_CHAOS_DELAY_RATE")
	setString(&cfg.Chaos.DelayMs, "ECHO_CHAOS_DELAY_MS")
	setInt(&cfg.Chaos.DelayMaxMs, "ECHO_CHAOS_DELAY_MAX_MS")
	setFloat64(&cfg.Chaos.CorruptionRate, "ECHO_CHAOS_CORRUPTION_RATE")
	setString(&cfg.Chaos.CorruptionKind, "ECHO_CHAOS_CORRUPTION_KIND")
	setBool(&cfg.Chaos.InformHeader, "ECHO_CHAOS_INFORM_HEADER")
}

func (c *Config) validate() error {
	if c.Metrics.Enabled {
		if c.Metrics.Buckets <= 0 {
			return fmt.Errorf("metrics.buckets must be positive, got %d", c.Metrics.Buckets)
		}
		if c.Metrics.BucketSeconds <= 0 {
			return fmt.Errorf("metrics.bucket_seconds must be positive, got %d", c.Metrics.BucketSeconds)
		}
	}
	return c.Chaos.validate()
}

// Environment override helpers: each touches its target only when the
// variable is set, so file/default values survive otherwise.

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "true"
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*dst = i
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = i
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseIntList(s string) []int {
	var out []int
	for _, part := range splitCSV(s) {
		if i, err := strconv.Atoi(part); err == nil {
			out = append(out, i)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
