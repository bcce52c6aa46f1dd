// Package config loads the dashboard service configuration from .env files, an optional
// YAML file and the environment, in that order of increasing precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ciaa/ciaa-dashboard/util"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// DefaultAPIURL is the public issue backend.
const DefaultAPIURL = "https://ciaa-backend.vercel.app"

// Config is the complete service configuration.
type Config struct {
	APIURL               string        `yaml:"api_url"`
	ListenAddr           string        `yaml:"listen_addr"`
	CORSAllowOrigins     string        `yaml:"cors_allow_origins"`
	LogLevel             string        `yaml:"log_level"`
	PageLimit            int           `yaml:"page_limit"`
	SessionIdleTimeout   time.Duration `yaml:"session_idle_timeout"`
	UpstreamProbeTimeout time.Duration `yaml:"upstream_probe_timeout"`
	Kafka                KafkaConfig   `yaml:"kafka"`
}

// KafkaConfig configures the optional issue event consumer.
type KafkaConfig struct {
	Brokers   []string `yaml:"brokers"`
	Topic     string   `yaml:"topic"`
	GroupID   string   `yaml:"group_id"`
	APIKey    string   `yaml:"api_key"`
	APISecret string   `yaml:"api_secret"`
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		APIURL:               DefaultAPIURL,
		ListenAddr:           ":3000",
		CORSAllowOrigins:     "*",
		LogLevel:             "info",
		PageLimit:            10,
		SessionIdleTimeout:   30 * time.Minute,
		UpstreamProbeTimeout: 30 * time.Second,
		Kafka: KafkaConfig{
			Topic:   "issue-events",
			GroupID: "ciaa-dashboard",
		},
	}
}

// Load reads .env files from the working directory, then the YAML file named by
// DASHBOARD_CONFIG when set, then environment variables.
func Load() (Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	cfg := Default()
	if path := os.Getenv("DASHBOARD_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.APIURL = util.GetEnvDefault("CIAA_API_URL", c.APIURL)
	c.ListenAddr = util.GetEnvDefault("LISTEN_ADDR", c.ListenAddr)
	c.CORSAllowOrigins = util.GetEnvDefault("CORS_ALLOW_ORIGINS", c.CORSAllowOrigins)
	c.LogLevel = util.GetEnvDefault("LOG_LEVEL", c.LogLevel)

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		c.Kafka.Brokers = util.SplitCSV(brokers)
	}
	c.Kafka.Topic = util.GetEnvDefault("KAFKA_TOPIC", c.Kafka.Topic)
	c.Kafka.GroupID = util.GetEnvDefault("KAFKA_GROUP_ID", c.Kafka.GroupID)
	c.Kafka.APIKey = util.GetEnvDefault("KAFKA_API_KEY", c.Kafka.APIKey)
	c.Kafka.APISecret = util.GetEnvDefault("KAFKA_API_SECRET", c.Kafka.APISecret)

	var err error
	if c.PageLimit, err = envInt("PAGE_LIMIT", c.PageLimit); err != nil {
		return err
	}
	if c.SessionIdleTimeout, err = envDuration("SESSION_IDLE_TIMEOUT", c.SessionIdleTimeout); err != nil {
		return err
	}
	if c.UpstreamProbeTimeout, err = envDuration("UPSTREAM_PROBE_TIMEOUT", c.UpstreamProbeTimeout); err != nil {
		return err
	}
	return nil
}

// Validate checks values that would otherwise fail later.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return fmt.Errorf("invalid config: api url is empty")
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("invalid config: api url %q must start with http:// or https://", c.APIURL)
	}
	if c.PageLimit <= 0 {
		return fmt.Errorf("invalid config: page limit must be positive, got %d", c.PageLimit)
	}
	return nil
}

func envInt(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
