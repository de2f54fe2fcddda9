package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type CaptureLevel string

const (
	LevelNone    CaptureLevel = "none"
	LevelBasic   CaptureLevel = "basic"
	LevelHeaders CaptureLevel = "headers"
	LevelBody    CaptureLevel = "body"
)

func ParseCaptureLevel(s string) (CaptureLevel, error) {
	switch CaptureLevel(strings.ToLower(strings.TrimSpace(s))) {
	case LevelNone:
		return LevelNone, nil
	case LevelBasic:
		return LevelBasic, nil
	case LevelHeaders:
		return LevelHeaders, nil
	case LevelBody:
		return LevelBody, nil
	default:
		return "", fmt.Errorf("unknown capture level: %q", s)
	}
}

func (l CaptureLevel) CapturesHeaders() bool {
	return l == LevelHeaders || l == LevelBody
}

func (l CaptureLevel) CapturesBody() bool {
	return l == LevelBody
}

const (
	DefaultMaxBodyBytes  = 64 * 1024
	MaxBodyBytesCeiling  = 1 << 20
	DefaultRetentionDays = 30
	MaxRetentionDays     = 365
)

type Config struct {
	APIKey        string       `yaml:"api_key"`
	Enabled       bool         `yaml:"enabled"`
	Level         CaptureLevel `yaml:"level"`
	MongoURL      string       `yaml:"mongo_url"`
	Database      string       `yaml:"database"`
	MaxBodyBytes  int64        `yaml:"max_body_bytes"`
	RetentionDays int          `yaml:"retention_days"`
	RedactHeaders []string     `yaml:"redact_headers"`
	UseKafka      bool         `yaml:"use_kafka"`
	KafkaTopic    string       `yaml:"kafka_topic"`
	Tags          []string     `yaml:"tags"`
}

func Default() *Config {
	return &Config{
		Enabled:       true,
		Level:         LevelBasic,
		Database:      "traffic_logs",
		MaxBodyBytes:  DefaultMaxBodyBytes,
		RetentionDays: DefaultRetentionDays,
		RedactHeaders: []string{"Authorization", "Cookie", "Set-Cookie", "Proxy-Authorization"},
		KafkaTopic:    "traffic_logs",
	}
}

// Load reads configuration from the environment. A .env file is applied first
// when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	cfg := Default()
	cfg.APIKey = os.Getenv("TRAFFIC_LOG_API_KEY")
	if v := os.Getenv("MONGODB_URL"); v != "" {
		cfg.MongoURL = v
	}
	if v := os.Getenv("MONGODB_DATABASE"); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv("TRAFFIC_LOG_LEVEL"); v != "" {
		level, err := ParseCaptureLevel(v)
		if err != nil {
			return nil, err
		}
		cfg.Level = level
	}
	if v := os.Getenv("TRAFFIC_LOG_ENABLED"); v != "" {
		cfg.Enabled = v == "true"
	}
	if v := os.Getenv("TRAFFIC_LOG_MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TRAFFIC_LOG_MAX_BODY_BYTES: %w", err)
		}
		cfg.MaxBodyBytes = n
	}
	if v := os.Getenv("TRAFFIC_LOG_RETENTION_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TRAFFIC_LOG_RETENTION_DAYS: %w", err)
		}
		cfg.RetentionDays = n
	}
	if v := os.Getenv("TRAFFIC_LOG_REDACT_HEADERS"); v != "" {
		cfg.RedactHeaders = splitList(v)
	}
	if v := os.Getenv("TRAFFIC_LOG_TAGS"); v != "" {
		cfg.Tags = splitList(v)
	}
	cfg.UseKafka = os.Getenv("USE_KAFKA") == "true"
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		cfg.KafkaTopic = v
	}

	cfg.Clamp()
	return cfg, nil
}

// LoadFile reads a YAML configuration file on top of the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg.Clamp()
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("api key must not be blank")
	}
	if _, err := ParseCaptureLevel(string(c.Level)); err != nil {
		return err
	}
	if c.UseKafka && c.KafkaTopic == "" {
		return fmt.Errorf("kafka topic must not be blank when kafka export is enabled")
	}
	return nil
}

// ValidateStore is the extra check for processes that open the document store
// themselves; the logger façade only needs Validate.
func (c *Config) ValidateStore() error {
	if c.MongoURL == "" {
		return fmt.Errorf("mongo url must not be blank")
	}
	if c.Database == "" {
		return fmt.Errorf("database must not be blank")
	}
	return nil
}

// Clamp forces numeric knobs into their supported ranges instead of failing.
func (c *Config) Clamp() {
	if c.MaxBodyBytes < 0 {
		c.MaxBodyBytes = 0
	}
	if c.MaxBodyBytes > MaxBodyBytesCeiling {
		c.MaxBodyBytes = MaxBodyBytesCeiling
	}
	if c.RetentionDays < 1 {
		c.RetentionDays = 1
	}
	if c.RetentionDays > MaxRetentionDays {
		c.RetentionDays = MaxRetentionDays
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
