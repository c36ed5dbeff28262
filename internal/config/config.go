package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const configPathEnv = "SENTIMENT_CONFIG"

// Config captures runtime configuration for the sentiment API.
type Config struct {
	ListenAddr  string         `yaml:"listenAddr" validate:"required"`
	Environment string         `yaml:"environment" validate:"oneof=development production"`
	LogLevel    string         `yaml:"logLevel" validate:"oneof=debug info warn error"`
	Timezone    string         `yaml:"timezone" validate:"required"`
	FocusMonth  int            `yaml:"focusMonth" validate:"min=0,max=12"`
	CORSOrigins []string       `yaml:"corsOrigins" validate:"min=1"`
	Search      SearchConfig   `yaml:"elasticsearch"`
	location    *time.Location `yaml:"-"`
}

// SearchConfig describes how to reach the search engine.
type SearchConfig struct {
	Addresses    []string      `yaml:"addresses" validate:"min=1,dive,url"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	DefaultIndex string        `yaml:"defaultIndex" validate:"required"`
	Timeout      time.Duration `yaml:"timeout" validate:"gt=0"`
}

// Location is the timezone used for day windows and hour labels.
func (c Config) Location() *time.Location {
	if c.location != nil {
		return c.location
	}
	return time.UTC
}

// Month is the focus month, zero when the filter is disabled.
func (c Config) Month() time.Month {
	return time.Month(c.FocusMonth)
}

// FromEnv builds the configuration from defaults, an optional YAML file named by
// SENTIMENT_CONFIG, and environment variables (a local .env file is loaded first).
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return Config{}, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}
	cfg.location = loc

	return cfg, nil
}

func defaultConfig() Config {
	return Config{
		ListenAddr:  ":8080",
		Environment: "development",
		LogLevel:    "info",
		Timezone:    "Asia/Jakarta",
		FocusMonth:  int(time.April),
		CORSOrigins: []string{"*"},
		Search: SearchConfig{
			Addresses:    []string{"http://localhost:9200"},
			DefaultIndex: "news_2025.04",
			Timeout:      30 * time.Second,
		},
	}
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	// Decoding over the defaults keeps every key the file leaves out.
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.ListenAddr = getEnv("SENTIMENT_LISTEN_ADDR", c.ListenAddr)
	c.Environment = getEnv("SENTIMENT_ENV", c.Environment)
	c.LogLevel = strings.ToLower(getEnv("SENTIMENT_LOG_LEVEL", c.LogLevel))
	c.Timezone = getEnv("SENTIMENT_TIMEZONE", c.Timezone)
	c.Search.Username = getEnv("ELASTICSEARCH_USER", c.Search.Username)
	c.Search.Password = getEnv("ELASTICSEARCH_PASSWORD", c.Search.Password)
	c.Search.DefaultIndex = getEnv("ELASTICSEARCH_DEFAULT_INDEX", c.Search.DefaultIndex)

	if hosts := os.Getenv("ELASTICSEARCH_HOST"); hosts != "" {
		c.Search.Addresses = splitList(hosts)
	}

	if origins := os.Getenv("SENTIMENT_CORS_ORIGINS"); origins != "" {
		c.CORSOrigins = splitList(origins)
	}

	if month := os.Getenv("SENTIMENT_FOCUS_MONTH"); month != "" {
		parsed, err := strconv.Atoi(month)
		if err != nil {
			return fmt.Errorf("parse SENTIMENT_FOCUS_MONTH: %w", err)
		}
		c.FocusMonth = parsed
	}

	if timeout := os.Getenv("ELASTICSEARCH_TIMEOUT"); timeout != "" {
		parsed, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("parse ELASTICSEARCH_TIMEOUT: %w", err)
		}
		c.Search.Timeout = parsed
	}

	return nil
}

var validate = validator.New()

// Validate checks field constraints and reports every violation in one error.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate config: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "min", "max", "gt":
		return fmt.Sprintf("%s must be %s %s", field, fe.Tag(), fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a URL, got %v", field, fe.Value())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
