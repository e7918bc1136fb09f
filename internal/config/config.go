package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	applog "habits/internal/log"
)

type Config struct {
	// Summary API
	SummaryAPIURL     string
	SummaryAPIToken   string
	HTTPClientTimeout time.Duration

	// Calendar
	CalendarTimezone string
	MinimumGridSize  int

	// AMQP
	AMQPURL           string
	AMQPExchange      string
	AMQPScreenQueue   string
	AMQPNavigationKey string

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		SummaryAPIURL:     getEnv("SUMMARY_API_URL", "http://localhost:3333"),
		SummaryAPIToken:   getEnv("SUMMARY_API_TOKEN", ""),
		HTTPClientTimeout: getEnvDuration("HTTP_CLIENT_TIMEOUT", 30*time.Second),

		CalendarTimezone: getEnv("CALENDAR_TIMEZONE", "Local"),
		MinimumGridSize:  getEnvInt("MINIMUM_GRID_SIZE", 18*4),

		AMQPURL:           getEnv("AMQP_URL", ""),
		AMQPExchange:      getEnv("AMQP_EXCHANGE", "habits"),
		AMQPScreenQueue:   getEnv("AMQP_SCREEN_QUEUE", "home_screen_events"),
		AMQPNavigationKey: getEnv("AMQP_NAVIGATION_KEY", "navigation"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate summary API URL
	if c.SummaryAPIURL == "" {
		errors = append(errors, "summary API URL cannot be empty")
	} else if parsedURL, err := url.Parse(c.SummaryAPIURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid summary API URL '%s': %v", c.SummaryAPIURL, err))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid summary API URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	}

	if c.HTTPClientTimeout < 0 {
		errors = append(errors, fmt.Sprintf("invalid HTTP client timeout %v: must not be negative", c.HTTPClientTimeout))
	}

	// Validate calendar settings
	if _, err := c.Location(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid calendar timezone '%s': %v", c.CalendarTimezone, err))
	}
	if c.MinimumGridSize < 0 {
		errors = append(errors, fmt.Sprintf("invalid minimum grid size %d: must not be negative", c.MinimumGridSize))
	} else if c.MinimumGridSize > 366*2 {
		errors = append(errors, fmt.Sprintf("invalid minimum grid size %d: must be at most %d", c.MinimumGridSize, 366*2))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPScreenQueue == "" {
			errors = append(errors, "AMQP screen queue name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPNavigationKey == "" {
			errors = append(errors, "AMQP navigation routing key cannot be empty when AMQP URL is provided")
		}
	}

	if _, err := applog.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Location resolves CalendarTimezone. Calendar-day equality is evaluated in
// this location.
func (c *Config) Location() (*time.Location, error) {
	if c.CalendarTimezone == "" || c.CalendarTimezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.CalendarTimezone)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
