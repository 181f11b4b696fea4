package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"smartsaku/internal/core"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Advisor scripts
	AdvisorPython           string
	AdvisorChatScript       string
	AdvisorPredictionScript string
	AdvisorTimeout          time.Duration

	// Savings level thresholds, in whole rupiah
	LevelLowRupiah  int
	LevelHighRupiah int

	// Rate limiting for mutating requests
	RateLimitPerMinute int

	// Summary cache
	SummaryCacheSize int
	SummaryCacheTTL  time.Duration

	// Worker
	InsightInterval time.Duration

	// Backend selection
	DataBackend string
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/smartsaku.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "smartsaku"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "record_events"),

		AdvisorPython:           getEnv("ADVISOR_PYTHON", "python3"),
		AdvisorChatScript:       getEnv("ADVISOR_CHAT_SCRIPT", ""),
		AdvisorPredictionScript: getEnv("ADVISOR_PREDICTION_SCRIPT", ""),
		AdvisorTimeout:          getEnvDuration("ADVISOR_TIMEOUT", 30*time.Second),

		LevelLowRupiah:  getEnvInt("LEVEL_LOW_RUPIAH", 1_000_000),
		LevelHighRupiah: getEnvInt("LEVEL_HIGH_RUPIAH", 5_000_000),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		SummaryCacheSize: getEnvInt("SUMMARY_CACHE_SIZE", 1024),
		SummaryCacheTTL:  getEnvDuration("SUMMARY_CACHE_TTL", 30*time.Second),

		InsightInterval: getEnvDuration("INSIGHT_INTERVAL", 5*time.Minute),

		DataBackend: getEnv("DATA_BACKEND", "memory"),
	}

	return cfg
}

// LevelThresholds converts the configured rupiah tiers into domain money.
func (c *Config) LevelThresholds() core.LevelThresholds {
	return core.LevelThresholds{
		Low:  core.Money{Cents: int64(c.LevelLowRupiah) * 100},
		High: core.Money{Cents: int64(c.LevelHighRupiah) * 100},
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
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
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Advisor scripts are optional, but a configured script file must exist
	for _, script := range []struct{ name, path string }{
		{"advisor chat script", c.AdvisorChatScript},
		{"advisor prediction script", c.AdvisorPredictionScript},
	} {
		if script.path == "" {
			continue
		}
		if _, err := os.Stat(script.path); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("%s does not exist: %s", script.name, script.path))
		}
	}

	if c.AdvisorTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid advisor timeout %v: must be at least 1 second", c.AdvisorTimeout))
	}

	// Validate level thresholds
	if c.LevelLowRupiah < 0 {
		errors = append(errors, fmt.Sprintf("invalid low level threshold %d: must not be negative", c.LevelLowRupiah))
	}
	if c.LevelHighRupiah <= c.LevelLowRupiah {
		errors = append(errors, fmt.Sprintf("invalid level thresholds: high (%d) must be greater than low (%d)", c.LevelHighRupiah, c.LevelLowRupiah))
	}

	// Validate rate limiting
	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	// Validate summary cache
	if c.SummaryCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid summary cache size %d: must be at least 1", c.SummaryCacheSize))
	}
	if c.SummaryCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid summary cache TTL %v: must be at least 1 second", c.SummaryCacheTTL))
	}

	// Validate worker configuration
	if c.InsightInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid insight interval %v: must be at least 1 second", c.InsightInterval))
	} else if c.InsightInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid insight interval %v: must be at most 24 hours", c.InsightInterval))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
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
