// Package config loads runtime configuration from the environment,
// following the same env-var-driven bootstrap the teacher uses instead
// of a config file or flag parser.
package config

import (
	"os"
	"strconv"
)

// Config holds every environment-tunable knob the server reads at
// startup.
type Config struct {
	Port            string
	TelegramBotToken string
	KafkaBrokers    []string
	KafkaTopic      string
	PostgresDSN     string
	MetricsEnabled  bool
}

// FromEnv builds a Config from the process environment, applying the
// same defaults the server would need to run standalone in dev.
func FromEnv() Config {
	return Config{
		Port:             getenv("PORT", "8080"),
		TelegramBotToken: os.Getenv("TELEGRAM_TOKEN"),
		KafkaBrokers:     splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:       getenv("KAFKA_TOPIC", "poker.hand_events"),
		PostgresDSN:      os.Getenv("POSTGRES_DSN"),
		MetricsEnabled:   getBool("METRICS_ENABLED", true),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(v); i++ {
		if i == len(v) || v[i] == ',' {
			if i > start {
				out = append(out, v[start:i])
			}
			start = i + 1
		}
	}
	return out
}
