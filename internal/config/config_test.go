package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "TELEGRAM_TOKEN", "KAFKA_BROKERS", "KAFKA_TOPIC", "POSTGRES_DSN", "METRICS_ENABLED"} {
		require.NoError(t, os.Unsetenv(key))
	}

	cfg := FromEnv()
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "poker.hand_events", cfg.KafkaTopic)
	require.Empty(t, cfg.KafkaBrokers)
	require.Empty(t, cfg.PostgresDSN)
	require.True(t, cfg.MetricsEnabled)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "broker-a:9092,broker-b:9092")
	t.Setenv("METRICS_ENABLED", "false")

	cfg := FromEnv()
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, []string{"broker-a:9092", "broker-b:9092"}, cfg.KafkaBrokers)
	require.False(t, cfg.MetricsEnabled)
}

func TestSplitCSVIgnoresEmptySegments(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, splitCSV("a,,b,"))
	require.Nil(t, splitCSV(""))
}
