package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef")

	cfg, err := Load("testdata/missing.env")
	require.NoError(t, err)
	assert.Equal(t, "station-pos", cfg.ServiceName)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 3, cfg.MaxNumberAttempts)
	assert.True(t, cfg.AutoApplyPromotions)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.KafkaEnabled())
	assert.False(t, cfg.RedisEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("AUTO_APPLY_PROMOTIONS", "false")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load("testdata/missing.env")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.True(t, cfg.RedisEnabled())
	assert.False(t, cfg.AutoApplyPromotions)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_Rejections(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}},
		{"short secret", map[string]string{"JWT_SECRET": "short"}},
		{"unknown driver", map[string]string{"JWT_SECRET": "0123456789abcdef", "STORE_DRIVER": "mysql"}},
		{"zero attempts", map[string]string{"JWT_SECRET": "0123456789abcdef", "MAX_NUMBER_ATTEMPTS": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("testdata/missing.env")
			assert.Error(t, err)
		})
	}
}
