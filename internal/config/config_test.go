package config

import (
	"testing"
	"time"
)

func TestLoadRateLimitConfig(t *testing.T) {
	tests := []struct {
		name         string
		env          map[string]string
		wantCapacity int
		wantRefill   int
		wantInterval time.Duration
		wantTTL      time.Duration
	}{
		{
			name:         "defaults",
			env:          map[string]string{},
			wantCapacity: 60,
			wantRefill:   1,
			wantInterval: time.Second,
			wantTTL:      10 * time.Minute,
		},
		{
			name:         "burst overrides capacity",
			env:          map[string]string{"RATE_LIMIT_BURST": "5"},
			wantCapacity: 5,
			wantRefill:   1,
			wantInterval: time.Second,
			wantTTL:      10 * time.Minute,
		},
		{
			name: "refill every forces one token and ttl floor",
			env: map[string]string{
				"RATE_LIMIT_REFILL_TOKENS": "7",
				"RATE_LIMIT_REFILL_EVERY":  "1m",
				"RATE_LIMIT_TTL":           "1s",
			},
			wantCapacity: 60,
			wantRefill:   1,
			wantInterval: time.Minute,
			wantTTL:      5 * time.Minute,
		},
		{
			name:         "invalid values are clamped",
			env:          map[string]string{"RATE_LIMIT_CAPACITY": "0", "RATE_LIMIT_REFILL_TOKENS": "-3"},
			wantCapacity: 1,
			wantRefill:   1,
			wantInterval: time.Second,
			wantTTL:      10 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			got := LoadRateLimitConfig()
			if got.Capacity != tt.wantCapacity {
				t.Errorf("Capacity = %d, want %d", got.Capacity, tt.wantCapacity)
			}
			if got.RefillTokens != tt.wantRefill {
				t.Errorf("RefillTokens = %d, want %d", got.RefillTokens, tt.wantRefill)
			}
			if got.RefillInterval != tt.wantInterval {
				t.Errorf("RefillInterval = %v, want %v", got.RefillInterval, tt.wantInterval)
			}
			if got.TTL != tt.wantTTL {
				t.Errorf("TTL = %v, want %v", got.TTL, tt.wantTTL)
			}
		})
	}
}

func TestLoadCacheConfigMethods(t *testing.T) {
	t.Setenv("CACHE_METHODS", " get, head ,,")
	cfg := LoadCacheConfig()
	if !cfg.Methods["GET"] || !cfg.Methods["HEAD"] {
		t.Errorf("Methods = %v, want GET and HEAD", cfg.Methods)
	}
	if len(cfg.Methods) != 2 {
		t.Errorf("len(Methods) = %d, want 2", len(cfg.Methods))
	}
}

func TestLoadCryptoConfig(t *testing.T) {
	t.Setenv("ENCRYPTION_KEYS", "v2:abcd, bad ,v3:ef01")
	t.Setenv("ENCRYPTION_KEY", "legacy")
	t.Setenv("ENCRYPTION_ACTIVE_KEY", "v3")

	cfg := LoadCryptoConfig()
	if len(cfg.Keys) != 3 {
		t.Fatalf("Keys = %v, want 3 entries", cfg.Keys)
	}
	if cfg.Keys["v1"] != "legacy" {
		t.Errorf("Keys[v1] = %q, want legacy", cfg.Keys["v1"])
	}
	if cfg.ActiveKeyID != "v3" {
		t.Errorf("ActiveKeyID = %q, want v3", cfg.ActiveKeyID)
	}
	if cfg.FingerprintKey != "ef01" {
		t.Errorf("FingerprintKey = %q, want active key", cfg.FingerprintKey)
	}
}

func TestLoadRedisConfigHostPortWins(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6380")
	if got := LoadRedisConfig().Addr; got != "redis:6380" {
		t.Errorf("Addr = %q, want redis:6380", got)
	}
}

func TestLoadEventsConfigKafkaBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	cfg := LoadEventsConfig()
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Errorf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
	if cfg.Broker != "rabbitmq" {
		t.Errorf("Broker = %q, want rabbitmq", cfg.Broker)
	}
}
