package config

// ObservabilityConfig controls logging, tracing and metrics.
type ObservabilityConfig struct {
	LogLevel       string // zerolog level name
	LogFormat      string // "json" or "console"
	TracingEnabled bool
	JaegerEndpoint string
	MetricsEnabled bool
}

func LoadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:       envStr("LOG_LEVEL", "info"),
		LogFormat:      envStr("LOG_FORMAT", "json"),
		TracingEnabled: envBool("TRACING_ENABLED", false),
		JaegerEndpoint: envStr("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		MetricsEnabled: envBool("METRICS_ENABLED", true),
	}
}
