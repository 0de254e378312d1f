// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProviderGemini = "gemini"
	ProviderHTTP   = "http"

	PendingBackendMemory = "memory"
	PendingBackendRedis  = "redis"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top
// and applies environment overrides. A missing base file is not an error.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every scalar key so AutomaticEnv can override it
// even when the YAML file omits it (GENAI_PROVIDER, SERVER_ADDRESS, ...).
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "accreditation-gateway")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 15000)
	v.SetDefault("server.write_timeout", 0)
	v.SetDefault("server.shutdown_timeout", 10000)
	v.SetDefault("server.max_upload_bytes", 10<<20)
	v.SetDefault("server.metrics_path", "/metrics")

	v.SetDefault("genai.provider", ProviderGemini)
	v.SetDefault("genai.base_url", "")
	v.SetDefault("genai.api_key", "")
	v.SetDefault("genai.model", "gemini-2.0-flash")
	v.SetDefault("genai.temperature", 0.0)
	v.SetDefault("genai.timeout", 0)

	v.SetDefault("gateway.timeout", 0)

	v.SetDefault("pending.backend", PendingBackendMemory)
	v.SetDefault("pending.ttl", 300000)
	v.SetDefault("pending.key_prefix", "gateway:pending:")

	v.SetDefault("database.redis.address", "")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)

	v.SetDefault("camunda.enabled", false)
	v.SetDefault("camunda.broker_address", "")
	v.SetDefault("camunda.use_plaintext", true)
	v.SetDefault("camunda.max_jobs_active", 10)
	v.SetDefault("camunda.timeout", 300000)
	v.SetDefault("camunda.request_timeout", 30000)
	v.SetDefault("camunda.result_variable", "actionResult")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.collector_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("tracing.sample_ratio", 1.0)
}

// loadEnvFile loads the first .env found walking up towards the module root.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders left in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills credentials from the variable names the
// prompt tooling conventionally reads.
func overrideEmptyConfig(cfg *Config) {
	if cfg.GenAI.APIKey == "" {
		for _, name := range []string{"GENAI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"} {
			if val := os.Getenv(name); val != "" {
				cfg.GenAI.APIKey = val
				break
			}
		}
	}

	if cfg.Database.Redis.Address == "" {
		if val := os.Getenv("REDIS_URL"); val != "" {
			cfg.Database.Redis.Address = strings.TrimPrefix(val, "redis://")
		}
	}
}

// applyDefaults sets default values viper cannot express, such as the
// per-action map entries.
func applyDefaults(cfg *Config) {
	if cfg.Actions == nil {
		cfg.Actions = map[string]ActionConfig{}
	}
	for key, action := range cfg.Actions {
		if action.MaxJobsActive == 0 {
			action.MaxJobsActive = cfg.Camunda.MaxJobsActive
		}
		cfg.Actions[key] = action
	}

	cfg.GenAI.Provider = strings.ToLower(strings.TrimSpace(cfg.GenAI.Provider))
	cfg.Pending.Backend = strings.ToLower(strings.TrimSpace(cfg.Pending.Backend))
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	switch cfg.GenAI.Provider {
	case ProviderGemini:
	case ProviderHTTP:
		if cfg.GenAI.BaseURL == "" {
			return fmt.Errorf("genai.base_url is required for the http provider")
		}
	default:
		return fmt.Errorf("genai.provider must be %q or %q, got %q", ProviderGemini, ProviderHTTP, cfg.GenAI.Provider)
	}

	if cfg.GenAI.Temperature < 0 || cfg.GenAI.Temperature > 2 {
		return fmt.Errorf("genai.temperature must be within [0, 2]")
	}

	if cfg.Gateway.Timeout < 0 {
		return fmt.Errorf("gateway.timeout must not be negative")
	}
	for name, action := range cfg.Actions {
		if action.Timeout < 0 {
			return fmt.Errorf("actions.%s.timeout must not be negative", name)
		}
	}

	switch cfg.Pending.Backend {
	case PendingBackendMemory:
	case PendingBackendRedis:
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required for the redis pending backend")
		}
	default:
		return fmt.Errorf("pending.backend must be %q or %q, got %q", PendingBackendMemory, PendingBackendRedis, cfg.Pending.Backend)
	}
	if cfg.Pending.TTL <= 0 {
		return fmt.Errorf("pending.ttl must be positive")
	}

	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}

	if cfg.Tracing.Enabled && cfg.Tracing.CollectorEndpoint == "" {
		return fmt.Errorf("tracing.collector_endpoint is required when tracing is enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetActionConfig retrieves action-specific configuration with fallback to defaults
func GetActionConfig(cfg *Config, actionName string) ActionConfig {
	if action, exists := cfg.Actions[actionName]; exists {
		return action
	}

	return ActionConfig{
		Enabled:       true,
		MaxJobsActive: cfg.Camunda.MaxJobsActive,
	}
}

// IsActionEnabled reports whether an action is served; unlisted actions are.
func IsActionEnabled(cfg *Config, actionName string) bool {
	if action, exists := cfg.Actions[actionName]; exists {
		return action.Enabled
	}
	return true
}

// ActionTimeout resolves the effective invocation timeout for an action:
// the per-action value when set, else the gateway-wide value. Zero means
// the invocation is bounded only by the caller's context.
func ActionTimeout(cfg *Config, actionName string) time.Duration {
	if action, exists := cfg.Actions[actionName]; exists && action.Timeout > 0 {
		return GetDuration(action.Timeout)
	}
	return GetDuration(cfg.Gateway.Timeout)
}
