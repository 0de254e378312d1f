// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Server   ServerConfig            `mapstructure:"server"`
	GenAI    GenAIConfig             `mapstructure:"genai"`
	Gateway  GatewayConfig           `mapstructure:"gateway"`
	Pending  PendingConfig           `mapstructure:"pending"`
	Database DatabaseConfig          `mapstructure:"database"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Actions  map[string]ActionConfig `mapstructure:"actions"`
	Logging  LoggingConfig           `mapstructure:"logging"`
	Tracing  TracingConfig           `mapstructure:"tracing"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds, 0 = none
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
	MaxUploadBytes  int64  `mapstructure:"max_upload_bytes"`
	MetricsPath     string `mapstructure:"metrics_path"`
}

// GenAIConfig selects and configures the inference model behind every action.
type GenAIConfig struct {
	Provider    string  `mapstructure:"provider"` // gemini | http
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds, transport-level
}

// GatewayConfig holds settings shared by all actions.
type GatewayConfig struct {
	Timeout int `mapstructure:"timeout"` // milliseconds, 0 = unbounded
}

type PendingConfig struct {
	Backend   string `mapstructure:"backend"` // memory | redis
	TTL       int    `mapstructure:"ttl"`     // milliseconds
	KeyPrefix string `mapstructure:"key_prefix"`
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	UsePlaintext   bool   `mapstructure:"use_plaintext"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
	ResultVariable string `mapstructure:"result_variable"`
}

// ActionConfig holds the per-action overrides.
type ActionConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Timeout       int    `mapstructure:"timeout"` // milliseconds, 0 = gateway default
	TaskType      string `mapstructure:"task_type"`
	MaxJobsActive int    `mapstructure:"max_jobs_active"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type TracingConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	CollectorEndpoint string  `mapstructure:"collector_endpoint"`
	SampleRatio       float64 `mapstructure:"sample_ratio"`
}
