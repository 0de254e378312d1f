package documentsuggestion

import (
	"fmt"
	"time"

	"accreditation-gateway/internal/common/validation"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	TaskType      string        `mapstructure:"task_type"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		TaskType:      TaskType,
		MaxJobsActive: 5,
	}
}

func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	return validation.ValidateTaskType(c.TaskType)
}
