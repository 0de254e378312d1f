// pkg/registry/schema.go
package registry

import "accreditation-gateway/internal/common/validation"

// ActionRegistry describes every action a gateway instance serves.
type ActionRegistry struct {
	Version     string   `json:"version" yaml:"version"`
	LastUpdated string   `json:"lastUpdated" yaml:"lastUpdated"`
	Actions     []Action `json:"actions" yaml:"actions"`
}

type Action struct {
	ID           string                `json:"id" yaml:"id"`
	DisplayName  string                `json:"displayName" yaml:"displayName"`
	TaskType     string                `json:"taskType" yaml:"taskType"`
	Route        string                `json:"route" yaml:"route"`
	InputSchema  validation.JSONSchema `json:"inputSchema" yaml:"inputSchema"`
	OutputSchema validation.JSONSchema `json:"outputSchema" yaml:"outputSchema"`
	ErrorCodes   []string              `json:"errorCodes" yaml:"errorCodes"`
	// Timeout is empty when invocations are bounded only by the caller.
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}
