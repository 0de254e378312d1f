// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	apperrors "accreditation-gateway/internal/common/errors"
	"accreditation-gateway/internal/gateway"

	"gopkg.in/yaml.v3"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"

	RoutePrefix = "/api/actions/"
)

// ErrorCodes lists the codes any action may report.
var ErrorCodes = []string{
	string(apperrors.ErrCodeInputParsingFailed),
	string(apperrors.ErrCodeValidationFailed),
	string(apperrors.ErrCodeInvocationFailed),
	string(apperrors.ErrCodeInvocationTimeout),
	string(apperrors.ErrCodeOutputInvalid),
	string(apperrors.ErrCodeActionPending),
}

// Build describes runners in the order given.
func Build(version string, runners []gateway.Runner) *ActionRegistry {
	reg := &ActionRegistry{
		Version:     version,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Actions:     make([]Action, 0, len(runners)),
	}
	for _, r := range runners {
		reg.Actions = append(reg.Actions, Describe(r))
	}
	return reg
}

func Describe(r gateway.Runner) Action {
	a := Action{
		ID:           r.Name(),
		DisplayName:  displayName(r.Name()),
		TaskType:     r.TaskType(),
		Route:        RoutePrefix + r.Name(),
		InputSchema:  r.InputSchema(),
		OutputSchema: r.OutputSchema(),
		ErrorCodes:   append([]string(nil), ErrorCodes...),
	}
	if r.Timeout() > 0 {
		a.Timeout = r.Timeout().String()
	}
	return a
}

// Find returns the action with the given id.
func (r *ActionRegistry) Find(id string) (Action, bool) {
	for _, a := range r.Actions {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

// Validate checks ids and task types are present and unique.
func (r *ActionRegistry) Validate() error {
	ids := make(map[string]bool, len(r.Actions))
	taskTypes := make(map[string]bool, len(r.Actions))
	for i, a := range r.Actions {
		if a.ID == "" {
			return fmt.Errorf("action %d: id is required", i)
		}
		if a.TaskType == "" {
			return fmt.Errorf("action %s: taskType is required", a.ID)
		}
		if ids[a.ID] {
			return fmt.Errorf("duplicate action id %s", a.ID)
		}
		if taskTypes[a.TaskType] {
			return fmt.Errorf("duplicate task type %s", a.TaskType)
		}
		ids[a.ID] = true
		taskTypes[a.TaskType] = true
	}
	return nil
}

// Write encodes the registry as json or yaml.
func (r *ActionRegistry) Write(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported registry format %q", format)
	}
}

// LoadRegistry reads a registry written by Write, picking the decoder from
// the file extension.
func LoadRegistry(path string) (*ActionRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActionRegistry
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		err = yaml.Unmarshal(data, &reg)
	} else {
		err = json.Unmarshal(data, &reg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

func displayName(id string) string {
	words := strings.Split(id, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
