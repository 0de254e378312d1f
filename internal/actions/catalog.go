// Package actions assembles the four accreditation actions into a Catalog
// that the HTTP and Zeebe transports serve from.
package actions

import (
	"fmt"
	"sort"

	"accreditation-gateway/internal/actions/documentsuggestion"
	"accreditation-gateway/internal/actions/documentverification"
	"accreditation-gateway/internal/actions/frauddetection"
	"accreditation-gateway/internal/actions/predictivecompliance"
	"accreditation-gateway/internal/common/config"
	"accreditation-gateway/internal/common/logger"
	"accreditation-gateway/internal/gateway"
	"accreditation-gateway/internal/inference"
)

// Names lists every action the gateway knows, enabled or not.
var Names = []string{
	documentverification.Name,
	documentsuggestion.Name,
	frauddetection.Name,
	predictivecompliance.Name,
}

// InvokerFactory supplies the inference capability for an action name.
type InvokerFactory func(name string) gateway.Invoker

// ModelInvokers binds each action's prompt to model.
func ModelInvokers(model inference.Model) InvokerFactory {
	return func(name string) gateway.Invoker {
		switch name {
		case documentverification.Name:
			return documentverification.NewInvoker(model)
		case documentsuggestion.Name:
			return documentsuggestion.NewInvoker(model)
		case frauddetection.Name:
			return frauddetection.NewInvoker(model)
		case predictivecompliance.Name:
			return predictivecompliance.NewInvoker(model)
		default:
			return nil
		}
	}
}

// Catalog indexes runners by route name and by Zeebe task type.
type Catalog struct {
	runners    []gateway.Runner
	byName     map[string]gateway.Runner
	byTaskType map[string]gateway.Runner
}

func NewCatalog(runners ...gateway.Runner) (*Catalog, error) {
	c := &Catalog{
		byName:     make(map[string]gateway.Runner, len(runners)),
		byTaskType: make(map[string]gateway.Runner, len(runners)),
	}
	for _, r := range runners {
		if _, dup := c.byName[r.Name()]; dup {
			return nil, fmt.Errorf("duplicate action name %q", r.Name())
		}
		if _, dup := c.byTaskType[r.TaskType()]; dup {
			return nil, fmt.Errorf("duplicate task type %q", r.TaskType())
		}
		c.byName[r.Name()] = r
		c.byTaskType[r.TaskType()] = r
		c.runners = append(c.runners, r)
	}
	sort.Slice(c.runners, func(i, j int) bool { return c.runners[i].Name() < c.runners[j].Name() })
	return c, nil
}

// Build constructs every enabled action from cfg.
func Build(cfg *config.Config, invokers InvokerFactory, log logger.Logger) (*Catalog, error) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	var runners []gateway.Runner
	for _, name := range Names {
		if !config.IsActionEnabled(cfg, name) {
			log.Info("action disabled", map[string]interface{}{"action": name})
			continue
		}

		invoker := invokers(name)
		if invoker == nil {
			return nil, fmt.Errorf("no invoker for action %s", name)
		}

		runner, err := build(cfg, name, invoker, log)
		if err != nil {
			return nil, fmt.Errorf("build action %s: %w", name, err)
		}
		runners = append(runners, runner)
	}

	return NewCatalog(runners...)
}

func build(cfg *config.Config, name string, invoker gateway.Invoker, log logger.Logger) (gateway.Runner, error) {
	ac := config.GetActionConfig(cfg, name)
	timeout := config.ActionTimeout(cfg, name)

	switch name {
	case documentverification.Name:
		c := documentverification.DefaultConfig()
		overrideTaskType(&c.TaskType, ac)
		overrideJobs(&c.MaxJobsActive, ac)
		c.Timeout = timeout
		return documentverification.New(c, invoker, log)
	case documentsuggestion.Name:
		c := documentsuggestion.DefaultConfig()
		overrideTaskType(&c.TaskType, ac)
		overrideJobs(&c.MaxJobsActive, ac)
		c.Timeout = timeout
		return documentsuggestion.New(c, invoker, log)
	case frauddetection.Name:
		c := frauddetection.DefaultConfig()
		overrideTaskType(&c.TaskType, ac)
		overrideJobs(&c.MaxJobsActive, ac)
		c.Timeout = timeout
		return frauddetection.New(c, invoker, log)
	case predictivecompliance.Name:
		c := predictivecompliance.DefaultConfig()
		overrideTaskType(&c.TaskType, ac)
		overrideJobs(&c.MaxJobsActive, ac)
		c.Timeout = timeout
		return predictivecompliance.New(c, invoker, log)
	default:
		return nil, fmt.Errorf("unknown action %q", name)
	}
}

func overrideTaskType(dst *string, ac config.ActionConfig) {
	if ac.TaskType != "" {
		*dst = ac.TaskType
	}
}

func overrideJobs(dst *int, ac config.ActionConfig) {
	if ac.MaxJobsActive > 0 {
		*dst = ac.MaxJobsActive
	}
}

// Get looks an action up by its route name.
func (c *Catalog) Get(name string) (gateway.Runner, bool) {
	r, ok := c.byName[name]
	return r, ok
}

func (c *Catalog) ByTaskType(taskType string) (gateway.Runner, bool) {
	r, ok := c.byTaskType[taskType]
	return r, ok
}

// Runners returns the actions sorted by name.
func (c *Catalog) Runners() []gateway.Runner {
	return append([]gateway.Runner(nil), c.runners...)
}

func (c *Catalog) Len() int {
	return len(c.runners)
}
