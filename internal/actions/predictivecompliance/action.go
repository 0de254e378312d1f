// Package predictivecompliance forecasts the compliance gaps an institution
// is likely to hit in an accreditation cycle.
package predictivecompliance

import (
	"accreditation-gateway/internal/common/logger"
	"accreditation-gateway/internal/gateway"
	"accreditation-gateway/internal/inference"
)

const (
	Name           = "predictive-compliance"
	TaskType       = "accreditation.compliance.predict"
	FailureMessage = "Failed to predict compliance gaps"
)

var Prompt = inference.MustPrompt(Name, `You are an expert in accreditation processes (NAAC, NBA, NIRF) for academic institutions.
Based on the institution's data and the type of accreditation they are pursuing, identify potential compliance gaps and suggest improvements.

Institution Data: {{.institutionData}}
Accreditation Type: {{.accreditationType}}

Provide a detailed report of compliance gaps and specific suggestions to address them.`)

type Action = gateway.Action[Input, Output]

func NewInvoker(model inference.Model) gateway.Invoker {
	return inference.NewInvoker(model, Prompt, GetOutputSchema())
}

func New(cfg *Config, invoker gateway.Invoker, log logger.Logger) (*Action, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return gateway.New[Input, Output](gateway.Options{
		Name:           Name,
		TaskType:       cfg.TaskType,
		FailureMessage: FailureMessage,
		InputSchema:    GetInputSchema(),
		OutputSchema:   GetOutputSchema(),
		Invoker:        invoker,
		Logger:         log,
		Timeout:        cfg.Timeout,
		MaxJobsActive:  cfg.MaxJobsActive,
	})
}
