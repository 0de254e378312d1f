// Package documentverification judges whether an uploaded document makes an
// institution eligible under a given accreditation criterion.
package documentverification

import (
	"accreditation-gateway/internal/common/logger"
	"accreditation-gateway/internal/gateway"
	"accreditation-gateway/internal/inference"
)

const (
	Name           = "document-verification"
	TaskType       = "accreditation.document.verify"
	FailureMessage = "Failed to verify document"
)

var Prompt = inference.MustPrompt(Name, `You are an AI document verification expert specializing in accreditation eligibility.

You will assess the provided document to determine its eligibility for the specified accreditation criteria, considering the institution type.

Based on your analysis, determine whether the document is eligible or ineligible, providing a confidence score (0-1) and a clear explanation for your decision.

Institution Type: {{.institutionType}}
Accreditation Criteria: {{.criteria}}
Document: {{media .documentDataUri}}`)

type Action = gateway.Action[Input, Output]

// NewInvoker runs Prompt on model.
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
