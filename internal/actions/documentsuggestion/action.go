// Package documentsuggestion proposes the documents an institution should
// gather for an accreditation.
package documentsuggestion

import (
	"accreditation-gateway/internal/common/logger"
	"accreditation-gateway/internal/gateway"
	"accreditation-gateway/internal/inference"
)

const (
	Name           = "document-suggestion"
	TaskType       = "accreditation.document.suggest"
	FailureMessage = "Failed to suggest documents"
)

var Prompt = inference.MustPrompt(Name, `You are an expert accreditation consultant. Based on the provided institution data and the type of accreditation being sought, suggest a list of relevant documents that the institution should gather.

Institution Data: {{.institutionData}}
Accreditation Type: {{.accreditationType}}

Suggested Documents:`)

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
