// Package frauddetection looks for signs of tampering in an uploaded
// accreditation document.
package frauddetection

import (
	"accreditation-gateway/internal/common/logger"
	"accreditation-gateway/internal/gateway"
	"accreditation-gateway/internal/inference"
)

const (
	Name           = "fraud-detection"
	TaskType       = "accreditation.fraud.detect"
	FailureMessage = "Failed to detect fraud"
)

var Prompt = inference.MustPrompt(Name, `You are an AI fraud detection expert. Your task is to analyze the provided document for any signs of fraudulent activity, such as tampering, forged signatures, inconsistent information, or altered content.

Based on your analysis, determine if the document is fraudulent, provide a confidence score (from 0 to 1), and give a detailed reasoning for your conclusion.

Document for analysis: {{media .documentDataUri}}`)

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
