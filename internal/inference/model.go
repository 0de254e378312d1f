// Package inference adapts hosted LLM prompt services to the gateway's
// Invoker contract: a rendered prompt plus attached documents goes in, a
// JSON object comes out.
package inference

import (
	"context"
	"errors"
	"fmt"

	"accreditation-gateway/internal/common/config"
	"accreditation-gateway/internal/common/logger"
	"accreditation-gateway/internal/common/validation"
	"accreditation-gateway/internal/document"
)

var (
	ErrInferenceFailed = errors.New("INFERENCE_FAILED")
	ErrEmptyOutput     = errors.New("inference returned empty output")
	ErrNotJSONObject   = errors.New("inference output is not a JSON object")
)

type timeoutError struct{}

func (timeoutError) Error() string { return "INFERENCE_TIMEOUT" }
func (timeoutError) Timeout() bool { return true }

// ErrInferenceTimeout is reported when the model call outlives its context.
// It satisfies interface{ Timeout() bool } like net.Error does.
var ErrInferenceTimeout error = timeoutError{}

// Request is one structured-output generation.
type Request struct {
	// Name identifies the prompt, e.g. "fraud-detection".
	Name         string
	Prompt       string
	Media        []document.DataURI
	OutputSchema validation.JSONSchema
}

// Model generates a JSON document conforming to req.OutputSchema.
type Model interface {
	Generate(ctx context.Context, req *Request) ([]byte, error)
}

// NewModel builds the model selected by cfg.Provider.
func NewModel(ctx context.Context, cfg config.GenAIConfig, log logger.Logger) (Model, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiModel(ctx, cfg, log)
	case config.ProviderHTTP:
		return NewHTTPModel(cfg, log)
	default:
		return nil, fmt.Errorf("unknown genai provider %q", cfg.Provider)
	}
}

// classify maps a failed call onto the package sentinels, preferring the
// context's verdict over whatever the transport reported.
func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrInferenceFailed, err)
}
