package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"accreditation-gateway/internal/common/validation"
	"accreditation-gateway/internal/gateway"
)

// NewInvoker binds a model and a prompt into a gateway.Invoker. The invoker
// renders the prompt from the validated input, asks the model for a JSON
// document shaped by outputSchema and decodes it. Schema conformance of the
// decoded object is left to the gateway.
func NewInvoker(model Model, prompt *Prompt, outputSchema validation.JSONSchema) gateway.Invoker {
	return func(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
		text, media, err := prompt.Render(input)
		if err != nil {
			return nil, err
		}

		raw, err := model.Generate(ctx, &Request{
			Name:         prompt.Name(),
			Prompt:       text,
			Media:        media,
			OutputSchema: outputSchema,
		})
		if err != nil {
			return nil, err
		}

		return decodeObject(raw)
	}
}

func decodeObject(raw []byte) (map[string]interface{}, error) {
	raw = stripCodeFence(bytes.TrimSpace(raw))
	if len(raw) == 0 {
		return nil, ErrEmptyOutput
	}
	if raw[0] != '{' {
		return nil, ErrNotJSONObject
	}

	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJSONObject, err)
	}
	return out, nil
}

// stripCodeFence removes a ```json ... ``` wrapper that some models add
// even in JSON mode.
func stripCodeFence(raw []byte) []byte {
	if !bytes.HasPrefix(raw, []byte("```")) {
		return raw
	}
	raw = raw[3:]
	if nl := bytes.IndexByte(raw, '\n'); nl >= 0 {
		raw = raw[nl+1:]
	}
	raw = bytes.TrimSuffix(bytes.TrimSpace(raw), []byte("```"))
	return bytes.TrimSpace(raw)
}
