package inference

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"accreditation-gateway/internal/common/config"
	"accreditation-gateway/internal/common/logger"
	"accreditation-gateway/internal/common/validation"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// contentGenerator is the slice of *genai.Models the Gemini model uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiModel generates structured output with Google's Gemini API in JSON
// mode, passing the output schema as the response schema.
type GeminiModel struct {
	models      contentGenerator
	model       string
	temperature *float32
	logger      logger.Logger
}

func NewGeminiModel(ctx context.Context, cfg config.GenAIConfig, log logger.Logger) (*GeminiModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return newGeminiModel(client.Models, cfg, log), nil
}

func newGeminiModel(models contentGenerator, cfg config.GenAIConfig, log logger.Logger) *GeminiModel {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	name := cfg.Model
	if name == "" {
		name = defaultGeminiModel
	}

	m := &GeminiModel{
		models: models,
		model:  name,
		logger: log.WithFields(map[string]interface{}{"provider": config.ProviderGemini, "model": name}),
	}
	if cfg.Temperature > 0 {
		m.temperature = genai.Ptr(float32(cfg.Temperature))
	}
	return m
}

func (m *GeminiModel) Generate(ctx context.Context, req *Request) ([]byte, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	for _, media := range req.Media {
		parts = append(parts, genai.NewPartFromBytes(media.Data, media.MIMEType))
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		Temperature:      m.temperature,
		ResponseMIMEType: "application/json",
		ResponseSchema:   ToGenAISchema(req.OutputSchema),
	}

	m.logger.Debug("generating content", map[string]interface{}{
		"prompt":     req.Name,
		"mediaCount": len(req.Media),
	})

	resp, err := m.models.GenerateContent(ctx, m.model, contents, cfg)
	if err != nil {
		return nil, classify(ctx, err)
	}
	if resp == nil {
		return nil, ErrEmptyOutput
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, ErrEmptyOutput
	}
	return []byte(text), nil
}

// ToGenAISchema converts an object schema into Gemini's response schema.
func ToGenAISchema(schema validation.JSONSchema) *genai.Schema {
	out := &genai.Schema{
		Type:        genai.TypeObject,
		Description: schema.Description,
		Properties:  make(map[string]*genai.Schema, len(schema.Properties)),
		Required:    append([]string(nil), schema.Required...),
	}

	names := make([]string, 0, len(schema.Properties))
	for name, prop := range schema.Properties {
		out.Properties[name] = propertyToGenAI(prop)
		names = append(names, name)
	}
	sort.Strings(names)
	out.PropertyOrdering = names
	return out
}

func propertyToGenAI(prop validation.Property) *genai.Schema {
	s := &genai.Schema{
		Type:        genaiType(prop.Type),
		Description: prop.Description,
		Enum:        prop.Enum,
		Minimum:     prop.Minimum,
		Maximum:     prop.Maximum,
	}
	if prop.Items != nil {
		s.Items = propertyToGenAI(*prop.Items)
	}
	if len(prop.Properties) > 0 {
		s.Properties = make(map[string]*genai.Schema, len(prop.Properties))
		for name, child := range prop.Properties {
			s.Properties[name] = propertyToGenAI(child)
		}
		s.Required = prop.Required
	}
	return s
}

func genaiType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeUnspecified
	}
}
