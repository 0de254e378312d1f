package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"accreditation-gateway/internal/common/config"
	commonhttp "accreditation-gateway/internal/common/http"
	"accreditation-gateway/internal/common/logger"
	"accreditation-gateway/internal/common/validation"
)

// HTTPModel calls a hosted prompt service that executes named prompts:
//
//	POST {base_url}/api/ai/prompts/{name}
//	{"prompt": "...", "media": [{"contentType": "...", "url": "data:..."}], "outputSchema": {...}}
//	-> {"output": {...}}
type HTTPModel struct {
	client  *commonhttp.Client
	baseURL string
	apiKey  string
	logger  logger.Logger
}

type httpMedia struct {
	ContentType string `json:"contentType"`
	URL         string `json:"url"`
}

type httpRequest struct {
	Prompt       string                `json:"prompt"`
	Media        []httpMedia           `json:"media,omitempty"`
	OutputSchema validation.JSONSchema `json:"outputSchema"`
}

type httpResponse struct {
	Output json.RawMessage `json:"output"`
}

func NewHTTPModel(cfg config.GenAIConfig, log logger.Logger) (*HTTPModel, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("genai base_url is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid genai base_url: %w", err)
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	return &HTTPModel{
		client:  commonhttp.NewClient(config.GetDuration(cfg.Timeout)),
		baseURL: base,
		apiKey:  cfg.APIKey,
		logger:  log.WithFields(map[string]interface{}{"provider": config.ProviderHTTP}),
	}, nil
}

func (m *HTTPModel) Generate(ctx context.Context, req *Request) ([]byte, error) {
	body := httpRequest{
		Prompt:       req.Prompt,
		OutputSchema: req.OutputSchema,
	}
	for _, media := range req.Media {
		body.Media = append(body.Media, httpMedia{ContentType: media.MIMEType, URL: media.String()})
	}

	headers := map[string]string{}
	if m.apiKey != "" {
		headers["Authorization"] = "Bearer " + m.apiKey
	}

	endpoint := fmt.Sprintf("%s/api/ai/prompts/%s", m.baseURL, url.PathEscape(req.Name))

	m.logger.Debug("calling prompt service", map[string]interface{}{
		"prompt":     req.Name,
		"mediaCount": len(req.Media),
	})

	var resp httpResponse
	if err := m.client.PostJSON(ctx, endpoint, headers, body, &resp); err != nil {
		return nil, classify(ctx, err)
	}

	if len(resp.Output) == 0 || string(resp.Output) == "null" {
		return nil, ErrEmptyOutput
	}
	return resp.Output, nil
}
