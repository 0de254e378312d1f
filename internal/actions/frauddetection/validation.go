package frauddetection

import (
	"accreditation-gateway/internal/common/validation"
	"accreditation-gateway/internal/document"
)

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"documentDataUri"},
		Properties: map[string]validation.Property{
			"documentDataUri": {
				Type:        "string",
				Description: "The document to analyze as a base64 data URI: data:<mimetype>;base64,<encoded_data>",
				Pattern:     validation.StringPtr(document.DataURIPattern),
			},
		},
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"isFraudulent", "confidenceScore", "reasoning"},
		Properties: map[string]validation.Property{
			"isFraudulent": {
				Type:        "boolean",
				Description: "Whether the document is likely fraudulent",
			},
			"confidenceScore": {
				Type:        "number",
				Description: "A score between 0 and 1 indicating the confidence in the fraud determination",
				Minimum:     validation.FloatPtr(0),
				Maximum:     validation.FloatPtr(1),
			},
			"reasoning": {
				Type:        "string",
				Description: "An explanation of why the document is considered fraudulent or not",
			},
		},
		AdditionalProperties: true,
	}
}
