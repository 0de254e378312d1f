package documentverification

import (
	"accreditation-gateway/internal/common/validation"
	"accreditation-gateway/internal/document"
)

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"documentDataUri", "institutionType", "criteria"},
		Properties: map[string]validation.Property{
			"documentDataUri": {
				Type:        "string",
				Description: "The document to verify as a base64 data URI: data:<mimetype>;base64,<encoded_data>",
				Pattern:     validation.StringPtr(document.DataURIPattern),
			},
			"institutionType": {
				Type:        "string",
				Description: "The type of institution submitting the document (e.g., NAAC, NBA, NIRF)",
				MinLength:   validation.IntPtr(1),
			},
			"criteria": {
				Type:        "string",
				Description: "The specific accreditation criteria to verify against",
				MinLength:   validation.IntPtr(3),
			},
		},
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"isEligible", "confidenceScore", "explanation"},
		Properties: map[string]validation.Property{
			"isEligible": {
				Type:        "boolean",
				Description: "Whether the document is eligible for the specified accreditation",
			},
			"confidenceScore": {
				Type:        "number",
				Description: "A score between 0 and 1 indicating the confidence in the eligibility determination",
				Minimum:     validation.FloatPtr(0),
				Maximum:     validation.FloatPtr(1),
			},
			"explanation": {
				Type:        "string",
				Description: "An explanation of why the document is eligible or ineligible",
			},
		},
		AdditionalProperties: true,
	}
}
