package documentsuggestion

import "accreditation-gateway/internal/common/validation"

// MinInstitutionDataLength is the shortest institution description accepted.
const MinInstitutionDataLength = 50

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"institutionData", "accreditationType"},
		Properties: map[string]validation.Property{
			"institutionData": {
				Type:        "string",
				Description: "A description of the institution, including its programs, faculty, and resources",
				MinLength:   validation.IntPtr(MinInstitutionDataLength),
			},
			"accreditationType": {
				Type:        "string",
				Description: "The type of accreditation being sought (e.g., NAAC, NBA, NIRF)",
				MinLength:   validation.IntPtr(1),
			},
		},
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"suggestedDocuments"},
		Properties: map[string]validation.Property{
			"suggestedDocuments": {
				Type:        "array",
				Description: "A list of suggested documents relevant to the institution and accreditation type",
				Items: &validation.Property{
					Type: "string",
				},
			},
		},
		AdditionalProperties: true,
	}
}
