package predictivecompliance

import "accreditation-gateway/internal/common/validation"

// MinInstitutionDataLength is the shortest institution history accepted.
const MinInstitutionDataLength = 50

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"institutionData", "accreditationType"},
		Properties: map[string]validation.Property{
			"institutionData": {
				Type:        "string",
				Description: "Data representing the institution, including past accreditation submissions and related information",
				MinLength:   validation.IntPtr(MinInstitutionDataLength),
			},
			"accreditationType": {
				Type:        "string",
				Description: "The type of accreditation being pursued (e.g., NAAC, NBA, NIRF)",
				MinLength:   validation.IntPtr(1),
			},
		},
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"complianceGaps", "suggestions"},
		Properties: map[string]validation.Property{
			"complianceGaps": {
				Type:        "string",
				Description: "A detailed report of predicted compliance gaps and areas needing improvement",
			},
			"suggestions": {
				Type:        "string",
				Description: "Specific suggestions to address the identified compliance gaps",
			},
		},
		AdditionalProperties: true,
	}
}
