package documentsuggestion

import (
	"context"
	"strings"
	"testing"

	apperrors "accreditation-gateway/internal/common/errors"
	"accreditation-gateway/internal/common/validation"
	"accreditation-gateway/internal/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const institutionData = "Autonomous engineering college with 14 UG programs, 220 faculty and a central research facility."

func TestInputSchema_InstitutionDataLength(t *testing.T) {
	tests := []struct {
		name      string
		length    int
		wantValid bool
	}{
		{name: "one short", length: MinInstitutionDataLength - 1},
		{name: "exact", length: MinInstitutionDataLength, wantValid: true},
		{name: "long", length: 2000, wantValid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validation.ValidateInput(map[string]interface{}{
				"institutionData":   strings.Repeat("a", tt.length),
				"accreditationType": "NIRF",
			}, GetInputSchema())
			assert.Equal(t, tt.wantValid, result.Valid, result.GetErrorMessages())
		})
	}
}

func TestInputSchema_AccreditationTypeRequired(t *testing.T) {
	result := validation.ValidateInput(map[string]interface{}{
		"institutionData":   institutionData,
		"accreditationType": "",
	}, GetInputSchema())
	assert.True(t, result.HasErrors("accreditationType"), result.GetErrorMessages())
}

func TestInputSchema_LongAccreditationType(t *testing.T) {
	result := validation.ValidateInput(map[string]interface{}{
		"institutionData":   institutionData,
		"accreditationType": strings.Repeat("NAAC ", 40),
	}, GetInputSchema())
	assert.True(t, result.Valid, result.GetErrorMessages())
}

func TestPrompt(t *testing.T) {
	text, media, err := Prompt.Render(map[string]interface{}{
		"institutionData":   institutionData,
		"accreditationType": "NBA",
	})
	require.NoError(t, err)
	assert.Empty(t, media)
	assert.Contains(t, text, "Institution Data: "+institutionData)
	assert.Contains(t, text, "Accreditation Type: NBA")
	assert.True(t, strings.HasSuffix(text, "Suggested Documents:"))
}

func TestAction_RejectsNonStringItems(t *testing.T) {
	invoker := func(context.Context, map[string]interface{}) (map[string]interface{}, error) {
		return map[string]interface{}{"suggestedDocuments": []interface{}{"Syllabus", 3}}, nil
	}
	action, err := New(DefaultConfig(), gateway.Invoker(invoker), nil)
	require.NoError(t, err)

	res := action.Call(context.Background(), Input{InstitutionData: institutionData, AccreditationType: "NAAC"})

	assert.False(t, res.Success)
	assert.Equal(t, apperrors.ErrCodeOutputInvalid, res.Code)
}

func TestAction_EmptySuggestionList(t *testing.T) {
	invoker := func(context.Context, map[string]interface{}) (map[string]interface{}, error) {
		return map[string]interface{}{"suggestedDocuments": []interface{}{}}, nil
	}
	action, err := New(DefaultConfig(), invoker, nil)
	require.NoError(t, err)

	res := action.Call(context.Background(), Input{InstitutionData: institutionData, AccreditationType: "NAAC"})

	require.True(t, res.Success, res.Error)
	assert.Empty(t, res.Data.SuggestedDocuments)
}
