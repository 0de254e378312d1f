package documentverification

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	apperrors "accreditation-gateway/internal/common/errors"
	"accreditation-gateway/internal/common/logger"
	"accreditation-gateway/internal/common/validation"
	"accreditation-gateway/internal/inference"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockModel struct {
	mock.Mock
}

func (m *mockModel) Generate(ctx context.Context, req *inference.Request) ([]byte, error) {
	args := m.Called(ctx, req)
	raw, _ := args.Get(0).([]byte)
	return raw, args.Error(1)
}

func validInput() map[string]interface{} {
	return map[string]interface{}{
		"documentDataUri": "data:application/pdf;base64,JVBERi0xLjcK",
		"institutionType": "NAAC",
		"criteria":        "Criterion 2: Teaching-Learning and Evaluation",
	}
}

func TestInputSchema(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(map[string]interface{})
		wantValid bool
		errField  string
	}{
		{name: "valid", mutate: func(map[string]interface{}) {}, wantValid: true},
		{name: "missing document", mutate: func(in map[string]interface{}) { delete(in, "documentDataUri") }, errField: "documentDataUri"},
		{name: "plain url", mutate: func(in map[string]interface{}) { in["documentDataUri"] = "https://example.edu/ssr.pdf" }, errField: "documentDataUri"},
		{name: "empty institution type", mutate: func(in map[string]interface{}) { in["institutionType"] = "" }, errField: "institutionType"},
		{name: "criteria too short", mutate: func(in map[string]interface{}) { in["criteria"] = "C2" }, errField: "criteria"},
		{name: "corrupt document payload", mutate: func(in map[string]interface{}) { in["documentDataUri"] = "data:application/pdf;base64,@@not base64@@" }, errField: "documentDataUri"},
		{name: "long criteria", mutate: func(in map[string]interface{}) { in["criteria"] = strings.Repeat("c", 5001) }, wantValid: true},
		{name: "long institution type", mutate: func(in map[string]interface{}) { in["institutionType"] = strings.Repeat("N", 201) }, wantValid: true},
		{name: "criteria not a string", mutate: func(in map[string]interface{}) { in["criteria"] = 2 }, errField: "criteria"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(in)
			result := validation.ValidateInput(in, GetInputSchema())
			assert.Equal(t, tt.wantValid, result.Valid, result.GetErrorMessages())
			if tt.errField != "" {
				assert.True(t, result.HasErrors(tt.errField), result.GetErrorMessages())
			}
		})
	}
}

func TestPrompt(t *testing.T) {
	text, media, err := Prompt.Render(validInput())
	require.NoError(t, err)

	assert.Contains(t, text, "Institution Type: NAAC")
	assert.Contains(t, text, "Accreditation Criteria: Criterion 2: Teaching-Learning and Evaluation")
	assert.Contains(t, text, "Document: [attached document 1: application/pdf]")
	require.Len(t, media, 1)
	assert.Equal(t, []byte("%PDF-1.7\n"), media[0].Data)
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.TaskType = "verify"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Timeout = -1
	assert.Error(t, cfg.Validate())

	_, err := New(cfg, nil, nil)
	assert.Error(t, err)
}

func TestAction_WithModel(t *testing.T) {
	model := &mockModel{}
	model.On("Generate", mock.Anything, mock.MatchedBy(func(req *inference.Request) bool {
		return req.Name == Name && len(req.Media) == 1 && req.OutputSchema.Required[0] == "isEligible"
	})).Return([]byte(`{"isEligible":true,"confidenceScore":0.87,"explanation":"Attendance and evaluation records meet criterion 2."}`), nil).Once()

	action, err := New(DefaultConfig(), NewInvoker(model), logger.NewTestLogger(t))
	require.NoError(t, err)

	res := action.Execute(context.Background(), validInput())

	require.True(t, res.Success, res.Error)
	assert.Equal(t, Output{
		IsEligible:      true,
		ConfidenceScore: 0.87,
		Explanation:     "Attendance and evaluation records meet criterion 2.",
	}, *res.Data)
	model.AssertExpectations(t)
}

func TestAction_ModelFailure(t *testing.T) {
	model := &mockModel{}
	model.On("Generate", mock.Anything, mock.Anything).Return(nil, inference.ErrInferenceFailed).Once()

	action, err := New(DefaultConfig(), NewInvoker(model), nil)
	require.NoError(t, err)

	res := action.Call(context.Background(), Input{
		DocumentDataURI: "data:image/png;base64,AAAA",
		InstitutionType: "NBA",
		Criteria:        "Program outcomes",
	})

	assert.False(t, res.Success)
	assert.Equal(t, "Failed to verify document: invocation failed", res.Error)
	assert.Equal(t, apperrors.ErrCodeInvocationFailed, res.Code)
}

func TestAction_LongCriteriaReachesModel(t *testing.T) {
	var calls atomic.Int32
	invoker := func(_ context.Context, in map[string]interface{}) (map[string]interface{}, error) {
		calls.Add(1)
		return map[string]interface{}{"isEligible": false, "confidenceScore": 0.4, "explanation": "partial"}, nil
	}
	action, err := New(DefaultConfig(), invoker, nil)
	require.NoError(t, err)

	in := validInput()
	in["criteria"] = strings.Repeat("Criterion 5: Student Support and Progression. ", 120)
	res := action.Execute(context.Background(), in)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAction_CorruptDocumentRejected(t *testing.T) {
	var calls atomic.Int32
	invoker := func(context.Context, map[string]interface{}) (map[string]interface{}, error) {
		calls.Add(1)
		return nil, nil
	}
	action, err := New(DefaultConfig(), invoker, nil)
	require.NoError(t, err)

	in := validInput()
	in["documentDataUri"] = "data:application/pdf;base64,@@not base64@@"
	res := action.Execute(context.Background(), in)

	assert.False(t, res.Success)
	assert.Equal(t, apperrors.ErrCodeValidationFailed, res.Code)
	assert.Contains(t, res.Error, "documentDataUri")
	assert.Equal(t, int32(0), calls.Load())
}
