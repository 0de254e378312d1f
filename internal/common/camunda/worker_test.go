package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"accreditation-gateway/internal/common/config"
	apperrors "accreditation-gateway/internal/common/errors"
	"accreditation-gateway/internal/common/logger"
	"accreditation-gateway/internal/common/validation"
	"accreditation-gateway/internal/gateway"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func newJob(variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                2251799813685249,
		Type:               "accreditation.fraud.detect",
		ProcessInstanceKey: 2251799813685200,
		Variables:          variables,
	}}
}

func fraudAction(t *testing.T, invoker gateway.Invoker) gateway.Runner {
	t.Helper()
	action, err := gateway.New[map[string]interface{}, map[string]interface{}](gateway.Options{
		Name:     "fraud-detection",
		TaskType: "accreditation.fraud.detect",
		InputSchema: validation.JSONSchema{
			Type:     "object",
			Required: []string{"documentDataUri"},
			Properties: map[string]validation.Property{
				"documentDataUri": {Type: "string"},
			},
			AdditionalProperties: true,
		},
		OutputSchema: validation.JSONSchema{
			Type:     "object",
			Required: []string{"isFraudulent"},
			Properties: map[string]validation.Property{
				"isFraudulent": {Type: "boolean"},
			},
		},
		Invoker: invoker,
		Logger:  logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return action
}

// ==========================
// Action handler
// ==========================

func TestActionHandler_Process(t *testing.T) {
	tests := []struct {
		name      string
		variables string
		invoker   gateway.Invoker
		wantOK    bool
		wantCode  apperrors.ErrorCode
		wantData  map[string]interface{}
	}{
		{
			name:      "success completes with data",
			variables: `{"documentDataUri":"data:application/pdf;base64,AAAA","applicationId":"APP-7"}`,
			invoker: func(_ context.Context, in map[string]interface{}) (map[string]interface{}, error) {
				if _, leaked := in["applicationId"]; leaked {
					return nil, errors.New("unexpected field")
				}
				return map[string]interface{}{"isFraudulent": true}, nil
			},
			wantOK:   true,
			wantData: map[string]interface{}{"isFraudulent": true},
		},
		{
			name:      "validation failure completes with envelope",
			variables: `{"applicationId":"APP-7"}`,
			invoker: func(context.Context, map[string]interface{}) (map[string]interface{}, error) {
				return nil, errors.New("must not be called")
			},
			wantCode: apperrors.ErrCodeValidationFailed,
		},
		{
			name:      "invocation failure completes with envelope",
			variables: `{"documentDataUri":"data:application/pdf;base64,AAAA"}`,
			invoker: func(context.Context, map[string]interface{}) (map[string]interface{}, error) {
				return nil, errors.New("model overloaded")
			},
			wantCode: apperrors.ErrCodeInvocationFailed,
		},
		{
			name:      "unreadable variables",
			variables: `not json`,
			invoker: func(context.Context, map[string]interface{}) (map[string]interface{}, error) {
				return nil, errors.New("must not be called")
			},
			wantCode: apperrors.ErrCodeInputParsingFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewActionHandler(fraudAction(t, tt.invoker), "fraudResult", logger.NewTestLogger(t))

			vars := handler.Process(context.Background(), newJob(tt.variables))

			require.Len(t, vars, 1)
			result, ok := vars["fraudResult"].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, tt.wantOK, result["success"])
			if tt.wantOK {
				assert.Equal(t, tt.wantData, result["data"])
				assert.NotContains(t, result, "errorCode")
				return
			}
			assert.Equal(t, string(tt.wantCode), result["errorCode"])
			assert.NotEmpty(t, result["error"])
		})
	}
}

func TestNewActionHandler_DefaultResultVariable(t *testing.T) {
	handler := NewActionHandler(fraudAction(t, func(context.Context, map[string]interface{}) (map[string]interface{}, error) {
		return map[string]interface{}{"isFraudulent": false}, nil
	}), "", nil)

	vars := handler.Process(context.Background(), newJob(`{"documentDataUri":"data:image/png;base64,AAAA"}`))
	assert.Contains(t, vars, "actionResult")
}

func TestWorkerOptions(t *testing.T) {
	cfg := &config.Config{
		App:     config.AppConfig{Name: "accreditation-gateway"},
		Camunda: config.CamundaConfig{MaxJobsActive: 3, Timeout: 60000, RequestTimeout: 10000},
	}
	noop := func(context.Context, map[string]interface{}) (map[string]interface{}, error) { return nil, nil }

	opts := workerOptions(fraudAction(t, noop), cfg)
	assert.Equal(t, "accreditation.fraud.detect", opts.TaskType)
	assert.Equal(t, "accreditation-gateway-fraud-detection", opts.Name)
	assert.Equal(t, 3, opts.MaxJobsActive)
	assert.Equal(t, time.Minute, opts.Timeout)
	assert.Equal(t, 10*time.Second, opts.RequestTimeout)

	capped, err := gateway.New[map[string]interface{}, map[string]interface{}](gateway.Options{
		Name:          "document-suggestion",
		TaskType:      "accreditation.document.suggest",
		InputSchema:   validation.JSONSchema{Type: "object"},
		OutputSchema:  validation.JSONSchema{Type: "object"},
		Invoker:       noop,
		MaxJobsActive: 9,
	})
	require.NoError(t, err)
	assert.Equal(t, 9, workerOptions(capped, cfg).MaxJobsActive)
}

func TestJobContext(t *testing.T) {
	deadline := time.Now().Add(time.Minute).Truncate(time.Millisecond)
	job := newJob(`{}`)
	job.Deadline = deadline.UnixMilli()

	ctx, cancel := jobContext(job)
	defer cancel()
	got, ok := ctx.Deadline()
	require.True(t, ok)
	assert.True(t, got.Equal(deadline))

	ctx, cancel = jobContext(newJob(`{}`))
	defer cancel()
	_, ok = ctx.Deadline()
	assert.False(t, ok)
}

// ==========================
// Client helpers
// ==========================

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.CamundaConfig{
		BrokerAddress:  "zeebe:26500",
		UsePlaintext:   true,
		RequestTimeout: 30000,
	})

	assert.Equal(t, "zeebe:26500", cfg.GatewayAddress)
	assert.True(t, cfg.UsePlaintextConnection)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Same(t, DefaultRetryConfig, cfg.RetryConfig)
}

func TestNewClientWithConfig_RequiresAddress(t *testing.T) {
	_, err := NewClientWithConfig(&ClientConfig{})
	assert.Error(t, err)
}

func TestWithRetry(t *testing.T) {
	retry := &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	t.Run("transient errors are retried", func(t *testing.T) {
		attempts := 0
		err := withRetry(context.Background(), retry, "complete job", func(context.Context) error {
			attempts++
			if attempts < 3 {
				return errors.New("rpc error: code = Unavailable desc = connection refused")
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		attempts := 0
		err := withRetry(context.Background(), retry, "complete job", func(context.Context) error {
			attempts++
			return errors.New("deadline exceeded")
		})
		require.Error(t, err)
		assert.Equal(t, 3, attempts)
		assert.Contains(t, err.Error(), "after 3 attempts")
	})

	t.Run("permanent errors are not retried", func(t *testing.T) {
		attempts := 0
		err := withRetry(context.Background(), retry, "complete job", func(context.Context) error {
			attempts++
			return errors.New("NOT_FOUND: job 1 not found")
		})
		require.Error(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("cancelled context stops retries", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		slow := &RetryConfig{MaxRetries: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}
		err := withRetry(ctx, slow, "complete job", func(context.Context) error {
			cancel()
			return errors.New("connection reset by peer")
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestIsRetryableZeebeError(t *testing.T) {
	assert.True(t, isRetryableZeebeError(errors.New("rpc error: code = ResourceExhausted desc = RESOURCE_EXHAUSTED")))
	assert.True(t, isRetryableZeebeError(errors.New("i/o timeout")))
	assert.False(t, isRetryableZeebeError(errors.New("invalid argument")))
}
