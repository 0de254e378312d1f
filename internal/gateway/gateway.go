// Package gateway implements the validated action boundary shared by every
// AI-backed action: untrusted input is checked against a schema before any
// inference call, the call's result is checked against a second schema, and
// every outcome is reported as a Result rather than a raw error or panic.
package gateway

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	apperrors "accreditation-gateway/internal/common/errors"
	"accreditation-gateway/internal/common/logger"
	"accreditation-gateway/internal/common/metrics"
	"accreditation-gateway/internal/common/validation"

	"github.com/mitchellh/mapstructure"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "accreditation-gateway/internal/gateway"

// Invoker is the external inference capability behind an action. It receives
// the validated input, reduced to the fields the input schema declares, and
// returns the raw structured result.
type Invoker func(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error)

// Runner is the untyped view of an action used by transports and the
// registry.
type Runner interface {
	Name() string
	TaskType() string
	Timeout() time.Duration
	MaxJobsActive() int
	InputSchema() validation.JSONSchema
	OutputSchema() validation.JSONSchema
	Run(ctx context.Context, raw map[string]interface{}) Envelope
}

type Options struct {
	Name           string
	TaskType       string
	FailureMessage string
	InputSchema    validation.JSONSchema
	OutputSchema   validation.JSONSchema
	Invoker        Invoker
	Logger         logger.Logger
	// Timeout bounds a single invocation. Zero leaves it bounded only by the
	// caller's context.
	Timeout time.Duration
	// MaxJobsActive caps the Zeebe jobs a worker holds for this action. Zero
	// leaves the choice to the transport.
	MaxJobsActive int
}

// Action is one validated action with typed input and output payloads.
type Action[In, Out any] struct {
	name           string
	taskType       string
	failureMessage string
	timeout        time.Duration
	maxJobs        int
	input          *validation.Validator
	output         *validation.Validator
	invoke         Invoker
	log            logger.Logger
	tracer         trace.Tracer
}

// New validates opts and compiles both schemas.
func New[In, Out any](opts Options) (*Action[In, Out], error) {
	if strings.TrimSpace(opts.Name) == "" {
		return nil, fmt.Errorf("action name is required")
	}
	if opts.Invoker == nil {
		return nil, fmt.Errorf("action %s: invoker is required", opts.Name)
	}
	if opts.Timeout < 0 {
		return nil, fmt.Errorf("action %s: timeout must not be negative", opts.Name)
	}
	if opts.MaxJobsActive < 0 {
		return nil, fmt.Errorf("action %s: max jobs active must not be negative", opts.Name)
	}

	in, err := validation.Compile(opts.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("action %s: input schema: %w", opts.Name, err)
	}
	out, err := validation.Compile(opts.OutputSchema)
	if err != nil {
		return nil, fmt.Errorf("action %s: output schema: %w", opts.Name, err)
	}

	failure := opts.FailureMessage
	if failure == "" {
		failure = fmt.Sprintf("Failed to run %s", opts.Name)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	return &Action[In, Out]{
		name:           opts.Name,
		taskType:       opts.TaskType,
		failureMessage: failure,
		timeout:        opts.Timeout,
		maxJobs:        opts.MaxJobsActive,
		input:          in,
		output:         out,
		invoke:         opts.Invoker,
		log:            log.WithFields(map[string]interface{}{"action": opts.Name}),
		tracer:         otel.Tracer(tracerName),
	}, nil
}

func (a *Action[In, Out]) Name() string     { return a.name }
func (a *Action[In, Out]) TaskType() string { return a.taskType }

// Timeout is the per-invocation bound, zero when unbounded.
func (a *Action[In, Out]) Timeout() time.Duration { return a.timeout }

func (a *Action[In, Out]) MaxJobsActive() int { return a.maxJobs }

func (a *Action[In, Out]) InputSchema() validation.JSONSchema  { return a.input.Schema() }
func (a *Action[In, Out]) OutputSchema() validation.JSONSchema { return a.output.Schema() }

// Execute runs the action on a loosely-typed input mapping.
func (a *Action[In, Out]) Execute(ctx context.Context, raw map[string]interface{}) Result[Out] {
	var out Out
	_, stdErr := a.execute(ctx, raw, func(data map[string]interface{}) *apperrors.StandardError {
		if err := decode(data, &out); err != nil {
			return apperrors.NewOutputInvalidError(err.Error())
		}
		return nil
	})
	if stdErr != nil {
		return Err[Out](a.message(stdErr), stdErr.Code)
	}
	return Ok(out)
}

// Call runs the action on a typed input.
func (a *Action[In, Out]) Call(ctx context.Context, in In) Result[Out] {
	raw := map[string]interface{}{}
	if err := decode(in, &raw); err != nil {
		stdErr := apperrors.NewInputParsingError(err)
		a.logFailure(stdErr, 0)
		return Err[Out](a.message(stdErr), stdErr.Code)
	}
	return a.Execute(ctx, raw)
}

// Run is Execute without the typed decoding step.
func (a *Action[In, Out]) Run(ctx context.Context, raw map[string]interface{}) Envelope {
	data, stdErr := a.execute(ctx, raw, nil)
	if stdErr != nil {
		return Envelope{Success: false, Error: a.message(stdErr), Code: stdErr.Code}
	}
	return Envelope{Success: true, Data: data}
}

// execute runs the action under one span and one metrics observation. accept,
// when set, gets the projected output and may still turn it into a failure.
func (a *Action[In, Out]) execute(ctx context.Context, raw map[string]interface{}, accept func(map[string]interface{}) *apperrors.StandardError) (map[string]interface{}, *apperrors.StandardError) {
	start := time.Now()
	ctx, span := a.tracer.Start(ctx, "gateway."+a.name, trace.WithAttributes(
		attribute.String("action", a.name),
		attribute.String("task_type", a.taskType),
	))
	defer span.End()

	data, stdErr := a.validateAndInvoke(ctx, raw)
	if stdErr == nil && accept != nil {
		stdErr = accept(data)
	}

	elapsed := time.Since(start)
	metrics.ActionDuration.WithLabelValues(a.name).Observe(elapsed.Seconds())

	if stdErr != nil {
		metrics.ActionsTotal.WithLabelValues(a.name, metrics.OutcomeFailure).Inc()
		metrics.ActionFailures.WithLabelValues(a.name, string(stdErr.Code)).Inc()
		span.RecordError(stdErr)
		span.SetStatus(codes.Error, string(stdErr.Code))
		a.logFailure(stdErr, elapsed)
		return nil, stdErr
	}

	metrics.ActionsTotal.WithLabelValues(a.name, metrics.OutcomeSuccess).Inc()
	span.SetStatus(codes.Ok, "")
	a.log.Info("action completed", map[string]interface{}{
		"durationMs": elapsed.Milliseconds(),
	})
	return data, nil
}

func (a *Action[In, Out]) validateAndInvoke(ctx context.Context, raw map[string]interface{}) (map[string]interface{}, *apperrors.StandardError) {
	if result := a.input.Validate(raw); !result.Valid {
		return nil, apperrors.NewValidationError(strings.Join(result.GetErrorMessages(), "; "))
	}

	output, err := a.invokeSafely(ctx, validation.Project(raw, a.input.Schema()))
	if err != nil {
		if isTimeout(err) {
			return nil, apperrors.NewInvocationTimeoutError(err)
		}
		return nil, apperrors.NewInvocationError(err)
	}

	if len(output) == 0 {
		return nil, apperrors.NewOutputInvalidError("inference returned no output")
	}
	if result := a.output.Validate(output); !result.Valid {
		return nil, apperrors.NewOutputInvalidError(strings.Join(result.GetErrorMessages(), "; "))
	}

	return validation.Project(output, a.output.Schema()), nil
}

// invokeSafely converts an invoker panic into an error.
func (a *Action[In, Out]) invokeSafely(ctx context.Context, input map[string]interface{}) (output map[string]interface{}, err error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	metrics.ActionsInFlight.WithLabelValues(a.name).Inc()
	defer metrics.ActionsInFlight.WithLabelValues(a.name).Dec()

	defer func() {
		if r := recover(); r != nil {
			output = nil
			err = fmt.Errorf("invoker panicked: %v", r)
		}
	}()

	return a.invoke(ctx, input)
}

func (a *Action[In, Out]) message(stdErr *apperrors.StandardError) string {
	if stdErr.Code == apperrors.ErrCodeValidationFailed && stdErr.Details != "" {
		return fmt.Sprintf("%s: %s: %s", a.failureMessage, stdErr.Message, stdErr.Details)
	}
	return fmt.Sprintf("%s: %s", a.failureMessage, stdErr.Message)
}

func (a *Action[In, Out]) logFailure(stdErr *apperrors.StandardError, elapsed time.Duration) {
	fields := map[string]interface{}{
		"errorCode":  string(stdErr.Code),
		"category":   apperrors.GetErrorCategory(stdErr.Code),
		"details":    stdErr.Details,
		"durationMs": elapsed.Milliseconds(),
	}
	if apperrors.GetErrorCategory(stdErr.Code) == apperrors.CategoryValidation {
		a.log.Warn("action rejected", fields)
		return
	}
	a.log.Error("action failed", fields)
}

// isTimeout reports deadline expiry anywhere in the chain, including
// transport errors that implement net.Error.
func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return stderrors.As(err, &t) && t.Timeout()
}

func decode(in, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           out,
		WeaklyTypedInput: false,
		ErrorUnused:      false,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}
