package gateway

import (
	apperrors "accreditation-gateway/internal/common/errors"
)

// Result is the uniform outcome of one action execution: either Success with
// Data, or a failure carrying a human-readable Error and its Code.
type Result[T any] struct {
	Success bool                `json:"success"`
	Data    *T                  `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
	Code    apperrors.ErrorCode `json:"errorCode,omitempty"`
}

// Ok wraps a payload.
func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: &data}
}

// Err builds a failed result.
func Err[T any](message string, code apperrors.ErrorCode) Result[T] {
	return Result[T]{Success: false, Error: message, Code: code}
}

// Envelope is the untyped Result handed to transports, which serialize it
// as-is into HTTP bodies and job variables.
type Envelope struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Code    apperrors.ErrorCode    `json:"errorCode,omitempty"`
}

// FailureEnvelope reports a failure raised outside an action, such as an
// unknown route or a rejected duplicate submission.
func FailureEnvelope(err *apperrors.StandardError) Envelope {
	return Envelope{Success: false, Error: err.Message, Code: err.Code}
}

// ToMap renders the envelope as job variables.
func (e Envelope) ToMap() map[string]interface{} {
	out := map[string]interface{}{"success": e.Success}
	if e.Data != nil {
		out["data"] = e.Data
	}
	if e.Error != "" {
		out["error"] = e.Error
	}
	if e.Code != "" {
		out["errorCode"] = string(e.Code)
	}
	return out
}
