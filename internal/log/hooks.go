package log

import (
	"context"

	"github.com/glosshub/glosshub/internal/contexts"
)

// Hook enriches a log entry with fields derived from the context.
type Hook interface {
	Apply(ctx context.Context, msg string, fields ...Field) []Field
}

// HookFunc adapts a function to the Hook interface.
type HookFunc func(ctx context.Context, msg string, fields ...Field) []Field

func (f HookFunc) Apply(ctx context.Context, msg string, fields ...Field) []Field {
	return f(ctx, msg, fields...)
}

// traceFields adds trace id, request id and operation name to log entries
// when they are present in the context.
func traceFields(ctx context.Context, msg string, fields ...Field) []Field {
	if ctx == nil {
		return fields
	}

	if traceID, ok := contexts.GetTraceID(ctx); ok {
		fields = append(fields, String("trace_id", traceID))
	}

	if requestID, ok := contexts.GetRequestID(ctx); ok {
		fields = append(fields, String("request_id", requestID))
	}

	if operationName, ok := contexts.GetOperationName(ctx); ok {
		fields = append(fields, String("operation_name", operationName))
	}

	return fields
}
