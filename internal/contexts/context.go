package contexts

import (
	"context"

	"github.com/glosshub/glosshub/internal/models"
)

// ContextKey defines the context key type.
type ContextKey string

const (
	// containerContextKey is used to store the context container in the context.
	containerContextKey ContextKey = "context_container"
)

// WithUser stores the user entity in the context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	container := getContainer(ctx)
	container.User = user

	return withContainer(ctx, container)
}

// GetUser retrieves the user entity from the context.
func GetUser(ctx context.Context) (*models.User, bool) {
	container := getContainer(ctx)
	return container.User, container.User != nil
}

// WithAuthClient stores the auth client entity in the context.
func WithAuthClient(ctx context.Context, client *models.AuthClient) context.Context {
	container := getContainer(ctx)
	container.AuthClient = client

	return withContainer(ctx, container)
}

// GetAuthClient retrieves the auth client entity from the context.
func GetAuthClient(ctx context.Context) (*models.AuthClient, bool) {
	container := getContainer(ctx)
	return container.AuthClient, container.AuthClient != nil
}

// WithTraceID stores the trace id in the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	container := getContainer(ctx)
	container.TraceID = &traceID

	return withContainer(ctx, container)
}

// GetTraceID retrieves the trace id from the context.
func GetTraceID(ctx context.Context) (string, bool) {
	container := getContainer(ctx)
	if container.TraceID != nil {
		return *container.TraceID, true
	}

	return "", false
}

// WithRequestID stores the request id in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	container := getContainer(ctx)
	container.RequestID = &requestID

	return withContainer(ctx, container)
}

// GetRequestID retrieves the request id from the context.
func GetRequestID(ctx context.Context) (string, bool) {
	container := getContainer(ctx)
	if container.RequestID != nil {
		return *container.RequestID, true
	}

	return "", false
}

// WithOperationName stores the operation name in the context.
func WithOperationName(ctx context.Context, name string) context.Context {
	container := getContainer(ctx)
	container.OperationName = &name

	return withContainer(ctx, container)
}

// GetOperationName retrieves the operation name from the context.
func GetOperationName(ctx context.Context) (string, bool) {
	container := getContainer(ctx)
	if container.OperationName != nil {
		return *container.OperationName, true
	}

	return "", false
}
