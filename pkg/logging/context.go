package logging

import (
	"context"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	IdentityKey  contextKey = "client_identity"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, RequestIDKey)
}

func GetIdentity(ctx context.Context) string {
	return stringValue(ctx, IdentityKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// GetLogFields returns the request-scoped key/value pairs stored in ctx.
func GetLogFields(ctx context.Context) []interface{} {
	fields := make([]interface{}, 0, 4)

	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, string(RequestIDKey), requestID)
	}

	if identity := GetIdentity(ctx); identity != "" {
		fields = append(fields, string(IdentityKey), identity)
	}

	return fields
}
