package logging

import (
	"context"
	"strconv"

	"go.uber.org/zap"
)

type runCtxKey struct{}
type shapeCtxKey struct{}

// WithRunID attaches a publish run ID to ctx.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runCtxKey{}, runID)
}

// RunIDFromContext returns the run ID carried by ctx, or "".
func RunIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(runCtxKey{}).(string)
	return id
}

// WithShape attaches the shape being processed to ctx.
func WithShape(ctx context.Context, shape string) context.Context {
	return context.WithValue(ctx, shapeCtxKey{}, shape)
}

// ShapeFromContext returns the shape name carried by ctx, or "".
func ShapeFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	name, _ := ctx.Value(shapeCtxKey{}).(string)
	return name
}

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 2)
	if id := RunIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("run.id", id))
	}
	if shape := ShapeFromContext(ctx); shape != "" {
		fields = append(fields, zap.String("shape", shape))
	}
	return fields
}

// RedactedString creates a field with the value replaced by its length.
func RedactedString(key, val string) zap.Field {
	return zap.String(key, "[REDACTED:"+strconv.Itoa(len(val))+"]")
}
