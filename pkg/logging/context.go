package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey int

const loggerKey contextKey = iota

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// EnsureLogger attaches fallback unless ctx already carries a logger.
func EnsureLogger(ctx context.Context, fallback *zerolog.Logger) context.Context {
	if _, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok {
		return ctx
	}
	return WithLogger(ctx, fallback)
}

// WithField adds a single field to the logger in the context.
func WithField(ctx context.Context, key string, value any) context.Context {
	logger := addField(FromContext(ctx).With(), key, value).Logger()
	return WithLogger(ctx, &logger)
}

// WithOperation tags log lines with the running operation (sync, plan, add, delete).
func WithOperation(ctx context.Context, operation string) context.Context {
	return WithField(ctx, "operation", operation)
}

// WithContact tags log lines with the display name of the contact being processed.
func WithContact(ctx context.Context, displayName string) context.Context {
	return WithField(ctx, "contact", displayName)
}

// WithDN tags log lines with a directory distinguished name.
func WithDN(ctx context.Context, dn string) context.Context {
	return WithField(ctx, "dn", dn)
}

// WithError adds an error to the context logger.
func WithError(ctx context.Context, err error) context.Context {
	if err == nil {
		return ctx
	}
	return WithField(ctx, "error", err)
}
