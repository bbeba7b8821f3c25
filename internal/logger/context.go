// Package logger provides utilities for working with [zerolog.Logger]
// and [context.Context].
package logger

import (
	"context"
	"os"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

var ctxLoggerKey = ctxKey{}

// InContext returns a copy of ctx carrying l, retrievable with [FromContext].
func InContext(ctx context.Context, l zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey, l)
}

// FromContext returns the [zerolog.Logger] carried by ctx, or a new
// timestamped logger writing to stderr if ctx carries none.
func FromContext(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(ctxLoggerKey).(zerolog.Logger); ok {
		return l
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// FatalError logs msg and err at fatal level and terminates the process,
// matching this repo's convention of failing fast on unrecoverable
// startup errors.
func FatalError(msg string, err error) {
	zerolog.New(os.Stderr).With().Timestamp().Logger().Fatal().Err(err).Msg(msg)
}
