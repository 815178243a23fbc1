package logging

import (
	"context"
	"time"
	"unicode/utf8"
)

// maxSpanErrLen bounds the error text attached to an END line.
const maxSpanErrLen = 32

// Span emits a "<prefix>:<name>:START" line and returns a context whose logger
// carries kv, plus a cleanup that emits "<prefix>:<name>:END:OK" or
// "<prefix>:<name>:END:FAILED" with the elapsed seconds.
//
// Usage:
//
//	ctx, cleanup := logging.Span(ctx, "ARM", "CreateResourceGroup", "resourceGroup", rg)
//	defer func() { cleanup(err) }()
func Span(ctx context.Context, prefix, name string, kv ...any) (context.Context, func(err error)) {
	startAt := time.Now()
	logger := FromContext(ctx)
	if len(kv) > 0 {
		logger = logger.With(kv...)
	}
	ctx = WithLogger(ctx, logger)
	tag := prefix + ":" + name
	logger.Info(ctx, tag+":START")

	return ctx, func(err error) {
		elapsed := time.Since(startAt).Seconds()
		if err == nil {
			logger.Info(ctx, tag+":END:OK", "elapsed", elapsed)
			return
		}
		logger.Warn(ctx, tag+":END:FAILED", "err", ShortError(err), "elapsed", elapsed)
	}
}

// ShortError truncates an error message for single-line log attributes.
// The cut never splits a UTF-8 sequence.
func ShortError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if len(msg) <= maxSpanErrLen {
		return msg
	}
	cut := maxSpanErrLen
	for cut > 0 && !utf8.RuneStart(msg[cut]) {
		cut--
	}
	return msg[:cut] + "..."
}
