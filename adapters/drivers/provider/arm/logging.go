package arm

import (
	"context"

	"github.com/kompox/tmpcluster/internal/logging"
)

// withMethodLogger implements the Span pattern for ARM driver logging.
//
// Usage:
//
//	ctx, cleanup := withMethodLogger(ctx, "CreateResourceGroup")
//	defer func() { cleanup(err) }()
//
// Log message format:
// - START:  ARM:<method>:START (with driver=ARM.<method> in logger attributes)
// - END:    ARM:<method>:END:OK or ARM:<method>:END:FAILED (with err, elapsed)
func withMethodLogger(ctx context.Context, method string, kv ...any) (context.Context, func(err error)) {
	return logging.Span(ctx, "ARM", method, append([]any{"driver", "ARM." + method}, kv...)...)
}
