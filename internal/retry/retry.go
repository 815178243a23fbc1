// Package retry applies a bounded exponential backoff to remote calls.
// Only transient failures are retried; authentication, conflict, validation and
// other client-side errors return on the first attempt.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/juju/clock"
	jujuretry "github.com/juju/retry"

	"github.com/kompox/tmpcluster/domain/model"
)

// Default policy values.
const (
	DefaultAttempts    = 4
	DefaultDelay       = 2 * time.Second
	DefaultMaxDelay    = 30 * time.Second
	DefaultMaxDuration = 2 * time.Minute
)

// Policy configures retries around a single remote call.
type Policy struct {
	Attempts    int           // total attempts including the first; 1 disables retry
	Delay       time.Duration // delay before the second attempt, doubled afterwards
	MaxDelay    time.Duration // cap for a single delay (0 = uncapped)
	MaxDuration time.Duration // overall budget (0 = attempts only)
	Clock       clock.Clock   // defaults to wall clock

	// Notify is called for every failed attempt that will be retried.
	Notify func(call string, err error, attempt int)
}

// DefaultPolicy returns the policy used when configuration does not override it.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:    DefaultAttempts,
		Delay:       DefaultDelay,
		MaxDelay:    DefaultMaxDelay,
		MaxDuration: DefaultMaxDuration,
	}
}

// Validate checks the numeric fields.
func (p Policy) Validate() error {
	if p.Attempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1, got %d", p.Attempts)
	}
	if p.Delay <= 0 {
		return fmt.Errorf("retry delay must be positive, got %s", p.Delay)
	}
	if p.MaxDelay < 0 || p.MaxDuration < 0 {
		return fmt.Errorf("retry maxDelay and maxDuration must not be negative")
	}
	return nil
}

// Do runs fn until it succeeds, fails fatally, or the policy is exhausted.
// An exhausted transient failure is reported as model.ErrRemoteUnavailable.
func (p Policy) Do(ctx context.Context, call string, fn func(ctx context.Context) error) error {
	if err := p.Validate(); err != nil {
		return err
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.WallClock
	}
	var last error
	err := jujuretry.Call(jujuretry.CallArgs{
		Func: func() error {
			last = fn(ctx)
			return last
		},
		IsFatalError: func(err error) bool {
			return !IsTransient(err)
		},
		NotifyFunc: func(err error, attempt int) {
			if p.Notify != nil && attempt < p.Attempts {
				p.Notify(call, err, attempt)
			}
		},
		Attempts:    p.Attempts,
		Delay:       p.Delay,
		MaxDelay:    p.MaxDelay,
		MaxDuration: p.MaxDuration,
		BackoffFunc: jujuretry.DoubleDelay,
		Clock:       clk,
		Stop:        ctx.Done(),
	})
	switch {
	case err == nil:
		return nil
	case jujuretry.IsAttemptsExceeded(err), jujuretry.IsDurationExceeded(err):
		return fmt.Errorf("%w: %s: %w", model.ErrRemoteUnavailable, call, jujuretry.LastError(err))
	case jujuretry.IsRetryStopped(err):
		if cerr := ctx.Err(); cerr != nil {
			return fmt.Errorf("%s: %w (last error: %v)", call, cerr, last)
		}
		return fmt.Errorf("%s: %w", call, last)
	}
	return err
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	for _, fatal := range []error{
		model.ErrAuthFailure,
		model.ErrNameConflict,
		model.ErrTemplateParameter,
		model.ErrResourceNotFound,
		model.ErrSettingsInvalid,
		context.Canceled,
		context.DeadlineExceeded,
	} {
		if errors.Is(err, fatal) {
			return false
		}
	}
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		return IsTransientStatus(respErr.StatusCode)
	}
	// Only network failures are retried; unclassified errors are not.
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// IsTransientStatus reports whether an HTTP status is retryable.
func IsTransientStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return code >= http.StatusInternalServerError
}
