package cluster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kompox/tmpcluster/domain/model"
	"github.com/kompox/tmpcluster/internal/logging"
	"github.com/kompox/tmpcluster/internal/metrics"
	"github.com/kompox/tmpcluster/internal/retry"
)

// session holds what one operation uses end to end: a single snapshot, a
// single token and the remote session opened with them.
type session struct {
	snap   *model.Snapshot
	remote model.RemoteSession
	policy retry.Policy
	uc     *UseCase
}

// snapshot returns the current snapshot or ErrNotConfigured when settings are
// missing, or templates are missing and needTemplates is set.
func (u *UseCase) snapshot(needTemplates bool) (*model.Snapshot, error) {
	var snap *model.Snapshot
	if u.Snapshots != nil {
		snap = u.Snapshots.Current()
	}
	if snap == nil || snap.Settings == nil {
		return nil, fmt.Errorf("%w: no operator settings", model.ErrNotConfigured)
	}
	if needTemplates && snap.Templates == nil {
		return nil, fmt.Errorf("%w: no template bundle", model.ErrNotConfigured)
	}
	return snap, nil
}

// open acquires a fresh token and opens a remote session for snap.
// Token acquisition is never retried.
func (u *UseCase) open(ctx context.Context, snap *model.Snapshot) (*session, error) {
	token, err := u.TokenPort.AcquireToken(ctx, snap.Settings)
	if err != nil {
		if errors.Is(err, model.ErrAuthFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", model.ErrAuthFailure, err)
	}
	if token == nil || token.Token == "" {
		return nil, fmt.Errorf("%w: identity provider returned no token", model.ErrAuthFailure)
	}
	remote, err := u.RemotePort.Open(ctx, snap.Settings, token)
	if err != nil {
		return nil, fmt.Errorf("open remote session: %w", err)
	}
	return &session{snap: snap, remote: remote, policy: u.retryPolicy(ctx), uc: u}, nil
}

func (u *UseCase) retryPolicy(ctx context.Context) retry.Policy {
	p := u.Retry
	if p.Attempts == 0 {
		p = retry.DefaultPolicy()
		p.Clock = u.Retry.Clock
	}
	logger := logging.FromContext(ctx)
	notify := p.Notify
	p.Notify = func(call string, err error, attempt int) {
		logger.Warn(ctx, "remote call failed, retrying", "call", call, "attempt", attempt, "err", logging.ShortError(err))
		u.Metrics.IncRemoteRetries(call)
		if notify != nil {
			notify(call, err, attempt)
		}
	}
	return p
}

// call runs one remote call under the retry policy and records its result.
func (s *session) call(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	err := s.policy.Do(ctx, name, fn)
	s.uc.Metrics.ObserveRemoteCall(name, err)
	return err
}

// observe records a completed public operation.
func (u *UseCase) observe(operation string, start time.Time, err error) {
	u.Metrics.ObserveOperation(operation, err, time.Since(start))
}

// journal appends rec, completed with the outcome of the operation that
// started at start. Journal failures are logged and never change the result.
func (u *UseCase) journal(ctx context.Context, rec *model.OperationRecord, start time.Time, err error) {
	if u.Journal == nil || rec.Cluster == "" {
		return
	}
	rec.StartedAt = start.UTC()
	rec.Duration = time.Since(start)
	rec.Status = metrics.StatusOK
	if err != nil {
		rec.Status = metrics.StatusError
		rec.Error = err.Error()
	}
	if jerr := u.Journal.Append(ctx, rec); jerr != nil {
		logging.FromContext(ctx).Warn(ctx, "operation journal append failed", "operation", rec.Operation, "cluster", rec.Cluster, "err", jerr)
	}
}
