package cluster

import (
	"context"
	"fmt"
	"time"

	"github.com/juju/clock"

	"github.com/kompox/tmpcluster/domain/model"
)

// DefaultWatchInterval is the polling interval used when WatchInput.Interval is zero.
const DefaultWatchInterval = 15 * time.Second

// WatchInput represents a command to poll a cluster until it settles.
type WatchInput struct {
	Name     string
	Interval time.Duration
	// Until decides when to stop. Defaults to ClusterOperationStatus.Terminal.
	Until func(model.ClusterOperationStatus) bool
	// OnChange is called with the first result and on every status change.
	OnChange func(*StatusOutput)
}

// WatchOutput carries the last observed status.
type WatchOutput struct {
	Last *StatusOutput
}

// Watch polls Status until Until reports true or ctx ends.
func (u *UseCase) Watch(ctx context.Context, in *WatchInput) (*WatchOutput, error) {
	if in == nil {
		return nil, model.ErrClusterInvalid
	}
	interval := in.Interval
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	until := in.Until
	if until == nil {
		until = model.ClusterOperationStatus.Terminal
	}
	clk := u.Clock
	if clk == nil {
		clk = clock.WallClock
	}

	var last *StatusOutput
	for {
		out, err := u.Status(ctx, &StatusInput{Name: in.Name})
		if err != nil {
			return &WatchOutput{Last: last}, err
		}
		if last == nil || last.Status != out.Status {
			if in.OnChange != nil {
				in.OnChange(out)
			}
		}
		last = out
		if until(out.Status) {
			return &WatchOutput{Last: last}, nil
		}
		select {
		case <-ctx.Done():
			return &WatchOutput{Last: last}, fmt.Errorf("watch %s: %w", in.Name, ctx.Err())
		case <-clk.After(interval):
		}
	}
}
