package cluster

import (
	"context"
)

// ensureResourceGroup creates the resource group unless it already exists.
// It reports whether the group was created by this call.
func (s *session) ensureResourceGroup(ctx context.Context, name, location string) (bool, error) {
	var exists bool
	err := s.call(ctx, "CheckResourceGroupExistence", func(ctx context.Context) error {
		var err error
		exists, err = s.remote.CheckResourceGroupExistence(ctx, name)
		return err
	})
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	err = s.call(ctx, "CreateResourceGroup", func(ctx context.Context) error {
		return s.remote.CreateResourceGroup(ctx, name, location)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// deleteResourceGroup starts deletion and returns once the request is accepted.
func (s *session) deleteResourceGroup(ctx context.Context, name string) error {
	return s.call(ctx, "BeginDeleteResourceGroup", func(ctx context.Context) error {
		return s.remote.BeginDeleteResourceGroup(ctx, name)
	})
}
