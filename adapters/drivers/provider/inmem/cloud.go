// Package inmem is an in-process stand-in for Azure Resource Manager.
//
// Resource groups are created synchronously. Deployments and deletions move
// one step per Advance call:
//
//	deployment: Accepted -> Running -> Succeeded (or Failed when scripted)
//	group:      Succeeded -> Deleting -> gone
package inmem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kompox/tmpcluster/domain/model"
)

// Provisioning states used by the simulated cloud.
const (
	StateAccepted  = "Accepted"
	StateRunning   = "Running"
	StateSucceeded = "Succeeded"
	StateFailed    = "Failed"
	StateDeleting  = "Deleting"
)

type deployment struct {
	state    string
	spec     *model.DeploymentSpec
	failNext bool
}

type group struct {
	location    string
	state       string
	deployments map[string]*deployment
}

// Cloud is safe for concurrent use.
type Cloud struct {
	mu            sync.Mutex
	groups        map[string]*group
	advanceOnRead bool
	authFailure   bool
	failDeploy    map[string]bool
	tokens        int
	submissions   int
}

// NewCloud returns an empty subscription. With advanceOnRead set, every state
// read advances the resource it reads by one step after reporting it.
func NewCloud(advanceOnRead bool) *Cloud {
	return &Cloud{
		groups:        map[string]*group{},
		advanceOnRead: advanceOnRead,
		failDeploy:    map[string]bool{},
	}
}

// SetAuthFailure makes AcquireToken fail until reset.
func (c *Cloud) SetAuthFailure(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authFailure = v
}

// FailDeployment makes the next deployment submitted to resourceGroup end in Failed.
func (c *Cloud) FailDeployment(resourceGroup string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failDeploy[resourceGroup] = true
}

// SetResourceGroupState overrides the provisioning state of an existing group.
func (c *Cloud) SetResourceGroupState(name, state string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.groups[name]
	if !ok {
		return fmt.Errorf("resource group %s: %w", name, model.ErrResourceNotFound)
	}
	g.state = state
	return nil
}

// Advance moves every in-flight deployment and deletion one step forward.
func (c *Cloud) Advance() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name := range c.groups {
		c.advanceGroupLocked(name)
	}
}

func (c *Cloud) advanceGroupLocked(name string) {
	g := c.groups[name]
	if g.state == StateDeleting {
		delete(c.groups, name)
		return
	}
	for _, d := range g.deployments {
		advanceDeployment(d)
	}
}

func advanceDeployment(d *deployment) {
	switch d.state {
	case StateAccepted:
		d.state = StateRunning
	case StateRunning:
		if d.failNext {
			d.state = StateFailed
		} else {
			d.state = StateSucceeded
		}
	}
}

// Deployment returns the spec last submitted under resourceGroup/name.
func (c *Cloud) Deployment(resourceGroup, name string) (*model.DeploymentSpec, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.groups[resourceGroup]
	if !ok {
		return nil, false
	}
	d, ok := g.deployments[name]
	if !ok {
		return nil, false
	}
	return d.spec, true
}

// Submissions counts accepted deployment submissions.
func (c *Cloud) Submissions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submissions
}

// AcquireToken implements model.TokenPort.
func (c *Cloud) AcquireToken(ctx context.Context, settings *model.OperatorSettings) (*model.AccessToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.authFailure || settings == nil || settings.ClientSecret.Reveal() == "" {
		return nil, fmt.Errorf("%w: inmem identity provider rejected the client", model.ErrAuthFailure)
	}
	c.tokens++
	return &model.AccessToken{Token: uuid.NewString(), ExpiresOn: time.Now().Add(time.Hour)}, nil
}

// Tokens counts issued tokens.
func (c *Cloud) Tokens() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens
}

// Open implements model.RemotePort.
func (c *Cloud) Open(_ context.Context, _ *model.OperatorSettings, token *model.AccessToken) (model.RemoteSession, error) {
	if token == nil || token.Token == "" {
		return nil, model.ErrAuthFailure
	}
	return &session{cloud: c}, nil
}

// session implements model.RemoteSession against the shared cloud.
type session struct {
	cloud *Cloud
}

func (s *session) CheckResourceGroupExistence(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c := s.cloud
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.groups[name]
	return ok, nil
}

func (s *session) CreateResourceGroup(ctx context.Context, name, location string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c := s.cloud
	c.mu.Lock()
	defer c.mu.Unlock()
	if g, ok := c.groups[name]; ok {
		g.location = location
		return nil
	}
	c.groups[name] = &group{location: location, state: StateSucceeded, deployments: map[string]*deployment{}}
	return nil
}

func (s *session) ResourceGroupState(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := s.cloud
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.groups[name]
	if !ok {
		return "", fmt.Errorf("resource group %s: %w", name, model.ErrResourceNotFound)
	}
	state := g.state
	if c.advanceOnRead && state == StateDeleting {
		delete(c.groups, name)
	}
	return state, nil
}

func (s *session) BeginDeleteResourceGroup(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c := s.cloud
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.groups[name]
	if !ok {
		return fmt.Errorf("resource group %s: %w", name, model.ErrResourceNotFound)
	}
	g.state = StateDeleting
	return nil
}

func (s *session) CheckDeploymentExistence(ctx context.Context, resourceGroup, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c := s.cloud
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.groups[resourceGroup]
	if !ok {
		return false, nil
	}
	_, ok = g.deployments[name]
	return ok, nil
}

func (s *session) BeginDeployment(ctx context.Context, resourceGroup, name string, spec *model.DeploymentSpec) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c := s.cloud
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.groups[resourceGroup]
	if !ok {
		return fmt.Errorf("resource group %s: %w", resourceGroup, model.ErrResourceNotFound)
	}
	if g.state == StateDeleting {
		return fmt.Errorf("resource group %s is being deleted", resourceGroup)
	}
	g.deployments[name] = &deployment{state: StateAccepted, spec: spec, failNext: c.failDeploy[resourceGroup]}
	delete(c.failDeploy, resourceGroup)
	c.submissions++
	return nil
}

func (s *session) DeploymentState(ctx context.Context, resourceGroup, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := s.cloud
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.groups[resourceGroup]
	if !ok {
		return "", fmt.Errorf("resource group %s: %w", resourceGroup, model.ErrResourceNotFound)
	}
	d, ok := g.deployments[name]
	if !ok {
		return "", fmt.Errorf("deployment %s/%s: %w", resourceGroup, name, model.ErrResourceNotFound)
	}
	state := d.state
	if c.advanceOnRead {
		advanceDeployment(d)
	}
	return state, nil
}
