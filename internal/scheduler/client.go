package scheduler

import (
	"fmt"

	"github.com/limiquantix/fleetsim/internal/domain"
)

// Client is the facade through which callers manage flavors, images, and
// servers. Every method takes the service's mutex for the duration of its
// registry access; placement itself is handled asynchronously by the
// dispatch loop, not synchronously from here.
type Client struct {
	svc    *Service
	closed bool
}

// NewFlavor registers a new flavor and returns it.
func (c *Client) NewFlavor(name string, cpuCount int32, memoryMB int64, labels map[string]string, metadata map[string]any) (*domain.Flavor, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	f := &domain.Flavor{
		ID:       c.svc.idGen.New(),
		Name:     name,
		CPUCount: cpuCount,
		MemoryMB: memoryMB,
		Labels:   labels,
		Metadata: metadata,
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	c.svc.mu.Lock()
	defer c.svc.mu.Unlock()
	c.svc.reg.flavors[f.ID] = f
	return f, nil
}

// FindFlavor returns the flavor with the given ID, or ErrNotFound.
func (c *Client) FindFlavor(id domain.ID) (*domain.Flavor, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	c.svc.mu.Lock()
	defer c.svc.mu.Unlock()
	f, ok := c.svc.reg.flavors[id]
	if !ok {
		return nil, fmt.Errorf("flavor %s: %w", id, domain.ErrNotFound)
	}
	return f, nil
}

// QueryFlavors returns every registered flavor.
func (c *Client) QueryFlavors() ([]*domain.Flavor, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	c.svc.mu.Lock()
	defer c.svc.mu.Unlock()
	out := make([]*domain.Flavor, 0, len(c.svc.reg.flavors))
	for _, f := range c.svc.reg.flavors {
		out = append(out, f)
	}
	return out, nil
}

// NewImage registers a new image and returns it.
func (c *Client) NewImage(name string, labels map[string]string, metadata map[string]any) (*domain.Image, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	img := &domain.Image{
		ID:       c.svc.idGen.New(),
		Name:     name,
		Labels:   labels,
		Metadata: metadata,
	}

	c.svc.mu.Lock()
	defer c.svc.mu.Unlock()
	c.svc.reg.images[img.ID] = img
	return img, nil
}

// FindImage returns the image with the given ID, or ErrNotFound.
func (c *Client) FindImage(id domain.ID) (*domain.Image, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	c.svc.mu.Lock()
	defer c.svc.mu.Unlock()
	img, ok := c.svc.reg.images[id]
	if !ok {
		return nil, fmt.Errorf("image %s: %w", id, domain.ErrNotFound)
	}
	return img, nil
}

// QueryImages returns every registered image.
func (c *Client) QueryImages() ([]*domain.Image, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	c.svc.mu.Lock()
	defer c.svc.mu.Unlock()
	out := make([]*domain.Image, 0, len(c.svc.reg.images))
	for _, img := range c.svc.reg.images {
		out = append(out, img)
	}
	return out, nil
}

// NewServer creates a server from flavor and image. When start is true, it
// is also enqueued for placement immediately; when false, the caller is
// expected to place it later by some other path of its own. submitted is
// incremented in both cases; queued only when start is true — a server
// created with start=false has been submitted to the fleet's accounting
// but has not yet asked to run.
func (c *Client) NewServer(name string, flavorID, imageID domain.ID, labels map[string]string, metadata map[string]any, start bool) (*domain.Server, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	c.svc.mu.Lock()
	flavor, ok := c.svc.reg.flavors[flavorID]
	if !ok {
		c.svc.mu.Unlock()
		return nil, fmt.Errorf("flavor %s: %w", flavorID, domain.ErrNotFound)
	}
	if _, ok := c.svc.reg.images[imageID]; !ok {
		c.svc.mu.Unlock()
		return nil, fmt.Errorf("image %s: %w", imageID, domain.ErrNotFound)
	}
	c.svc.mu.Unlock()

	server := domain.NewServer(c.svc.idGen.New(), *flavor, imageID, name, labels, metadata)

	c.svc.mu.Lock()
	defer c.svc.mu.Unlock()
	c.svc.reg.servers[server.ID] = server
	c.svc.submitted++

	if start {
		req := &Request{Server: server}
		c.svc.queued++
		c.svc.q.push(req)
		c.svc.pendingByServer[server.ID] = req
		c.svc.requestCycleLocked()
	}
	c.svc.publishMetricsLocked()
	return server, nil
}

// FindServer returns the server with the given ID, or ErrNotFound. A
// server remains queryable after it reaches a terminal state; it is only
// removed from the registry by an explicit delete.
func (c *Client) FindServer(id domain.ID) (*domain.Server, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	c.svc.mu.Lock()
	defer c.svc.mu.Unlock()
	server, ok := c.svc.reg.servers[id]
	if !ok {
		return nil, fmt.Errorf("server %s: %w", id, domain.ErrNotFound)
	}
	return server, nil
}

// QueryServers returns every registered server, including terminal ones
// not yet explicitly deleted.
func (c *Client) QueryServers() ([]*domain.Server, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	c.svc.mu.Lock()
	defer c.svc.mu.Unlock()
	out := make([]*domain.Server, 0, len(c.svc.reg.servers))
	for _, s := range c.svc.reg.servers {
		out = append(out, s)
	}
	return out, nil
}

// DeleteServer removes server from the registry, marking it DELETED. If
// the server still has a placement request sitting in the dispatch queue,
// that request is cancelled here so the dispatch loop never reserves
// capacity or calls Spawn for a server that no longer exists; if it is
// already running, the host is still expected to report its eventual
// termination, which the listener reconciles as usual.
func (c *Client) DeleteServer(id domain.ID) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.svc.mu.Lock()
	defer c.svc.mu.Unlock()
	server, ok := c.svc.reg.servers[id]
	if !ok {
		return fmt.Errorf("server %s: %w", id, domain.ErrNotFound)
	}
	if req, ok := c.svc.pendingByServer[id]; ok {
		req.Cancel()
	}
	server.MarkDeleted()
	delete(c.svc.reg.servers, id)
	return nil
}

// Close marks the client closed. A closed client's methods all return
// ErrClosed; the underlying Service is unaffected (other clients sharing
// it keep working).
func (c *Client) Close() error {
	c.closed = true
	return nil
}

func (c *Client) checkOpen() error {
	if c.closed {
		return domain.ErrClosed
	}
	return nil
}
