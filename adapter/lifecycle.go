package adapter

import (
	"context"

	"github.com/srediag/xshm/api"
	"github.com/srediag/xshm/pkg/channel"
)

// ChannelLifecycle implements api.Lifecycle on top of pkg/channel's
// registry: Start serves a fresh channel, Stop closes and unregisters it,
// Reload closes whatever is registered (if anything) and reconnects as a
// client — the in-process equivalent of a hot restart.
type ChannelLifecycle struct {
	opts []channel.Option
}

// NewChannelLifecycle builds a Lifecycle that applies opts to every
// channel it starts or reloads.
func NewChannelLifecycle(opts ...channel.Option) *ChannelLifecycle {
	return &ChannelLifecycle{opts: opts}
}

// Start implements api.Lifecycle.
func (l *ChannelLifecycle) Start(name string) error {
	_, err := channel.Serve(name, l.opts...)
	return err
}

// Stop implements api.Lifecycle.
func (l *ChannelLifecycle) Stop(name string) error {
	c, ok := channel.Lookup(name)
	if !ok {
		return channel.ErrClosed
	}
	return c.Close()
}

// Reload implements api.Lifecycle: it drops whatever this process has
// open under name, then reconnects as a client.
func (l *ChannelLifecycle) Reload(name string) error {
	if c, ok := channel.Lookup(name); ok {
		_ = c.Close()
	}
	_, err := Reattach(context.Background(), name, l.opts...)
	return err
}

var _ api.Lifecycle = (*ChannelLifecycle)(nil)
