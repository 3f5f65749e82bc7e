// Package adapter wires xshm's api contracts to concrete channels and to
// external systems: healthcheck.Handler, structured audit logging, otel
// provider lookup, and client-side reattach after a server restart.
package adapter

import (
	"errors"

	"github.com/heptiolabs/healthcheck"

	"github.com/srediag/xshm/api"
	"github.com/srediag/xshm/pkg/channel"
)

// ChannelHealthAdapter reports liveness as "peer currently attached",
// derived from active_readers rather than an application-level heartbeat.
type ChannelHealthAdapter struct {
	c *channel.DualChannel
}

// NewChannelHealthAdapter wraps an already-open channel.
func NewChannelHealthAdapter(c *channel.DualChannel) *ChannelHealthAdapter {
	return &ChannelHealthAdapter{c: c}
}

// Check returns a healthcheck.Check — the heptiolabs/healthcheck building
// block — suitable for AddLivenessCheck.
func (a *ChannelHealthAdapter) Check() healthcheck.Check {
	return func() error {
		if !a.c.PeerPresent() {
			return errors.New("xshm: no peer attached")
		}
		return nil
	}
}

// Handler builds a ready-to-serve healthcheck.Handler with this channel's
// liveness check registered under name.
func (a *ChannelHealthAdapter) Handler(name string) healthcheck.Handler {
	h := healthcheck.NewHandler()
	h.AddLivenessCheck(name, a.Check())
	return h
}

// LivenessCheck implements api.Health. It always reports on the channel
// this adapter wraps; name is not used to select a channel.
func (a *ChannelHealthAdapter) LivenessCheck(name string) (bool, error) {
	err := a.Check()()
	return err == nil, err
}

var _ api.Health = (*ChannelHealthAdapter)(nil)
