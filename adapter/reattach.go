package adapter

import (
	"context"

	"github.com/srediag/xshm/pkg/channel"
)

// Reattach calls channel.Connect once for name, for a client that observed
// DISCONNECT and wants to resume once the server restarts in place under
// the same name; the bounded backoff is Connect's own retry of the region
// and event-set open. It is Connect's exact behavior;
// this wrapper exists so a DISCONNECT handler has a name that says what
// it's doing at the call site.
func Reattach(ctx context.Context, name string, opts ...channel.Option) (*channel.DualChannel, error) {
	return channel.Connect(ctx, name, opts...)
}
