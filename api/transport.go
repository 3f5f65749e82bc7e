// Package api defines public API contracts for xshm.
package api

import "context"

// Transport is the byte-record send/receive contract a channel exposes to
// callers that don't need its full surface (metrics, listener, debug dump).
// *channel.DualChannel satisfies this directly — its Send/Receive methods
// already have this exact shape, so no wrapper type is needed.
type Transport interface {
	Send(ctx context.Context, data []byte) error
	Receive(ctx context.Context) ([]byte, error)
}
