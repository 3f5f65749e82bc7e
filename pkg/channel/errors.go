package channel

import "errors"

// ErrNoPeer is returned by Send when StrictPeer is set and the outbound
// ring's active_readers is currently zero — nobody is attached to read
// what would be written.
var ErrNoPeer = errors.New("channel: no peer attached")

// ErrClosed is returned by DualChannel.Send and DualChannel.Receive when
// called after Close.
var ErrClosed = errors.New("channel: endpoint closed")

// ErrAlreadyOpen is returned by Serve or Connect when this process already
// has a channel open under the same name.
var ErrAlreadyOpen = errors.New("channel: already open in this process")
