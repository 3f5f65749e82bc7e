package channel

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/valyala/bytebufferpool"

	"github.com/srediag/xshm/internal/log"
	"github.com/srediag/xshm/internal/shm"
	"github.com/srediag/xshm/internal/xerr"
	"github.com/srediag/xshm/pkg/events"
	"github.com/srediag/xshm/pkg/ring"
)

var logger = log.New("channel")

// DualChannel is one bidirectional byte-record link built from a single
// shared region holding two ByteStream rings back to back, plus one Event
// Set signaling across both directions. Server and Client each see the
// same two rings with the roles swapped: out is always "the ring I
// write", in is always "the ring I read", regardless of which side
// created the mapping.
//
// The two rings share a single "SHM_<name>" region rather than a separate
// region per direction, so there is exactly one mapping to create, open,
// and tear down per channel.
type DualChannel struct {
	name   string
	cfg    Config
	region *shm.Region
	out    *ring.ByteStream
	in     *ring.ByteStream
	events *events.Set
	role   events.Role

	metrics *metrics
	otel    *otelHooks

	listener *Listener

	closeOnce sync.Once
	closed    atomic.Bool
}

// PeerPresent reports whether the outbound ring currently has at least one
// attached reader signalled via active_readers — i.e. whether writing to
// out right now stands a chance of being read.
func (c *DualChannel) PeerPresent() bool {
	return c.out.Header().ActiveReaderCount() > 0
}

// Send writes one record to the outbound ring and signals DATA_AVAILABLE.
// If cfg.StrictPeer is set and nobody is attached to the outbound ring's
// reader count, it returns ErrNoPeer instead of dropping into the void.
func (c *DualChannel) Send(ctx context.Context, rec []byte) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if c.cfg.StrictPeer && c.out.Header().ActiveReaderCount() == 0 {
		return ErrNoPeer
	}

	ctx, span := c.otel.startSpan(ctx, "xshm.send")
	defer span.End()

	dropped, err := c.out.Write(rec)
	if err != nil {
		return err
	}
	c.metrics.bytesSent.Add(float64(len(rec)))
	c.metrics.recordsSent.Inc()
	c.metrics.recordsDropped.Add(float64(dropped))
	c.otel.recordSent(ctx, len(rec))

	return c.events.Signal(events.DataAvailable)
}

// Receive returns the next queued record on the inbound ring. When
// cfg.Blocking is true it waits up to cfg.TimeoutMS for DATA_AVAILABLE
// before giving up with xerr.TimeoutError; otherwise it returns
// xerr.EmptyError immediately when nothing is queued.
func (c *DualChannel) Receive(ctx context.Context) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	ctx, span := c.otel.startSpan(ctx, "xshm.receive")
	defer span.End()

	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)
	if cap(bb.B) < int(ring.MaxRecord) {
		bb.B = make([]byte, ring.MaxRecord)
	} else {
		bb.B = bb.B[:ring.MaxRecord]
	}

	n, err := c.tryReceive(bb.B)
	if err == nil {
		return c.deliver(ctx, bb.B, n), nil
	}
	if !c.cfg.Blocking || !isEmpty(err) {
		return nil, err
	}

	if err := c.events.Wait(events.DataAvailable, c.cfg.TimeoutMS); err != nil {
		return nil, err
	}
	n, err = c.tryReceive(bb.B)
	if err != nil {
		return nil, err
	}
	return c.deliver(ctx, bb.B, n), nil
}

func (c *DualChannel) tryReceive(out []byte) (int, error) {
	return c.in.TryRead(out)
}

func (c *DualChannel) deliver(ctx context.Context, buf []byte, n int) []byte {
	c.metrics.bytesReceived.Add(float64(n))
	c.metrics.recordsReceived.Inc()
	c.otel.recordReceived(ctx, n)
	rec := make([]byte, n)
	copy(rec, buf[:n])
	return rec
}

func isEmpty(err error) bool {
	e, ok := err.(*xerr.Error)
	return ok && e.Code() == xerr.Empty
}

// Debug is a point-in-time view of both rings — e.g. for an operator CLI
// printing channel state without needing the Prometheus scrape path.
type Debug struct {
	Name string
	Out  ring.Snapshot
	In   ring.Snapshot
}

// DebugDump returns the current header state of both rings.
func (c *DualChannel) DebugDump() Debug {
	return Debug{
		Name: c.name,
		Out:  c.out.Header().Snapshot(),
		In:   c.in.Header().Snapshot(),
	}
}

// Close idempotently tears down the channel: stops any running Listener,
// drops this side's active_readers count if it ever incremented one,
// unmaps the event set, and unmaps the data region.
func (c *DualChannel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		if c.listener != nil {
			c.listener.Stop()
		}
		c.in.Header().DecActiveReaders()
		unregisterChannel(c.name)
		if e := c.events.Close(); e != nil {
			err = e
		}
		if e := c.region.Close(); e != nil {
			err = e
		}
		logger.Debugf("channel %q closed", c.name)
	})
	return err
}
