package channel

import (
	"context"

	"github.com/cenkalti/backoff/v4"

	"github.com/srediag/xshm/internal/shm"
	"github.com/srediag/xshm/pkg/events"
	"github.com/srediag/xshm/pkg/ring"
)

// Serve creates the named channel's region and event set fresh, failing if
// either already exists. It is the Server half of the C6 Endpoint Façade:
// exactly one process may call Serve for a given name at a time.
func Serve(name string, opts ...Option) (*DualChannel, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	half := ring.HeaderSize + int(cfg.Size)
	region, err := shm.Create(shm.Options{Name: regionName(name), Size: 2 * half, Exclusive: true})
	if err != nil {
		return nil, err
	}

	out, err := ring.InitByteStream(region.Addr[:half], cfg.Size)
	if err != nil {
		_ = region.Close()
		return nil, err
	}
	in, err := ring.InitByteStream(region.Addr[half:], cfg.Size)
	if err != nil {
		_ = region.Close()
		return nil, err
	}

	evset, err := events.Create(name, events.Server)
	if err != nil {
		_ = region.Close()
		return nil, err
	}

	c := newDualChannel(name, cfg, region, out, in, evset, events.Server)
	if err := registerChannel(c); err != nil {
		_ = evset.Close()
		_ = region.Close()
		return nil, err
	}
	in.Header().IncActiveReaders()
	logger.Infof("channel %q serving, size=%d", name, cfg.Size)
	return c, nil
}

// Connect opens a channel a Server already created, retrying with bounded
// exponential backoff until the region and event set appear or
// cfg.ConnectRetries is exhausted. It is the Client half of C6.
func Connect(ctx context.Context, name string, opts ...Option) (*DualChannel, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	half := ring.HeaderSize + int(cfg.Size)

	var region *shm.Region
	var evset *events.Set
	open := func() error {
		r, err := shm.Open(regionName(name), 2*half)
		if err != nil {
			return err
		}
		e, err := events.Create(name, events.Client)
		if err != nil {
			_ = r.Close()
			return err
		}
		region, evset = r, e
		return nil
	}
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = cfg.RetryInterval
	bo := backoff.WithContext(backoff.WithMaxRetries(eb, cfg.ConnectRetries), ctx)
	if err := backoff.Retry(open, bo); err != nil {
		return nil, err
	}

	// The server's out-ring is this side's in-ring, and vice versa: the two
	// rings packed in the region never change meaning, only which side
	// calls them "out" and "in".
	out, err := ring.OpenByteStream(region.Addr[half:], cfg.Size)
	if err != nil {
		_ = evset.Close()
		_ = region.Close()
		return nil, err
	}
	in, err := ring.OpenByteStream(region.Addr[:half], cfg.Size)
	if err != nil {
		_ = evset.Close()
		_ = region.Close()
		return nil, err
	}

	c := newDualChannel(name, cfg, region, out, in, evset, events.Client)
	if err := registerChannel(c); err != nil {
		_ = evset.Close()
		_ = region.Close()
		return nil, err
	}
	in.Header().IncActiveReaders()
	// CONNECT is derived solely from the listener's active_readers poll
	// (see Listener.pollPresence), the same way DISCONNECT is: a crashed
	// peer can never signal anything, so presence can't rely on a signal
	// for one transition and a poll for the other without risking two
	// CONNECT deliveries for one attach.
	logger.Infof("channel %q connected", name)
	return c, nil
}

func newDualChannel(name string, cfg Config, region *shm.Region, out, in *ring.ByteStream, evset *events.Set, role events.Role) *DualChannel {
	return &DualChannel{
		name:    name,
		cfg:     cfg,
		region:  region,
		out:     out,
		in:      in,
		events:  evset,
		role:    role,
		metrics: newMetrics(name),
		otel:    newOtelHooks(cfg),
	}
}
