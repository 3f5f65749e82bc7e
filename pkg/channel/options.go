package channel

import (
	"time"

	otelmetric "go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Config holds the options a channel is created or connected with,
// including StrictPeer, which picks between best-effort silent-drop and a
// hard error when Send finds no peer attached.
type Config struct {
	// Size is the per-direction payload byte count, rounded up to the next
	// power of two. Default 64KiB.
	Size uint32
	// MaxReaders bounds active_readers; it is advisory only, a sanity
	// ceiling rather than something the channel enforces.
	MaxReaders uint32
	// Blocking selects whether Receive waits for DATA_AVAILABLE (true) or
	// returns xerr.Empty immediately when the ring has nothing queued.
	Blocking bool
	// TimeoutMS bounds a single blocking Receive; 0 waits indefinitely.
	TimeoutMS int64
	// StrictPeer makes Send return ErrNoPeer when active_readers is zero
	// instead of silently dropping the record into a ring nobody reads.
	StrictPeer bool
	// ConnectRetries bounds Client's attempts to open the server's region
	// before giving up.
	ConnectRetries uint64
	// RetryInterval is the initial backoff interval between Client connect
	// attempts; it grows by a factor of 1.5 per attempt (with jitter), up
	// to the backoff package's default cap of 60 seconds.
	RetryInterval time.Duration
	// Meter and Tracer are optional; when nil, Send/Receive record nothing
	// beyond the always-on Prometheus counters in metrics.go.
	Meter  otelmetric.Meter
	Tracer oteltrace.Tracer
}

// Option mutates a Config under construction.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Size:           64 * 1024,
		MaxReaders:     1,
		Blocking:       true,
		TimeoutMS:      1000,
		StrictPeer:     false,
		ConnectRetries: 50,
		RetryInterval:  10 * time.Millisecond,
	}
}

// WithSize sets the per-direction ring payload size, rounded up to a power
// of two.
func WithSize(n uint32) Option {
	return func(c *Config) { c.Size = nextPowerOfTwo(n) }
}

// WithMaxReaders sets the advisory reader-count bound.
func WithMaxReaders(n uint32) Option {
	return func(c *Config) { c.MaxReaders = n }
}

// WithBlocking toggles whether Receive waits for data.
func WithBlocking(b bool) Option {
	return func(c *Config) { c.Blocking = b }
}

// WithTimeout sets the blocking Receive deadline in milliseconds.
func WithTimeout(ms int64) Option {
	return func(c *Config) { c.TimeoutMS = ms }
}

// WithStrictPeer makes Send fail fast with ErrNoPeer instead of dropping
// silently when nobody is attached to read.
func WithStrictPeer(b bool) Option {
	return func(c *Config) { c.StrictPeer = b }
}

// WithConnectRetries bounds Client's bounded exponential-backoff open loop.
func WithConnectRetries(n uint64) Option {
	return func(c *Config) { c.ConnectRetries = n }
}

// WithRetryInterval sets Client's initial backoff interval.
func WithRetryInterval(d time.Duration) Option {
	return func(c *Config) { c.RetryInterval = d }
}

// WithMeter attaches an OpenTelemetry meter; Send/Receive record byte and
// record counters on it when set.
func WithMeter(m otelmetric.Meter) Option {
	return func(c *Config) { c.Meter = m }
}

// WithTracer attaches an OpenTelemetry tracer; Send/Receive wrap a span
// around the ring operation when set.
func WithTracer(t oteltrace.Tracer) Option {
	return func(c *Config) { c.Tracer = t }
}

func nextPowerOfTwo(n uint32) uint32 {
	if n == 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	return n + 1
}
