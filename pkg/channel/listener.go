package channel

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Workiva/go-datastructures/queue"
	"github.com/panjf2000/ants/v2"

	"github.com/srediag/xshm/internal/xerr"
	"github.com/srediag/xshm/pkg/events"
)

// pollInterval bounds how long the listener's WaitAny call blocks before it
// re-checks peer presence; every wait timeout doubles as a presence poll.
const pollInterval = 100 * time.Millisecond

// Listener is the background half of the Listener state machine (C5): a
// goroutine pair that turns the Event Set's blocking WaitAny into callback
// dispatch, decoupled from the futex wait itself by a small in-process
// queue so a slow callback never delays the next wait.
type Listener struct {
	c       *DualChannel
	onEvent func(events.Kind)

	queue *queue.Queue
	pool  *ants.Pool

	running     atomic.Bool
	lastPresent bool

	wg sync.WaitGroup
}

// Listen starts the listener goroutines and returns immediately; onEvent
// runs on a pooled goroutine for every DATA_AVAILABLE/CONNECT/DISCONNECT/
// ERROR/SPACE_AVAILABLE delivery, including the synthetic CONNECT/DISCONNECT
// this Listener itself derives from active_readers transitions.
func (c *DualChannel) Listen(onEvent func(events.Kind)) (*Listener, error) {
	pool, err := ants.NewPool(4)
	if err != nil {
		return nil, err
	}
	l := &Listener{
		c:           c,
		onEvent:     onEvent,
		queue:       queue.New(64),
		pool:        pool,
		lastPresent: c.PeerPresent(),
	}
	c.listener = l
	l.running.Store(true)

	l.wg.Add(2)
	go l.waitLoop()
	go l.dispatchLoop()
	return l, nil
}

// waitLoop is the only goroutine that ever calls WaitAny; it never runs
// user code directly, so a stuck callback can't stall the futex wait.
func (l *Listener) waitLoop() {
	defer l.wg.Done()
	for l.running.Load() {
		kind, err := l.c.events.WaitAny(pollInterval.Milliseconds())
		if err != nil {
			if isTimeout(err) {
				l.pollPresence()
				continue
			}
			logger.Warnf("channel %q: WaitAny: %v", l.c.name, err)
			continue
		}
		if !l.running.Load() {
			return
		}
		if err := l.queue.Put(kind); err != nil {
			logger.Warnf("channel %q: queueing %v: %v", l.c.name, kind, err)
		}
	}
}

// pollPresence is the presence protocol: since only the attaching side ever
// touches active_readers, the other side has no signal to wait on and must
// notice the 0→≥1 or ≥1→0 transition itself, on every wait timeout.
func (l *Listener) pollPresence() {
	present := l.c.PeerPresent()
	l.c.metrics.activeReaders.Set(float64(l.c.in.Header().ActiveReaderCount()))
	if present == l.lastPresent {
		return
	}
	l.lastPresent = present
	kind := events.Disconnect
	if present {
		kind = events.Connect
		l.c.metrics.connects.Inc()
	} else {
		l.c.metrics.disconnects.Inc()
	}
	if err := l.queue.Put(kind); err != nil {
		logger.Warnf("channel %q: queueing presence change: %v", l.c.name, err)
	}
}

// dispatchLoop drains the queue and runs onEvent on the ants pool, bounding
// how many callback invocations can run concurrently without blocking
// waitLoop's producer side.
func (l *Listener) dispatchLoop() {
	defer l.wg.Done()
	for {
		items, err := l.queue.Get(1)
		if err != nil {
			return // queue disposed by Stop
		}
		kind := items[0].(events.Kind)
		if err := l.pool.Submit(func() { l.onEvent(kind) }); err != nil {
			logger.Warnf("channel %q: dispatching %v: %v", l.c.name, kind, err)
		}
	}
}

// Stop cooperatively ends both goroutines: it flips the running flag,
// signals DISCONNECT to kick waitLoop out of its current futex wait, then
// disposes the queue to unblock dispatchLoop, and blocks until both exit.
func (l *Listener) Stop() {
	if !l.running.CompareAndSwap(true, false) {
		return
	}
	_ = l.c.events.Signal(events.Disconnect)
	l.queue.Dispose()
	l.wg.Wait()
	l.pool.Release()
}

func isTimeout(err error) bool {
	e, ok := err.(*xerr.Error)
	return ok && e.Code() == xerr.Timeout
}
