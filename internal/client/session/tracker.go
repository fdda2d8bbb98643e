// Package session keeps a live, observable view of who is signed in.
//
// A Tracker owns the last server-confirmed SessionData together with a
// pending flag and the last fetch error. Every refetch flips IsPending to
// true before the request and back to false when it settles. Observers can
// poll State or Subscribe to a latest-value channel.
//
// Overlapping refetches are ordered by issue time: a fetch that settles
// after a newer one was started is discarded, so the newest request always
// decides the published state.
package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/admagic/internal/client/models"
	"github.com/dmitrijs2005/admagic/internal/logging"
)

// Fetcher resolves the current session. services.SessionFetcher implements it.
type Fetcher interface {
	GetSession(ctx context.Context) (models.SessionData, error)
}

// State is one published snapshot. Data is nil until the first fetch
// succeeds; on a failed fetch it keeps the previous value and Err is set.
type State struct {
	Data      *models.SessionData
	IsPending bool
	Err       error
}

type Tracker struct {
	fetcher Fetcher
	logger  logging.Logger

	mu      sync.Mutex
	state   State
	seq     uint64
	closed  bool
	subs    map[int]chan State
	nextSub int

	mount sync.Once
}

// NewTracker returns a Tracker in its initial pending state. No fetch is
// issued until Mount or Refetch is called.
func NewTracker(f Fetcher, l logging.Logger) *Tracker {
	return &Tracker{
		fetcher: f,
		logger:  l,
		state:   State{IsPending: true},
		subs:    make(map[int]chan State),
	}
}

// State returns the current snapshot.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Mount starts the automatic first fetch in the background. Later calls
// are no-ops.
func (t *Tracker) Mount(ctx context.Context) {
	t.mount.Do(func() {
		go t.Refetch(ctx)
	})
}

// Refetch re-resolves the session and blocks until it settles, returning
// the state it produced. If a newer Refetch was issued meanwhile, or the
// tracker was closed, the result is dropped and the current state returned.
func (t *Tracker) Refetch(ctx context.Context) State {
	t.mu.Lock()
	if t.closed {
		s := t.state
		t.mu.Unlock()
		return s
	}
	t.seq++
	seq := t.seq
	t.state.IsPending = true
	t.publishLocked()
	t.mu.Unlock()

	data, err := t.fetcher.GetSession(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || seq != t.seq {
		t.logger.Debug(ctx, "dropping superseded session fetch", "seq", seq)
		return t.state
	}

	if err != nil {
		t.state = State{Data: t.state.Data, Err: err}
	} else {
		t.state = State{Data: &data}
	}
	t.publishLocked()
	return t.state
}

// Subscribe returns a channel that always holds the most recent state (the
// current one is delivered immediately) and a func that stops delivery.
// Slow readers skip intermediate states rather than block the tracker.
func (t *Tracker) Subscribe() (<-chan State, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch := make(chan State, 1)
	if t.closed {
		close(ch)
		return ch, func() {}
	}

	id := t.nextSub
	t.nextSub++
	t.subs[id] = ch
	ch <- t.state

	return ch, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if c, ok := t.subs[id]; ok {
			delete(t.subs, id)
			close(c)
		}
	}
}

// Close unmounts the tracker: in-flight fetches no longer update state and
// all subscription channels are closed.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	for id, ch := range t.subs {
		close(ch)
		delete(t.subs, id)
	}
}

func (t *Tracker) publishLocked() {
	for _, ch := range t.subs {
		select {
		case <-ch:
		default:
		}
		ch <- t.state
	}
}
