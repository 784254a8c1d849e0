package query

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGetter scripts responses per call and counts network traffic.
type fakeGetter struct {
	mu      sync.Mutex
	calls   int
	respond func(call int, path string) ([]byte, error)
	gates   map[int]chan struct{} // block call N until its gate closes
	entered chan int              // posts call numbers on entry when set
}

func (g *fakeGetter) Get(ctx context.Context, path string) ([]byte, error) {
	g.mu.Lock()
	g.calls++
	call := g.calls
	gate := g.gates[call]
	respond := g.respond
	g.mu.Unlock()

	if g.entered != nil {
		g.entered <- call
	}
	if gate != nil {
		<-gate
	}
	return respond(call, path)
}

func (g *fakeGetter) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func waitResult(t *testing.T, s *Store) Snapshot {
	t.Helper()
	done := make(chan Snapshot, 1)
	go func() {
		msg := s.WaitForMsg()
		done <- msg.(ResultMsg).Snapshot
	}()
	select {
	case snap := <-done:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a fetch result")
		return Snapshot{}
	}
}

func TestSubscribeDedup(t *testing.T) {
	gate := make(chan struct{})
	g := &fakeGetter{
		gates: map[int]chan struct{}{1: gate},
		respond: func(int, string) ([]byte, error) {
			return []byte(`{"ok":true}`), nil
		},
	}
	s := NewStore(g, time.Second, 0)

	// Two subscribers arrive while the first fetch is still in flight; the
	// in-flight result must be shared, not re-requested.
	k1 := NewKey("/api/admin/users", Filters{"page": 1, "search": "x"})
	k2 := NewKey("/api/admin/users", Filters{"search": "x", "page": 1})

	snap1 := s.Subscribe(k1, Options{})
	snap2 := s.Subscribe(k2, Options{})
	assert.Equal(t, StatusLoading, snap1.Status)
	assert.Equal(t, StatusLoading, snap2.Status)

	close(gate)
	snap := waitResult(t, s)
	assert.Equal(t, StatusSuccess, snap.Status)
	assert.JSONEq(t, `{"ok":true}`, string(snap.Data))
	assert.Equal(t, 1, g.callCount(), "concurrent subscribers must share one network call")
}

func TestDisabledSubscribeIssuesNoFetch(t *testing.T) {
	g := &fakeGetter{respond: func(int, string) ([]byte, error) {
		return []byte(`{}`), nil
	}}
	s := NewStore(g, time.Second, 0)

	snap := s.Subscribe(NewKey("/api/admin/users/detail", Filters{"id": ""}), Options{Disabled: true})
	assert.Equal(t, StatusIdle, snap.Status)
	assert.Equal(t, 0, g.callCount())
}

func TestStaleWhileRevalidate(t *testing.T) {
	g := &fakeGetter{respond: func(call int, _ string) ([]byte, error) {
		if call == 1 {
			return []byte(`{"items":[1,2,3]}`), nil
		}
		return nil, errors.New("backend unavailable")
	}}
	s := NewStore(g, time.Second, 0)
	key := NewKey("/api/moderation/queue", nil)

	s.Subscribe(key, Options{})
	first := waitResult(t, s)
	require.Equal(t, StatusSuccess, first.Status)

	// A failing refetch must keep the last-good data and only flag the error.
	s.Invalidate("/api/moderation")
	second := waitResult(t, s)
	assert.Error(t, second.Err)
	assert.Equal(t, StatusSuccess, second.Status)
	assert.JSONEq(t, `{"items":[1,2,3]}`, string(second.Data))
}

func TestLastIssuedWins(t *testing.T) {
	slow := make(chan struct{})
	g := &fakeGetter{
		gates:   map[int]chan struct{}{1: slow},
		entered: make(chan int, 4),
		respond: func(call int, _ string) ([]byte, error) {
			if call == 1 {
				return []byte(`"A"`), nil
			}
			return []byte(`"B"`), nil
		},
	}
	s := NewStore(g, time.Second, 0)
	key := NewKey("/api/admin/stats", nil)

	// Fetch A is issued first and held; invalidation issues fetch B, which
	// resolves immediately.
	s.Subscribe(key, Options{})
	require.Equal(t, 1, <-g.entered, "fetch A must be in flight before invalidating")
	s.Invalidate("/api/admin/stats")
	require.Equal(t, 2, <-g.entered)

	snap := waitResult(t, s)
	assert.Equal(t, `"B"`, string(snap.Data))

	// Now let A resolve late. Its result must be discarded.
	close(slow)
	require.Eventually(t, func() bool {
		return s.Snapshot(key).Fetching == false
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, `"B"`, string(s.Snapshot(key).Data),
		"an earlier-issued fetch resolving late must not overwrite newer data")
}

func TestInvalidateUnsubscribedIsLazy(t *testing.T) {
	g := &fakeGetter{respond: func(int, string) ([]byte, error) {
		return []byte(`{}`), nil
	}}
	s := NewStore(g, time.Second, 0)
	key := NewKey("/api/admin/users", nil)

	s.Subscribe(key, Options{})
	waitResult(t, s)
	s.Unsubscribe(key)

	s.Invalidate("/api/admin/users")
	assert.Equal(t, 1, g.callCount(), "invalidating an unsubscribed entry must not fetch")

	// The next subscription revalidates.
	s.Subscribe(key, Options{})
	waitResult(t, s)
	assert.Equal(t, 2, g.callCount())
}

func TestIntervalRefetchStopsOnUnsubscribe(t *testing.T) {
	g := &fakeGetter{respond: func(int, string) ([]byte, error) {
		return []byte(`{}`), nil
	}}
	s := NewStore(g, time.Second, 0)
	key := NewKey("/api/admin/logs", nil)

	s.Subscribe(key, Options{Every: 20 * time.Millisecond})
	waitResult(t, s)

	require.Eventually(t, func() bool {
		return g.callCount() >= 3
	}, 2*time.Second, 5*time.Millisecond, "interval refetch should keep firing while subscribed")

	s.Unsubscribe(key)
	time.Sleep(60 * time.Millisecond)
	after := g.callCount()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, after, g.callCount(), "interval refetch must stop once nothing is subscribed")
}

func TestErrorWithNoDataRetriesOnResubscribe(t *testing.T) {
	g := &fakeGetter{respond: func(call int, _ string) ([]byte, error) {
		if call == 1 {
			return nil, errors.New("boom")
		}
		return []byte(`{}`), nil
	}}
	s := NewStore(g, time.Second, 0)
	key := NewKey("/api/admin/stats", nil)

	s.Subscribe(key, Options{})
	first := waitResult(t, s)
	require.Equal(t, StatusError, first.Status)
	require.Nil(t, first.Data)

	s.Subscribe(key, Options{})
	second := waitResult(t, s)
	assert.Equal(t, StatusSuccess, second.Status)
}
