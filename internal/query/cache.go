package query

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"yoforex-admin/internal/logger"
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

// Snapshot is a point-in-time view of one cache entry. Err alongside
// non-nil Data means the last refetch failed and the data shown is stale.
type Snapshot struct {
	Key         Key
	Status      Status
	Data        json.RawMessage
	Err         error
	Fetching    bool
	LastFetched time.Time
}

// Getter is the read side of the REST client (api.Client satisfies it).
type Getter interface {
	Get(ctx context.Context, path string) ([]byte, error)
}

type Options struct {
	// Every schedules silent background refetches while subscribed.
	Every time.Duration
	// Disabled skips the fetch entirely, for queries whose key is not yet
	// complete (a detail view with no selected id).
	Disabled bool
}

// ResultMsg is posted to the message channel when a fetch settles.
type ResultMsg struct {
	Snapshot Snapshot
}

// Store is the process-wide query cache. Constructed once in main and
// handed to the root model; tests build isolated stores. Fetch results
// reach the UI through the Messages channel, pumped with WaitForMsg.
type Store struct {
	mu         sync.Mutex
	getter     Getter
	timeout    time.Duration
	staleAfter time.Duration
	entries    map[string]*entry
	messages   chan tea.Msg
}

type entry struct {
	key         Key
	status      Status
	data        json.RawMessage
	err         error
	lastFetched time.Time
	stale       bool
	subscribers int
	outstanding int
	issued      uint64 // sequence of the most recently issued fetch
	applied     uint64 // sequence of the fetch whose result is held
	every       time.Duration
	stopTick    chan struct{}
}

func NewStore(getter Getter, timeout, staleAfter time.Duration) *Store {
	return &Store{
		getter:     getter,
		timeout:    timeout,
		staleAfter: staleAfter,
		entries:    make(map[string]*entry),
		messages:   make(chan tea.Msg, 64),
	}
}

// WaitForMsg is a tea.Cmd that delivers the next fetch result.
func (s *Store) WaitForMsg() tea.Msg { return <-s.messages }

// Subscribe registers interest in a key and triggers a fetch when the entry
// is missing, stale, or errored with nothing cached. Concurrent subscribers
// during an in-flight fetch share its result; no second request is issued.
func (s *Store) Subscribe(key Key, opts Options) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if opts.Disabled {
		if e, ok := s.entries[key.String()]; ok {
			return snapshotLocked(e)
		}
		return Snapshot{Key: key, Status: StatusIdle}
	}

	e, ok := s.entries[key.String()]
	if !ok {
		e = &entry{key: key}
		s.entries[key.String()] = e
	}
	e.subscribers++
	if opts.Every > 0 {
		e.every = opts.Every
		s.startTickerLocked(e)
	}
	if s.needsFetchLocked(e) && e.outstanding == 0 {
		s.fetchLocked(e)
	}
	return snapshotLocked(e)
}

// Unsubscribe drops one subscriber. At zero the interval ticker stops;
// cached data stays so the next mount renders instantly.
func (s *Store) Unsubscribe(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key.String()]
	if !ok {
		return
	}
	if e.subscribers > 0 {
		e.subscribers--
	}
	if e.subscribers == 0 && e.stopTick != nil {
		close(e.stopTick)
		e.stopTick = nil
	}
}

// Invalidate marks every entry under the prefix stale. Subscribed entries
// refetch immediately; the rest revalidate on their next subscription.
func (s *Store) Invalidate(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if !e.key.Matches(prefix) {
			continue
		}
		e.stale = true
		if e.subscribers > 0 {
			s.fetchLocked(e)
		}
	}
}

// Snapshot reads the current state of a key without subscribing.
func (s *Store) Snapshot(key Key) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key.String()]; ok {
		return snapshotLocked(e)
	}
	return Snapshot{Key: key, Status: StatusIdle}
}

// Refetch re-issues the fetch for a subscribed key (interval ticks land
// here). A fetch already in flight is left alone.
func (s *Store) Refetch(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key.String()]; ok && e.subscribers > 0 && e.outstanding == 0 {
		s.fetchLocked(e)
	}
}

func (s *Store) needsFetchLocked(e *entry) bool {
	if e.status == StatusIdle || e.stale {
		return true
	}
	if e.status == StatusError && e.data == nil {
		return true
	}
	if s.staleAfter > 0 && !e.lastFetched.IsZero() && time.Since(e.lastFetched) > s.staleAfter {
		return true
	}
	return false
}

func (s *Store) fetchLocked(e *entry) {
	e.issued++
	seq := e.issued
	e.outstanding++
	if e.data == nil {
		e.status = StatusLoading
	}
	key := e.key
	go func() {
		ctx := context.Background()
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		raw, err := s.getter.Get(ctx, key.String())
		s.apply(key, seq, raw, err)
	}()
}

func (s *Store) apply(key Key, seq uint64, raw []byte, err error) {
	s.mu.Lock()
	e, ok := s.entries[key.String()]
	if !ok {
		s.mu.Unlock()
		return
	}
	e.outstanding--
	if seq <= e.applied {
		// A later-issued fetch already landed; this result is out of date.
		s.mu.Unlock()
		return
	}
	e.applied = seq
	if err != nil {
		e.err = err
		if e.data == nil {
			e.status = StatusError
		}
		// With data present the error is only flagged: stale-while-revalidate.
	} else {
		e.data = raw
		e.err = nil
		e.status = StatusSuccess
		e.lastFetched = time.Now()
		e.stale = false
	}
	snap := snapshotLocked(e)
	s.mu.Unlock()
	s.post(ResultMsg{Snapshot: snap})
}

func (s *Store) startTickerLocked(e *entry) {
	if e.stopTick != nil || e.every <= 0 {
		return
	}
	stop := make(chan struct{})
	e.stopTick = stop
	key := e.key
	every := e.every
	go func() {
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				s.Refetch(key)
			}
		}
	}()
}

func (s *Store) post(msg tea.Msg) {
	select {
	case s.messages <- msg:
	default:
		logger.Errorf("query: message channel full, dropping result for UI")
	}
}

func snapshotLocked(e *entry) Snapshot {
	return Snapshot{
		Key:         e.key,
		Status:      e.status,
		Data:        e.data,
		Err:         e.err,
		Fetching:    e.outstanding > 0,
		LastFetched: e.lastFetched,
	}
}
