package mutate

import (
	"context"
	"encoding/json"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"yoforex-admin/internal/logger"
)

type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSuccess
	StatusError
)

// State tracks one control's mutation lifecycle. A new dispatch replaces
// the previous state wholesale.
type State struct {
	Status Status
	Err    error
	Body   json.RawMessage
}

func (s State) Pending() bool { return s.Status == StatusPending }

// Doer is the write side of the REST client (api.Client satisfies it).
type Doer interface {
	Do(ctx context.Context, method, path string, body any) ([]byte, error)
}

// Invalidator is the cache side (query.Store satisfies it).
type Invalidator interface {
	Invalidate(prefix string)
}

// Request describes one mutation: the HTTP call, the cache prefixes to
// invalidate on success, and the toast copy for the UI. Owner names the
// section that issued the request so its DoneMsg finds the way back even
// when another section is active by the time the call settles.
type Request struct {
	Method     string
	Path       string
	Body       any
	Invalidate []string
	Toast      string
	Owner      string
}

// DoneMsg reports a settled mutation. Invalidations have already been
// applied when this message is observed.
type DoneMsg struct {
	Request Request
	Body    json.RawMessage
	Err     error
}

// Dispatcher wraps side-effecting calls. No retry and no coalescing:
// controls must disable themselves while a dispatch is pending.
type Dispatcher struct {
	doer    Doer
	cache   Invalidator
	timeout time.Duration
}

func NewDispatcher(doer Doer, cache Invalidator, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{doer: doer, cache: cache, timeout: timeout}
}

// Dispatch returns a tea.Cmd that runs the mutation and delivers DoneMsg.
func (d *Dispatcher) Dispatch(req Request) tea.Cmd {
	return func() tea.Msg {
		return d.Do(req)
	}
}

// Do runs the mutation synchronously. On success the listed cache prefixes
// are invalidated before the result is returned, so any success handling
// (toast, dialog close) observes an already-invalidated cache.
func (d *Dispatcher) Do(req Request) DoneMsg {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	body, err := d.doer.Do(ctx, req.Method, req.Path, req.Body)
	if err != nil {
		logger.Errorf("mutation %s %s failed: %v", req.Method, req.Path, err)
		return DoneMsg{Request: req, Err: err}
	}
	for _, prefix := range req.Invalidate {
		d.cache.Invalidate(prefix)
	}
	logger.Infof("mutation %s %s ok", req.Method, req.Path)
	return DoneMsg{Request: req, Body: body}
}
