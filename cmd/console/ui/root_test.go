package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yoforex-admin/api"
	"yoforex-admin/internal/config"
	"yoforex-admin/internal/mutate"
	"yoforex-admin/internal/query"
)

// moderationBackend serves a one-item queue and counts approve calls.
type moderationBackend struct {
	mu       sync.Mutex
	approves int
}

func (b *moderationBackend) approveCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.approves
}

func (b *moderationBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/moderation/queue", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "t1", "type": "thread", "title": "spam thread", "author": "bob", "authorId": "u1"},
		})
	})
	mux.HandleFunc("/api/moderation/counts", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]int{"pending": 1})
	})
	mux.HandleFunc("/api/moderation/t1/approve", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.approves++
		b.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	})
	return mux
}

func newTestDeps(t *testing.T, h http.Handler) *Deps {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	client := api.New(srv.URL, time.Second, nil)
	store := query.NewStore(client, time.Second, 0)
	return &Deps{
		Store:    store,
		Dispatch: mutate.NewDispatcher(client, store, time.Second),
		Client:   client,
		Cfg:      config.AppConfig{RequestTimeout: time.Second, PageSize: 20},
	}
}

// feedResults pumps n fetch results from the store into the section.
func feedResults(t *testing.T, sec Section, store *query.Store, n int) Section {
	t.Helper()
	for i := 0; i < n; i++ {
		got := make(chan tea.Msg, 1)
		go func() { got <- store.WaitForMsg() }()
		select {
		case msg := <-got:
			sec, _ = sec.Update(msg)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for a fetch result")
		}
	}
	return sec
}

func TestApproveKeyIgnoredWhileDispatching(t *testing.T) {
	backend := &moderationBackend{}
	deps := newTestDeps(t, backend.handler())

	var sec Section = NewModerationSection(deps)
	sec.Init()
	sec = feedResults(t, sec, deps.Store, 2) // queue + counts

	press := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}}
	sec, first := sec.Update(press)
	require.NotNil(t, first, "the first approve press must dispatch")

	// Pressed again before the first dispatch settles: no second command,
	// and no stale re-dispatch of the pending confirmation.
	sec, second := sec.Update(press)
	assert.Nil(t, second, "a repeated trigger while dispatching must be ignored")
	_, reject := sec.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	assert.Nil(t, reject, "other triggers are ignored too while dispatching")

	done, ok := first().(mutate.DoneMsg)
	require.True(t, ok)
	require.NoError(t, done.Err)
	assert.Equal(t, 1, backend.approveCount(), "exactly one approve call may reach the backend")
}

func TestMutationResultRoutesToOwningSection(t *testing.T) {
	deps := &Deps{Cfg: config.AppConfig{PageSize: 20}}
	m := RootModel{deps: deps, sections: buildSections(deps), auth: authOK}
	m.active = 6 // SEO

	// An approve issued from the moderation section settles after the user
	// switched to SEO; its toast must be the approve's, not a sitemap one.
	done := mutate.DoneMsg{Request: mutate.Request{Owner: "Moderation", Toast: "Content approved"}}
	_, cmd := m.Update(done)
	require.NotNil(t, cmd)
	toast, ok := cmd().(ShowToastMsg)
	require.True(t, ok)
	assert.Equal(t, "Content approved", toast.Text)
	assert.Equal(t, ToastSuccess, toast.Level)
}

func TestConfigReloadUpdatesSharedConfig(t *testing.T) {
	deps := &Deps{Cfg: config.AppConfig{PageSize: 20, RefetchEvery: 30 * time.Second}}
	m := RootModel{deps: deps}

	fresh := config.AppConfig{PageSize: 50, RefetchEvery: time.Minute}
	m.Update(ConfigChangedMsg{Cfg: fresh})

	assert.Equal(t, fresh, deps.Cfg, "sections share Deps by pointer and must see the reload")
}
