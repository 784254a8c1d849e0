package ui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"yoforex-admin/internal/query"
)

// ListConfig describes one of the many read-only dashboard sections of the
// same shape: fetch a list endpoint, render a table, paginate. Analytics,
// finance, gamification rules, integrations and A/B tests are all configs
// over this one section.
type ListConfig struct {
	Name    string
	Path    string
	Columns []table.Column
	// Rows decodes the raw response defensively and maps it to table rows.
	Rows func(raw json.RawMessage) ([]table.Row, int)
	// Refetch enables background refresh for sections that benefit.
	Refetch bool
	// Filters contributes extra query parameters (period for analytics).
	Filters query.Filters
}

type ListSection struct {
	deps *Deps
	cfg  ListConfig

	tbl   table.Model
	page  int
	pages int
	key   query.Key
	snap  query.Snapshot
}

func NewListSection(deps *Deps, cfg ListConfig) *ListSection {
	t := table.New(
		table.WithColumns(cfg.Columns),
		table.WithFocused(true),
		table.WithHeight(14),
	)
	st := table.DefaultStyles()
	st.Header = st.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	st.Selected = st.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(st)

	return &ListSection{deps: deps, cfg: cfg, tbl: t, page: 1, pages: 1}
}

func (s *ListSection) Title() string { return s.cfg.Name }
func (s *ListSection) Busy() bool    { return false }

func (s *ListSection) makeKey() query.Key {
	filters := query.Filters{"page": s.page, "perPage": s.deps.Cfg.PageSize}
	for k, v := range s.cfg.Filters {
		filters[k] = v
	}
	return query.NewKey(s.cfg.Path, filters)
}

func (s *ListSection) Init() tea.Cmd {
	s.subscribe()
	return nil
}

func (s *ListSection) subscribe() {
	s.key = s.makeKey()
	opts := query.Options{}
	if s.cfg.Refetch {
		opts.Every = s.deps.Cfg.RefetchEvery
	}
	s.apply(s.deps.Store.Subscribe(s.key, opts))
}

func (s *ListSection) Unmount() {
	s.deps.Store.Unsubscribe(s.key)
}

func (s *ListSection) apply(snap query.Snapshot) {
	s.snap = snap
	if snap.Data == nil {
		return
	}
	rows, pages := s.cfg.Rows(snap.Data)
	s.pages = pages
	s.tbl.SetRows(rows)
	if s.tbl.Cursor() >= len(rows) && len(rows) > 0 {
		s.tbl.SetCursor(len(rows) - 1)
	}
}

func (s *ListSection) Update(msg tea.Msg) (Section, tea.Cmd) {
	switch msg := msg.(type) {
	case query.ResultMsg:
		if msg.Snapshot.Key.String() == s.key.String() {
			s.apply(msg.Snapshot)
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "n":
			if s.page < s.pages {
				s.page++
				s.Unmount()
				s.subscribe()
			}
			return s, nil
		case "p":
			if s.page > 1 {
				s.page--
				s.Unmount()
				s.subscribe()
			}
			return s, nil
		case "f5":
			s.deps.Store.Invalidate(s.cfg.Path)
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.tbl, cmd = s.tbl.Update(msg)
	return s, cmd
}

func (s *ListSection) View(width, height int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Page %d/%d\n", s.page, s.pages))

	switch {
	case s.snap.Data == nil && s.snap.Status == query.StatusLoading:
		b.WriteString("\n" + blurredStyle.Render("Loading..."))
	case s.snap.Data == nil && s.snap.Err != nil:
		b.WriteString("\n" + errorMessageStyle("Failed to load: "+s.snap.Err.Error()))
	default:
		if s.snap.Err != nil {
			b.WriteString(staleStyle.Render("refresh failed, showing last known data") + "\n")
		}
		b.WriteString(s.tbl.View())
	}

	b.WriteString("\n" + blurredStyle.Render("n/p: page • F5: refresh"))
	return b.String()
}
