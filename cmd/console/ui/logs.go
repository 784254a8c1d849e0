package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"yoforex-admin/api"
	"yoforex-admin/internal/query"
)

// LogsSection tails the backend's system log in a scrollable viewport.
// It refetches on the configured interval; while the user has scrolled up,
// new entries do not yank the view back down.
type LogsSection struct {
	deps *Deps

	vp   viewport.Model
	key  query.Key
	snap query.Snapshot
}

func NewLogsSection(deps *Deps) *LogsSection {
	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle().PaddingLeft(1)
	return &LogsSection{deps: deps, vp: vp}
}

func (s *LogsSection) Title() string { return "System Logs" }
func (s *LogsSection) Busy() bool    { return false }

func (s *LogsSection) Init() tea.Cmd {
	s.key = query.NewKey(api.PathLogs, query.Filters{"limit": 200})
	s.apply(s.deps.Store.Subscribe(s.key, query.Options{Every: s.deps.Cfg.RefetchEvery}))
	return nil
}

func (s *LogsSection) Unmount() {
	s.deps.Store.Unsubscribe(s.key)
}

func (s *LogsSection) apply(snap query.Snapshot) {
	s.snap = snap
	if snap.Data == nil {
		return
	}
	list := api.DecodeList[api.LogEntry](snap.Data)
	var b strings.Builder
	for _, e := range list.Items {
		level := e.Level
		if e.Level == "error" || e.Level == "fatal" {
			level = errorMessageStyle(e.Level)
		}
		fmt.Fprintf(&b, "%s  %-5s  %-14s %s\n",
			e.CreatedAt.Format("15:04:05"), level, e.Source, e.Message)
	}
	follow := s.vp.AtBottom()
	s.vp.SetContent(b.String())
	if follow {
		s.vp.GotoBottom()
	}
}

func (s *LogsSection) Update(msg tea.Msg) (Section, tea.Cmd) {
	switch msg := msg.(type) {
	case query.ResultMsg:
		if msg.Snapshot.Key.String() == s.key.String() {
			s.apply(msg.Snapshot)
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "f5":
			s.deps.Store.Invalidate(api.PathLogs)
			return s, nil
		case "G":
			s.vp.GotoBottom()
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.vp, cmd = s.vp.Update(msg)
	return s, cmd
}

func (s *LogsSection) View(width, height int) string {
	s.vp.Width = width - 2
	if h := height - 4; h > 3 {
		s.vp.Height = h
	}

	var b strings.Builder
	switch {
	case s.snap.Data == nil && s.snap.Status == query.StatusLoading:
		b.WriteString(blurredStyle.Render("Loading..."))
	case s.snap.Data == nil && s.snap.Err != nil:
		b.WriteString(errorMessageStyle("Failed to load: " + s.snap.Err.Error()))
	default:
		if s.snap.Err != nil {
			b.WriteString(staleStyle.Render("refresh failed, showing last known data") + "\n")
		}
		b.WriteString(s.vp.View())
	}
	b.WriteString("\n" + blurredStyle.Render("↑/↓: scroll • G: bottom • F5: refresh"))
	return b.String()
}
