package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"yoforex-admin/api"
	"yoforex-admin/internal/query"
)

// OverviewSection shows the platform stat cards plus the moderation
// backlog. It is also the fallback for unknown section names.
type OverviewSection struct {
	deps *Deps

	statsKey  query.Key
	countsKey query.Key
	statsSnap query.Snapshot
	stats     api.PlatformStats
	counts    api.QueueCounts
}

func NewOverviewSection(deps *Deps) *OverviewSection {
	return &OverviewSection{deps: deps}
}

func (s *OverviewSection) Title() string { return "Overview" }
func (s *OverviewSection) Busy() bool    { return false }

func (s *OverviewSection) Init() tea.Cmd {
	s.statsKey = query.NewKey(api.PathStats, nil)
	s.countsKey = query.NewKey(api.PathQueueCounts, nil)
	s.apply(s.deps.Store.Subscribe(s.statsKey, query.Options{Every: s.deps.Cfg.RefetchEvery}))
	cs := s.deps.Store.Subscribe(s.countsKey, query.Options{Every: s.deps.Cfg.RefetchEvery})
	if cs.Data != nil {
		s.counts = api.DecodeObject[api.QueueCounts](cs.Data)
	}
	return nil
}

func (s *OverviewSection) Unmount() {
	s.deps.Store.Unsubscribe(s.statsKey)
	s.deps.Store.Unsubscribe(s.countsKey)
}

func (s *OverviewSection) apply(snap query.Snapshot) {
	s.statsSnap = snap
	if snap.Data != nil {
		s.stats = api.DecodeObject[api.PlatformStats](snap.Data)
	}
}

func (s *OverviewSection) Update(msg tea.Msg) (Section, tea.Cmd) {
	switch msg := msg.(type) {
	case query.ResultMsg:
		switch msg.Snapshot.Key.String() {
		case s.statsKey.String():
			s.apply(msg.Snapshot)
		case s.countsKey.String():
			if msg.Snapshot.Data != nil {
				s.counts = api.DecodeObject[api.QueueCounts](msg.Snapshot.Data)
			}
		}
	case tea.KeyMsg:
		if msg.String() == "f5" {
			s.deps.Store.Invalidate(api.PathStats)
			s.deps.Store.Invalidate(api.PathQueueCounts)
		}
	}
	return s, nil
}

func card(label, value string) string {
	return cardStyle.Render(blurredStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

func (s *OverviewSection) View(width, height int) string {
	if s.statsSnap.Data == nil && s.statsSnap.Status == query.StatusLoading {
		return blurredStyle.Render("Loading platform stats...")
	}
	if s.statsSnap.Data == nil && s.statsSnap.Err != nil {
		return errorMessageStyle("Failed to load stats: " + s.statsSnap.Err.Error())
	}

	var b strings.Builder
	if s.statsSnap.Err != nil {
		b.WriteString(staleStyle.Render("refresh failed, showing last known data") + "\n\n")
	}

	row1 := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total users", fmt.Sprintf("%d", s.stats.TotalUsers)),
		card("Active today", fmt.Sprintf("%d", s.stats.ActiveToday)),
		card("New threads", fmt.Sprintf("%d", s.stats.NewThreads)),
	)
	row2 := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Pending moderation", fmt.Sprintf("%d", s.stats.PendingModeration)),
		card("Revenue", fmt.Sprintf("$%.2f", s.stats.Revenue)),
		card("Coins in flight", fmt.Sprintf("%d", s.stats.CoinsInFlight)),
	)
	row3 := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Queue pending", fmt.Sprintf("%d", s.counts.Pending)),
		card("Flagged", fmt.Sprintf("%d", s.counts.Flagged)),
		card("Open reports", fmt.Sprintf("%d", s.counts.Reports)),
	)

	b.WriteString(row1 + "\n" + row2 + "\n" + row3)
	b.WriteString("\n\n" + blurredStyle.Render("F5: refresh"))
	return b.String()
}
