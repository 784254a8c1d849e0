package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"yoforex-admin/api"
	"yoforex-admin/internal/moderation"
	"yoforex-admin/internal/mutate"
	"yoforex-admin/internal/query"
)

// ModerationSection is the content queue: list, multi-select, single and
// bulk approve/reject, suspend/ban of the item's author. All destructive
// paths run through the shared ConfirmDialog.
type ModerationSection struct {
	deps *Deps

	tbl       table.Model
	items     []api.PendingContent
	selection *moderation.Selection
	wf        *moderation.Workflow
	dialog    *ConfirmDialog

	page       int
	pages      int
	typeFilter string // "", thread, post, review, ad

	queueKey  query.Key
	countsKey query.Key
	queueSnap query.Snapshot
	counts    api.QueueCounts
}

var contentTypes = []string{"", "thread", "post", "review", "ad"}

func NewModerationSection(deps *Deps) *ModerationSection {
	columns := []table.Column{
		{Title: " ", Width: 3},
		{Title: "ID", Width: 10},
		{Title: "Type", Width: 8},
		{Title: "Title", Width: 34},
		{Title: "Author", Width: 14},
		{Title: "Spam", Width: 6},
		{Title: "Reports", Width: 7},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
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

	return &ModerationSection{
		deps:      deps,
		tbl:       t,
		selection: moderation.NewSelection(),
		wf:        moderation.NewWorkflow(),
		page:      1,
		pages:     1,
	}
}

func (s *ModerationSection) Title() string { return "Moderation" }
func (s *ModerationSection) Busy() bool    { return s.dialog != nil }

func (s *ModerationSection) keys() (query.Key, query.Key) {
	filters := query.Filters{"page": s.page, "perPage": s.deps.Cfg.PageSize}
	if s.typeFilter != "" {
		filters["type"] = s.typeFilter
	}
	return query.NewKey(api.PathModerationQueue, filters), query.NewKey(api.PathQueueCounts, nil)
}

func (s *ModerationSection) Init() tea.Cmd {
	s.subscribe()
	return nil
}

func (s *ModerationSection) subscribe() {
	qk, ck := s.keys()
	s.queueKey, s.countsKey = qk, ck
	s.queueSnap = s.deps.Store.Subscribe(qk, query.Options{Every: s.deps.Cfg.RefetchEvery})
	cs := s.deps.Store.Subscribe(ck, query.Options{Every: s.deps.Cfg.RefetchEvery})
	s.applyQueue(s.queueSnap)
	s.applyCounts(cs)
}

func (s *ModerationSection) Unmount() {
	s.deps.Store.Unsubscribe(s.queueKey)
	s.deps.Store.Unsubscribe(s.countsKey)
}

// repage re-subscribes after a page or filter change. Selection is tied to
// the visible page, so it clears.
func (s *ModerationSection) repage() {
	s.Unmount()
	s.selection.Clear()
	s.subscribe()
}

func (s *ModerationSection) applyQueue(snap query.Snapshot) {
	s.queueSnap = snap
	if snap.Data == nil {
		return
	}
	list := api.DecodeList[api.PendingContent](snap.Data)
	s.items = list.Items
	s.pages = list.Pages

	visible := make([]string, len(s.items))
	for i, it := range s.items {
		visible[i] = it.ID
	}
	s.selection.Prune(visible)
	s.refreshRows()
}

func (s *ModerationSection) applyCounts(snap query.Snapshot) {
	if snap.Data != nil {
		s.counts = api.DecodeObject[api.QueueCounts](snap.Data)
	}
}

func (s *ModerationSection) refreshRows() {
	rows := make([]table.Row, len(s.items))
	for i, it := range s.items {
		mark := " "
		if s.selection.Has(it.ID) {
			mark = "x"
		}
		title := it.Title
		if title == "" {
			title = it.Excerpt
		}
		rows[i] = table.Row{
			mark,
			it.ID,
			it.Type,
			title,
			it.Author,
			fmt.Sprintf("%.2f", it.SpamScore),
			fmt.Sprintf("%d", it.Reports),
		}
	}
	s.tbl.SetRows(rows)
	if s.tbl.Cursor() >= len(rows) && len(rows) > 0 {
		s.tbl.SetCursor(len(rows) - 1)
	}
}

func (s *ModerationSection) current() (api.PendingContent, bool) {
	idx := s.tbl.Cursor()
	if idx < 0 || idx >= len(s.items) {
		return api.PendingContent{}, false
	}
	return s.items[idx], true
}

func (s *ModerationSection) Update(msg tea.Msg) (Section, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case query.ResultMsg:
		switch msg.Snapshot.Key.String() {
		case s.queueKey.String():
			s.applyQueue(msg.Snapshot)
		case s.countsKey.String():
			s.applyCounts(msg.Snapshot)
		}
		return s, nil

	case ConfirmedMsg:
		return s, s.dispatch(msg.Confirmation)

	case mutate.DoneMsg:
		return s.onDone(msg)
	}

	if s.dialog != nil {
		var cmd tea.Cmd
		s.dialog, cmd = s.dialog.Update(msg)
		return s, cmd
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case " ":
			if it, ok := s.current(); ok {
				s.selection.Toggle(it.ID)
				s.refreshRows()
			}
			return s, nil
		case "a":
			if it, ok := s.current(); ok {
				return s, s.begin(moderation.ActionApprove, []string{it.ID}, it.Title)
			}
			return s, nil
		case "r":
			if it, ok := s.current(); ok {
				return s, s.begin(moderation.ActionReject, []string{it.ID}, it.Title)
			}
			return s, nil
		case "s":
			if it, ok := s.current(); ok {
				return s, s.begin(moderation.ActionSuspend, []string{it.AuthorID}, "author: "+it.Author)
			}
			return s, nil
		case "b":
			if it, ok := s.current(); ok {
				return s, s.begin(moderation.ActionBan, []string{it.AuthorID}, "author: "+it.Author)
			}
			return s, nil
		case "A":
			return s, s.begin(moderation.ActionBulkApprove, s.selection.IDs(), "")
		case "R":
			return s, s.begin(moderation.ActionBulkReject, s.selection.IDs(), "")
		case "n":
			if s.page < s.pages {
				s.page++
				s.repage()
			}
			return s, nil
		case "p":
			if s.page > 1 {
				s.page--
				s.repage()
			}
			return s, nil
		case "t":
			s.cycleTypeFilter()
			return s, nil
		case "f5":
			s.deps.Store.Invalidate(api.PathModerationQueue)
			s.deps.Store.Invalidate(api.PathQueueCounts)
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.tbl, cmd = s.tbl.Update(msg)
	cmds = append(cmds, cmd)
	return s, tea.Batch(cmds...)
}

func (s *ModerationSection) cycleTypeFilter() {
	for i, t := range contentTypes {
		if t == s.typeFilter {
			s.typeFilter = contentTypes[(i+1)%len(contentTypes)]
			s.page = 1
			s.repage()
			return
		}
	}
	s.typeFilter = ""
}

// begin starts an action. Guard failures (empty selection, bulk over the
// limit) surface as an error toast with no dialog and no dispatch. A trigger
// pressed while an earlier action is still dispatching is ignored.
func (s *ModerationSection) begin(kind moderation.ActionKind, targets []string, subject string) tea.Cmd {
	needsDialog, err := s.wf.Begin(kind, targets)
	if err != nil {
		if errors.Is(err, moderation.ErrBusy) {
			return nil
		}
		return func() tea.Msg { return ShowToastMsg{Text: err.Error(), Level: ToastError} }
	}
	if needsDialog {
		s.dialog = NewConfirmDialog(s.wf, subject)
		return nil
	}
	// Approve dispatches directly from the listing.
	return s.dispatch(s.wf.Confirmation())
}

var moderationInvalidate = []string{api.PathModerationQueue, api.PathQueueCounts, api.PathStats}

func (s *ModerationSection) dispatch(conf *moderation.Confirmation) tea.Cmd {
	var req mutate.Request
	switch conf.Kind {
	case moderation.ActionApprove:
		req = mutate.Request{
			Method:     "POST",
			Path:       api.ApprovePath(conf.Targets[0]),
			Invalidate: moderationInvalidate,
			Toast:      "Content approved",
		}
	case moderation.ActionReject:
		req = mutate.Request{
			Method:     "POST",
			Path:       api.RejectPath(conf.Targets[0]),
			Body:       map[string]any{"reason": conf.Reason},
			Invalidate: moderationInvalidate,
			Toast:      "Content rejected",
		}
	case moderation.ActionSuspend:
		req = mutate.Request{
			Method:     "POST",
			Path:       api.SuspendUserPath(conf.Targets[0]),
			Body:       map[string]any{"reason": conf.Reason, "days": conf.SuspendDays},
			Invalidate: append([]string{api.PathUsers}, moderationInvalidate...),
			Toast:      fmt.Sprintf("User suspended for %d days", conf.SuspendDays),
		}
	case moderation.ActionBan:
		req = mutate.Request{
			Method:     "POST",
			Path:       api.BanUserPath(conf.Targets[0]),
			Body:       map[string]any{"reason": conf.Reason, "acknowledged": true},
			Invalidate: append([]string{api.PathUsers}, moderationInvalidate...),
			Toast:      "User permanently banned",
		}
	case moderation.ActionBulkApprove:
		req = mutate.Request{
			Method:     "POST",
			Path:       api.BulkPath("approve"),
			Body:       map[string]any{"ids": conf.Targets},
			Invalidate: moderationInvalidate,
			Toast:      fmt.Sprintf("%d items approved", len(conf.Targets)),
		}
	case moderation.ActionBulkReject:
		req = mutate.Request{
			Method:     "POST",
			Path:       api.BulkPath("reject"),
			Body:       map[string]any{"ids": conf.Targets, "reason": conf.Reason},
			Invalidate: moderationInvalidate,
			Toast:      fmt.Sprintf("%d items rejected", len(conf.Targets)),
		}
	}
	req.Owner = s.Title()
	return s.deps.Dispatch.Dispatch(req)
}

func (s *ModerationSection) onDone(msg mutate.DoneMsg) (Section, tea.Cmd) {
	if msg.Err != nil {
		if s.dialog != nil {
			// Dialog stays open with the input intact for retry.
			s.dialog.Failed(msg.Err)
		} else {
			s.wf.Fail()
		}
		return s, func() tea.Msg {
			return ShowToastMsg{Text: "Action failed: " + msg.Err.Error(), Level: ToastError}
		}
	}
	conf := s.wf.Confirmation()
	if conf != nil && conf.Kind.Bulk() {
		s.selection.Clear()
		s.refreshRows()
	}
	s.wf.Resolve()
	s.dialog = nil
	toast := msg.Request.Toast
	return s, func() tea.Msg { return ShowToastMsg{Text: toast, Level: ToastSuccess} }
}

func (s *ModerationSection) View(width, height int) string {
	var b strings.Builder

	filter := s.typeFilter
	if filter == "" {
		filter = "all"
	}
	b.WriteString(fmt.Sprintf("Pending: %d  Flagged: %d  Reports: %d  •  Type: %s  •  Page %d/%d  •  Selected: %d\n",
		s.counts.Pending, s.counts.Flagged, s.counts.Reports, filter, s.page, s.pages, s.selection.Count()))

	switch {
	case s.queueSnap.Data == nil && s.queueSnap.Status == query.StatusLoading:
		b.WriteString("\n" + blurredStyle.Render("Loading queue..."))
	case s.queueSnap.Data == nil && s.queueSnap.Err != nil:
		b.WriteString("\n" + errorMessageStyle("Failed to load queue: "+s.queueSnap.Err.Error()))
	default:
		if s.queueSnap.Err != nil {
			b.WriteString(staleStyle.Render("refresh failed, showing last known data") + "\n")
		}
		b.WriteString(s.tbl.View())
	}

	b.WriteString("\n" + blurredStyle.Render(
		"Space: select • a: approve • r: reject • s: suspend author • b: ban author • A/R: bulk • t: type • n/p: page • F5: refresh"))

	view := b.String()
	if s.dialog != nil {
		view += "\n\n" + s.dialog.View()
	}
	return view
}
