package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"yoforex-admin/api"
	"yoforex-admin/internal/moderation"
	"yoforex-admin/internal/mutate"
	"yoforex-admin/internal/query"
)

// UsersSection lists accounts with search, and suspends/bans through the
// same guarded dialog the moderation queue uses.
type UsersSection struct {
	deps *Deps

	tbl       table.Model
	users     []api.User
	search    textinput.Model
	searching bool

	wf     *moderation.Workflow
	dialog *ConfirmDialog

	page  int
	pages int

	key  query.Key
	snap query.Snapshot
}

func NewUsersSection(deps *Deps) *UsersSection {
	columns := []table.Column{
		{Title: "ID", Width: 10},
		{Title: "Username", Width: 18},
		{Title: "Email", Width: 26},
		{Title: "Role", Width: 10},
		{Title: "Status", Width: 10},
		{Title: "Coins", Width: 8},
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

	ti := textinput.New()
	ti.Placeholder = "Search username or email"
	ti.Prompt = "/ "
	ti.Width = 32

	return &UsersSection{
		deps:   deps,
		tbl:    t,
		search: ti,
		wf:     moderation.NewWorkflow(),
		page:   1,
		pages:  1,
	}
}

func (s *UsersSection) Title() string { return "Users" }
func (s *UsersSection) Busy() bool    { return s.dialog != nil || s.searching }

func (s *UsersSection) makeKey() query.Key {
	filters := query.Filters{"page": s.page, "perPage": s.deps.Cfg.PageSize}
	if q := strings.TrimSpace(s.search.Value()); q != "" {
		filters["search"] = q
	}
	return query.NewKey(api.PathUsers, filters)
}

func (s *UsersSection) Init() tea.Cmd {
	s.subscribe()
	return nil
}

func (s *UsersSection) subscribe() {
	s.key = s.makeKey()
	s.apply(s.deps.Store.Subscribe(s.key, query.Options{}))
}

func (s *UsersSection) Unmount() {
	s.deps.Store.Unsubscribe(s.key)
}

func (s *UsersSection) requery() {
	s.Unmount()
	s.subscribe()
}

func (s *UsersSection) apply(snap query.Snapshot) {
	s.snap = snap
	if snap.Data == nil {
		return
	}
	list := api.DecodeList[api.User](snap.Data)
	s.users = list.Items
	s.pages = list.Pages

	rows := make([]table.Row, len(s.users))
	for i, u := range s.users {
		rows[i] = table.Row{u.ID, u.Username, u.Email, u.Role, u.Status, fmt.Sprintf("%d", u.Coins)}
	}
	s.tbl.SetRows(rows)
	if s.tbl.Cursor() >= len(rows) && len(rows) > 0 {
		s.tbl.SetCursor(len(rows) - 1)
	}
}

func (s *UsersSection) current() (api.User, bool) {
	idx := s.tbl.Cursor()
	if idx < 0 || idx >= len(s.users) {
		return api.User{}, false
	}
	return s.users[idx], true
}

func (s *UsersSection) Update(msg tea.Msg) (Section, tea.Cmd) {
	switch msg := msg.(type) {
	case query.ResultMsg:
		if msg.Snapshot.Key.String() == s.key.String() {
			s.apply(msg.Snapshot)
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
		if s.searching {
			switch key.String() {
			case "enter":
				s.searching = false
				s.search.Blur()
				s.page = 1
				s.requery()
				return s, nil
			case "esc":
				s.searching = false
				s.search.Blur()
				s.search.SetValue("")
				s.page = 1
				s.requery()
				return s, nil
			}
			var cmd tea.Cmd
			s.search, cmd = s.search.Update(msg)
			return s, cmd
		}

		switch key.String() {
		case "/":
			s.searching = true
			s.search.Focus()
			return s, textinput.Blink
		case "s":
			if u, ok := s.current(); ok {
				return s, s.begin(moderation.ActionSuspend, u)
			}
			return s, nil
		case "b":
			if u, ok := s.current(); ok {
				return s, s.begin(moderation.ActionBan, u)
			}
			return s, nil
		case "n":
			if s.page < s.pages {
				s.page++
				s.requery()
			}
			return s, nil
		case "p":
			if s.page > 1 {
				s.page--
				s.requery()
			}
			return s, nil
		case "f5":
			s.deps.Store.Invalidate(api.PathUsers)
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.tbl, cmd = s.tbl.Update(msg)
	return s, cmd
}

func (s *UsersSection) begin(kind moderation.ActionKind, u api.User) tea.Cmd {
	needsDialog, err := s.wf.Begin(kind, []string{u.ID})
	if err != nil {
		if errors.Is(err, moderation.ErrBusy) {
			return nil
		}
		return func() tea.Msg { return ShowToastMsg{Text: err.Error(), Level: ToastError} }
	}
	if needsDialog {
		s.dialog = NewConfirmDialog(s.wf, "user: "+u.Username)
	}
	return nil
}

func (s *UsersSection) dispatch(conf *moderation.Confirmation) tea.Cmd {
	invalidate := []string{api.PathUsers, api.PathStats}
	var req mutate.Request
	switch conf.Kind {
	case moderation.ActionSuspend:
		req = mutate.Request{
			Method:     "POST",
			Path:       api.SuspendUserPath(conf.Targets[0]),
			Body:       map[string]any{"reason": conf.Reason, "days": conf.SuspendDays},
			Invalidate: invalidate,
			Toast:      fmt.Sprintf("User suspended for %d days", conf.SuspendDays),
		}
	case moderation.ActionBan:
		req = mutate.Request{
			Method:     "POST",
			Path:       api.BanUserPath(conf.Targets[0]),
			Body:       map[string]any{"reason": conf.Reason, "acknowledged": true},
			Invalidate: invalidate,
			Toast:      "User permanently banned",
		}
	}
	req.Owner = s.Title()
	return s.deps.Dispatch.Dispatch(req)
}

func (s *UsersSection) onDone(msg mutate.DoneMsg) (Section, tea.Cmd) {
	if msg.Err != nil {
		if s.dialog != nil {
			s.dialog.Failed(msg.Err)
		} else {
			s.wf.Fail()
		}
		return s, func() tea.Msg {
			return ShowToastMsg{Text: "Action failed: " + msg.Err.Error(), Level: ToastError}
		}
	}
	s.wf.Resolve()
	s.dialog = nil
	toast := msg.Request.Toast
	return s, func() tea.Msg { return ShowToastMsg{Text: toast, Level: ToastSuccess} }
}

func (s *UsersSection) View(width, height int) string {
	var b strings.Builder

	if s.searching || s.search.Value() != "" {
		b.WriteString(s.search.View() + "\n")
	}
	b.WriteString(fmt.Sprintf("Page %d/%d\n", s.page, s.pages))

	switch {
	case s.snap.Data == nil && s.snap.Status == query.StatusLoading:
		b.WriteString("\n" + blurredStyle.Render("Loading users..."))
	case s.snap.Data == nil && s.snap.Err != nil:
		b.WriteString("\n" + errorMessageStyle("Failed to load users: "+s.snap.Err.Error()))
	default:
		if s.snap.Err != nil {
			b.WriteString(staleStyle.Render("refresh failed, showing last known data") + "\n")
		}
		b.WriteString(s.tbl.View())
	}

	b.WriteString("\n" + blurredStyle.Render("/: search • s: suspend • b: ban • n/p: page • F5: refresh"))

	view := b.String()
	if s.dialog != nil {
		view += "\n\n" + s.dialog.View()
	}
	return view
}
