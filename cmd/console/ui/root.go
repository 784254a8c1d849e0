package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"yoforex-admin/api"
	"yoforex-admin/internal/config"
	"yoforex-admin/internal/mutate"
	"yoforex-admin/internal/query"
	"yoforex-admin/internal/session"
)

type authState int

const (
	authChecking authState = iota
	authLogin
	authDenied
	authOK
)

type meMsg struct {
	principal api.Principal
	err       error
}

type clockMsg time.Time

// ConfigChangedMsg carries the freshly reloaded config from the file watcher.
type ConfigChangedMsg struct {
	Cfg config.AppConfig
}

// RootModel owns the shell: auth gating, the section router, and the toast.
// No admin-section query is issued until the session check passes; an
// unauthorized session only ever sees the login or access-denied screen.
type RootModel struct {
	deps *Deps
	sess *session.Store

	auth      authState
	principal api.Principal
	login     LoginModel

	sections []Section
	active   int

	toast    Toast
	width    int
	height   int
	quitting bool
}

func NewRootModel(deps *Deps, sess *session.Store) RootModel {
	m := RootModel{
		deps:     deps,
		sess:     sess,
		login:    NewLoginModel(deps),
		sections: buildSections(deps),
	}
	if sess.Token() != "" {
		m.auth = authChecking
	} else {
		m.auth = authLogin
	}
	return m
}

func (m RootModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.deps.Store.WaitForMsg, tickClock()}
	switch m.auth {
	case authChecking:
		cmds = append(cmds, m.checkAuth())
	case authLogin:
		cmds = append(cmds, m.login.Init())
	}
	return tea.Batch(cmds...)
}

func tickClock() tea.Cmd {
	return tea.Tick(30*time.Second, func(t time.Time) tea.Msg { return clockMsg(t) })
}

func (m RootModel) checkAuth() tea.Cmd {
	client := m.deps.Client
	timeout := m.deps.Cfg.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		p, err := client.Me(ctx)
		return meMsg{principal: p, err: err}
	}
}

// SwitchTo mounts the section at idx; anything out of range falls back to
// Overview. The outgoing section unsubscribes its queries first.
func (m *RootModel) SwitchTo(idx int) tea.Cmd {
	if idx < 0 || idx >= len(m.sections) {
		idx = 0
	}
	if idx == m.active {
		return nil
	}
	m.sections[m.active].Unmount()
	m.active = idx
	return m.sections[m.active].Init()
}

func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case clockMsg:
		cmds = append(cmds, tickClock())

	case ConfigChangedMsg:
		// Deps is shared by pointer, so every section's next subscription
		// uses the new page size and refetch interval.
		m.deps.Cfg = msg.Cfg

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}

	case meMsg:
		switch {
		case msg.err == api.ErrUnauthorized:
			m.sess.Clear()
			m.auth = authLogin
			m.login = NewLoginModel(m.deps)
			cmds = append(cmds, m.login.Init())
		case msg.err == api.ErrForbidden:
			m.auth = authDenied
		case msg.err != nil:
			if m.auth == authLogin {
				m.login.Err = msg.err
			} else {
				m.auth = authLogin
				m.login = NewLoginModel(m.deps)
				m.login.Err = msg.err
				cmds = append(cmds, m.login.Init())
			}
		case !msg.principal.CanAccessConsole():
			m.principal = msg.principal
			m.auth = authDenied
		default:
			m.principal = msg.principal
			m.auth = authOK
			cmds = append(cmds, m.sections[m.active].Init())
		}
		return m, tea.Batch(cmds...)

	case loginResultMsg:
		if msg.err == nil {
			if err := m.sess.Set(msg.token); err == nil {
				cmds = append(cmds, m.checkAuth())
				return m, tea.Batch(cmds...)
			}
		}
		// Fall through to the login model for error display.

	case ShowToastMsg:
		cmds = append(cmds, m.toast.Show(msg.Text, msg.Level))
		return m, tea.Batch(cmds...)

	case toastExpiredMsg:
		m.toast.Expire(msg)
		return m, nil
	}

	switch m.auth {
	case authLogin:
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		cmds = append(cmds, cmd)

	case authDenied:
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "l" {
			m.sess.Clear()
			m.auth = authLogin
			m.login = NewLoginModel(m.deps)
			cmds = append(cmds, m.login.Init())
		}

	case authOK:
		// A settled mutation goes back to the section that issued it; the
		// user may have switched away while it was in flight.
		if done, ok := msg.(mutate.DoneMsg); ok {
			if idx := m.sectionIndexByTitle(done.Request.Owner); idx >= 0 && idx != m.active {
				sec, cmd := m.sections[idx].Update(msg)
				m.sections[idx] = sec
				cmds = append(cmds, cmd)
				return m, tea.Batch(cmds...)
			}
		}
		if key, ok := msg.(tea.KeyMsg); ok && !m.sections[m.active].Busy() {
			if idx, ok := sectionIndexForKey(key.String()); ok {
				cmds = append(cmds, m.SwitchTo(idx))
				return m, tea.Batch(cmds...)
			}
		}
		sec, cmd := m.sections[m.active].Update(msg)
		m.sections[m.active] = sec
		cmds = append(cmds, cmd)
	}

	// Re-arm the message pump so the next fetch result comes through.
	if _, ok := msg.(query.ResultMsg); ok {
		cmds = append(cmds, m.deps.Store.WaitForMsg)
	}

	return m, tea.Batch(cmds...)
}

func (m RootModel) sectionIndexByTitle(title string) int {
	if title == "" {
		return -1
	}
	for i, sec := range m.sections {
		if sec.Title() == title {
			return i
		}
	}
	return -1
}

// sectionIndexForKey maps digit keys to sidebar slots: 1-9 then 0 for the
// tenth section.
func sectionIndexForKey(key string) (int, bool) {
	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return 0, false
	}
	if key == "0" {
		return 9, true
	}
	return int(key[0] - '1'), true
}

func (m RootModel) View() string {
	if m.quitting {
		return "Bye!\n"
	}
	switch m.auth {
	case authChecking:
		return blurredStyle.Render("Checking session...")
	case authLogin:
		return m.login.View()
	case authDenied:
		return m.deniedView()
	}
	return m.shellView()
}

func (m RootModel) deniedView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("YoForex Admin - Access Denied") + "\n\n")
	if m.principal.Username != "" {
		b.WriteString(fmt.Sprintf("Signed in as %s (%s).\n", m.principal.Username, m.principal.Role))
	}
	b.WriteString("This console requires an admin, moderator or superadmin role.\n\n")
	b.WriteString(blurredStyle.Render("l: log in as someone else • Ctrl+C: quit"))
	return b.String()
}

func (m RootModel) shellView() string {
	header := headerStyle.Render(fmt.Sprintf("YoForex Admin  •  %s (%s)  •  session %s",
		m.principal.Username, m.principal.Role, m.sessionLeft()))

	var side strings.Builder
	for i, sec := range m.sections {
		keyLabel := fmt.Sprintf("%d", (i+1)%10)
		line := fmt.Sprintf("%s %s", keyLabel, sec.Title())
		if i == m.active {
			side.WriteString(activeSectionStyle.Render(line))
		} else {
			side.WriteString(blurredStyle.Render(line))
		}
		side.WriteRune('\n')
	}

	contentWidth := m.width - 20
	if contentWidth < 40 {
		contentWidth = 40
	}
	contentHeight := m.height - 4
	if contentHeight < 10 {
		contentHeight = 10
	}
	content := m.sections[m.active].View(contentWidth, contentHeight)

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebarStyle.Render(side.String()), " "+content)

	out := header + "\n" + body
	if t := m.toast.View(); t != "" {
		out += "\n" + t
	}
	return out
}

func (m RootModel) sessionLeft() string {
	d := m.sess.ExpiresIn()
	if d <= 0 {
		return "active"
	}
	return d.Truncate(time.Minute).String()
}
