package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type loginResultMsg struct {
	token string
	err   error
}

// LoginModel is the "authentication required" screen. The API base URL
// comes from config; only credentials are asked for here.
type LoginModel struct {
	deps     *Deps
	Inputs   []textinput.Model
	FocusIdx int
	Err      error
	pending  bool
}

const (
	inputUsername = iota
	inputPassword
)

func NewLoginModel(deps *Deps) LoginModel {
	inputs := make([]textinput.Model, 2)

	inputs[inputUsername] = textinput.New()
	inputs[inputUsername].Placeholder = "admin"
	inputs[inputUsername].Prompt = "Username: "
	inputs[inputUsername].Focus()

	inputs[inputPassword] = textinput.New()
	inputs[inputPassword].Placeholder = "password"
	inputs[inputPassword].EchoMode = textinput.EchoPassword
	inputs[inputPassword].Prompt = "Password: "

	return LoginModel{deps: deps, Inputs: inputs}
}

func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	cmds := make([]tea.Cmd, len(m.Inputs))

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.pending {
			return m, nil
		}
		switch msg.Type {
		case tea.KeyEnter:
			if m.FocusIdx == len(m.Inputs)-1 {
				m.pending = true
				return m, m.loginCmd()
			}
			m.nextInput()
		case tea.KeyTab, tea.KeyDown:
			m.nextInput()
		case tea.KeyShiftTab, tea.KeyUp:
			m.prevInput()
		}
	case loginResultMsg:
		m.pending = false
		if msg.err != nil {
			m.Err = msg.err
		}
		return m, nil
	}

	for i := range m.Inputs {
		m.Inputs[i], cmds[i] = m.Inputs[i].Update(msg)
	}
	return m, tea.Batch(cmds...)
}

func (m *LoginModel) nextInput() {
	m.Inputs[m.FocusIdx].Blur()
	m.FocusIdx = (m.FocusIdx + 1) % len(m.Inputs)
	m.Inputs[m.FocusIdx].Focus()
}

func (m *LoginModel) prevInput() {
	m.Inputs[m.FocusIdx].Blur()
	m.FocusIdx--
	if m.FocusIdx < 0 {
		m.FocusIdx = len(m.Inputs) - 1
	}
	m.Inputs[m.FocusIdx].Focus()
}

func (m LoginModel) loginCmd() tea.Cmd {
	username := m.Inputs[inputUsername].Value()
	password := m.Inputs[inputPassword].Value()
	client := m.deps.Client
	timeout := m.deps.Cfg.RequestTimeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		token, err := client.Login(ctx, username, password)
		if err != nil {
			return loginResultMsg{err: err}
		}
		return loginResultMsg{token: token}
	}
}

func (m LoginModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("YoForex Admin - Authentication Required") + "\n\n")
	b.WriteString(blurredStyle.Render("API: "+m.deps.Cfg.APIBaseURL) + "\n\n")

	for i := range m.Inputs {
		b.WriteString(m.Inputs[i].View())
		if i < len(m.Inputs)-1 {
			b.WriteRune('\n')
		}
	}

	b.WriteString("\n\n")
	if m.pending {
		b.WriteString(staleStyle.Render("Signing in..."))
	} else {
		b.WriteString(blurredStyle.Render("Tab to change fields, Enter to submit"))
	}

	if m.Err != nil {
		b.WriteString("\n\n" + errorMessageStyle(m.Err.Error()))
	}
	return b.String()
}
