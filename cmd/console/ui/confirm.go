package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"yoforex-admin/internal/moderation"
)

// ConfirmedMsg means the user confirmed a validated destructive action; the
// owning section dispatches the mutation.
type ConfirmedMsg struct {
	Confirmation *moderation.Confirmation
}

// ConfirmDialog is the one guarded-destructive-action dialog, reused by
// every section that rejects, suspends or bans. It collects whatever the
// action kind requires (reason, day count, acknowledgment) and refuses to
// emit ConfirmedMsg until the workflow guards pass.
type ConfirmDialog struct {
	wf      *moderation.Workflow
	subject string

	reason  textarea.Model
	days    textinput.Model
	ack     bool
	spin    spinner.Model
	focus   int
	pending bool
	errText string
}

// Dialog focus slots, in order; absent fields are skipped.
const (
	slotReason = iota
	slotDays
	slotAck
	slotSubmit
	slotCancel
)

func NewConfirmDialog(wf *moderation.Workflow, subject string) *ConfirmDialog {
	ta := textarea.New()
	ta.Placeholder = fmt.Sprintf("Reason (%d-%d characters)", moderation.ReasonMinLen, moderation.ReasonMaxLen)
	ta.SetWidth(56)
	ta.SetHeight(4)
	ta.CharLimit = 0

	ti := textinput.New()
	ti.Placeholder = fmt.Sprintf("Days (%d-%d)", moderation.SuspendMinDays, moderation.SuspendMaxDays)
	ti.CharLimit = 3
	ti.Width = 12

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	d := &ConfirmDialog{wf: wf, subject: subject, reason: ta, days: ti, spin: sp}
	d.focus = d.slots()[0]
	d.applyFocus()
	return d
}

func (d *ConfirmDialog) kind() moderation.ActionKind {
	if c := d.wf.Confirmation(); c != nil {
		return c.Kind
	}
	return moderation.ActionApprove
}

// slots lists the focusable fields for the current action kind.
func (d *ConfirmDialog) slots() []int {
	var out []int
	k := d.kind()
	if k.NeedsReason() {
		out = append(out, slotReason)
	}
	if k == moderation.ActionSuspend {
		out = append(out, slotDays)
	}
	if k == moderation.ActionBan {
		out = append(out, slotAck)
	}
	return append(out, slotSubmit, slotCancel)
}

func (d *ConfirmDialog) move(dir int) {
	slots := d.slots()
	cur := 0
	for i, s := range slots {
		if s == d.focus {
			cur = i
			break
		}
	}
	cur = (cur + dir + len(slots)) % len(slots)
	d.focus = slots[cur]
	d.applyFocus()
}

func (d *ConfirmDialog) applyFocus() {
	if d.focus == slotReason {
		d.reason.Focus()
	} else {
		d.reason.Blur()
	}
	if d.focus == slotDays {
		d.days.Focus()
	} else {
		d.days.Blur()
	}
}

func (d *ConfirmDialog) Pending() bool { return d.pending }

// Failed re-opens the dialog for retry after a dispatch error. Input is
// kept; only the error line changes.
func (d *ConfirmDialog) Failed(err error) {
	d.pending = false
	d.errText = err.Error()
	d.wf.Fail()
}

func (d *ConfirmDialog) Update(msg tea.Msg) (*ConfirmDialog, tea.Cmd) {
	var cmds []tea.Cmd

	if d.pending {
		var cmd tea.Cmd
		d.spin, cmd = d.spin.Update(msg)
		return d, cmd
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			d.wf.Cancel()
			return nil, nil
		case "tab", "down":
			if d.focus != slotReason || key.String() == "tab" {
				d.move(1)
				return d, nil
			}
		case "shift+tab", "up":
			if d.focus != slotReason || key.String() == "shift+tab" {
				d.move(-1)
				return d, nil
			}
		case " ":
			if d.focus == slotAck {
				d.ack = !d.ack
				return d, nil
			}
		case "enter":
			switch d.focus {
			case slotSubmit:
				return d.submit()
			case slotCancel:
				d.wf.Cancel()
				return nil, nil
			case slotDays, slotAck:
				d.move(1)
				return d, nil
			}
		}
	}

	var cmd tea.Cmd
	switch d.focus {
	case slotReason:
		d.reason, cmd = d.reason.Update(msg)
		cmds = append(cmds, cmd)
	case slotDays:
		d.days, cmd = d.days.Update(msg)
		cmds = append(cmds, cmd)
	}
	return d, tea.Batch(cmds...)
}

func (d *ConfirmDialog) submit() (*ConfirmDialog, tea.Cmd) {
	d.wf.SetReason(strings.TrimSpace(d.reason.Value()))
	if d.kind() == moderation.ActionSuspend {
		days, err := strconv.Atoi(strings.TrimSpace(d.days.Value()))
		if err != nil {
			days = 0
		}
		d.wf.SetSuspendDays(days)
	}
	d.wf.SetAcknowledged(d.ack)

	conf, err := d.wf.Confirm()
	if err != nil {
		d.errText = err.Error()
		return d, nil
	}
	d.errText = ""
	d.pending = true
	return d, tea.Batch(
		d.spin.Tick,
		func() tea.Msg { return ConfirmedMsg{Confirmation: conf} },
	)
}

func (d *ConfirmDialog) View() string {
	conf := d.wf.Confirmation()
	if conf == nil {
		return ""
	}
	var b strings.Builder

	title := fmt.Sprintf("Confirm %s", conf.Kind)
	if conf.Kind.Bulk() {
		title = fmt.Sprintf("Confirm %s (%d items)", conf.Kind, len(conf.Targets))
	}
	b.WriteString(titleStyle.Render(title) + "\n")
	if d.subject != "" {
		b.WriteString(blurredStyle.Render(d.subject) + "\n")
	}
	b.WriteString("\n")

	k := conf.Kind
	if k.NeedsReason() {
		b.WriteString(d.fieldLabel("Reason *", slotReason) + "\n")
		b.WriteString(d.reason.View() + "\n\n")
	}
	if k == moderation.ActionSuspend {
		b.WriteString(d.fieldLabel("Suspension days *", slotDays) + "\n")
		b.WriteString(d.days.View() + "\n\n")
	}
	if k == moderation.ActionBan {
		box := "[ ]"
		if d.ack {
			box = "[x]"
		}
		b.WriteString(d.fieldLabel(box+" I understand this ban is permanent", slotAck) + "\n\n")
	}

	if d.pending {
		b.WriteString(d.spin.View() + " dispatching...\n")
	} else {
		b.WriteString(d.button("Confirm", slotSubmit) + "  " + d.button("Cancel", slotCancel) + "\n")
	}

	if d.errText != "" {
		b.WriteString("\n" + errorMessageStyle(d.errText))
	}
	b.WriteString("\n" + blurredStyle.Render("Tab: next field • Space: toggle • Esc: cancel"))

	return dialogStyle.Render(b.String())
}

func (d *ConfirmDialog) fieldLabel(text string, slot int) string {
	if d.focus == slot {
		return focusedStyle.Render(text)
	}
	return text
}

func (d *ConfirmDialog) button(text string, slot int) string {
	if d.focus == slot {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("205")).Padding(0, 3).Bold(true).Render(text)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("254")).Background(lipgloss.Color("240")).Padding(0, 3).Render(text)
}
