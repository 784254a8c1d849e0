package moderation

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

type ActionKind int

const (
	ActionApprove ActionKind = iota
	ActionReject
	ActionSuspend
	ActionBan
	ActionBulkApprove
	ActionBulkReject
)

func (k ActionKind) String() string {
	switch k {
	case ActionApprove:
		return "approve"
	case ActionReject:
		return "reject"
	case ActionSuspend:
		return "suspend"
	case ActionBan:
		return "ban"
	case ActionBulkApprove:
		return "bulk approve"
	case ActionBulkReject:
		return "bulk reject"
	}
	return "unknown"
}

// Bulk reports whether the action targets a selection rather than one item.
func (k ActionKind) Bulk() bool {
	return k == ActionBulkApprove || k == ActionBulkReject
}

// Destructive actions require a confirmation dialog. Single-item approve is
// the one direct dispatch; bulk actions always confirm, approve included.
func (k ActionKind) Destructive() bool {
	return k != ActionApprove
}

// NeedsReason reports whether the action carries a free-text reason.
func (k ActionKind) NeedsReason() bool {
	switch k {
	case ActionReject, ActionSuspend, ActionBan, ActionBulkReject:
		return true
	}
	return false
}

// Guard boundaries, all inclusive.
const (
	ReasonMinLen   = 10
	ReasonMaxLen   = 500
	SuspendMinDays = 1
	SuspendMaxDays = 365
	BulkLimit      = 100
)

var (
	ErrBusy            = errors.New("an action is already in progress")
	ErrNoTargets       = errors.New("no content selected")
	ErrReasonLength    = fmt.Errorf("reason must be %d to %d characters", ReasonMinLen, ReasonMaxLen)
	ErrSuspendDays     = fmt.Errorf("suspension must be %d to %d days", SuspendMinDays, SuspendMaxDays)
	ErrTooManySelected = fmt.Errorf("bulk actions are limited to %d items", BulkLimit)
	ErrAckRequired     = errors.New("permanent ban must be acknowledged")
)

// Confirmation captures a destructive action pending user confirmation.
// Created when the action is initiated, destroyed on cancel or dispatch.
type Confirmation struct {
	Kind         ActionKind
	Targets      []string
	Reason       string
	SuspendDays  int
	Acknowledged bool
}

// Validate applies the guards. Runs locally, before any network call; a
// failure keeps the dialog open with an inline message.
func (c *Confirmation) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTargets
	}
	if c.Kind.Bulk() && len(c.Targets) > BulkLimit {
		return ErrTooManySelected
	}
	if c.Kind.NeedsReason() {
		if n := utf8.RuneCountInString(c.Reason); n < ReasonMinLen || n > ReasonMaxLen {
			return ErrReasonLength
		}
	}
	if c.Kind == ActionSuspend {
		if c.SuspendDays < SuspendMinDays || c.SuspendDays > SuspendMaxDays {
			return ErrSuspendDays
		}
	}
	if c.Kind == ActionBan && !c.Acknowledged {
		return ErrAckRequired
	}
	return nil
}
