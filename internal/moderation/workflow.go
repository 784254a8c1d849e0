package moderation

// Phase of the workflow for the item or selection being acted on.
type Phase int

const (
	PhaseListed Phase = iota
	PhaseConfirming
	PhaseDispatching
)

// Workflow drives one listed-confirm-dispatch cycle. It owns the guards;
// the UI owns rendering and the actual HTTP dispatch. Confirmation only
// advances on an explicit Confirm call, never automatically.
type Workflow struct {
	phase   Phase
	confirm *Confirmation
	vErr    error
}

func NewWorkflow() *Workflow {
	return &Workflow{phase: PhaseListed}
}

func (w *Workflow) Phase() Phase { return w.phase }

func (w *Workflow) Confirmation() *Confirmation { return w.confirm }

// ValidationErr is the inline message for the open dialog, nil when clean.
func (w *Workflow) ValidationErr() error { return w.vErr }

// Begin starts an action against the given targets. The returned flag says
// whether a confirmation dialog is needed; approve actions go straight to
// dispatch. A bulk selection over the limit is refused here, before any
// dialog opens, so nothing is silently truncated. While a confirmation or
// dispatch is in flight Begin returns ErrBusy: a double-pressed trigger must
// not re-issue the pending action.
func (w *Workflow) Begin(kind ActionKind, targets []string) (bool, error) {
	if w.phase != PhaseListed {
		return false, ErrBusy
	}
	if len(targets) == 0 {
		return false, ErrNoTargets
	}
	if kind.Bulk() && len(targets) > BulkLimit {
		return false, ErrTooManySelected
	}
	w.confirm = &Confirmation{Kind: kind, Targets: targets}
	w.vErr = nil
	if !kind.Destructive() {
		w.phase = PhaseDispatching
		return false, nil
	}
	w.phase = PhaseConfirming
	return true, nil
}

func (w *Workflow) SetReason(reason string) {
	if w.confirm != nil {
		w.confirm.Reason = reason
	}
}

func (w *Workflow) SetSuspendDays(days int) {
	if w.confirm != nil {
		w.confirm.SuspendDays = days
	}
}

func (w *Workflow) SetAcknowledged(ack bool) {
	if w.confirm != nil {
		w.confirm.Acknowledged = ack
	}
}

// Confirm validates the pending confirmation. On success the workflow moves
// to dispatching and the caller issues the mutation; on failure it stays in
// the confirming phase with the validation error exposed for inline display.
func (w *Workflow) Confirm() (*Confirmation, error) {
	if w.phase != PhaseConfirming || w.confirm == nil {
		return nil, ErrNoTargets
	}
	if err := w.confirm.Validate(); err != nil {
		w.vErr = err
		return nil, err
	}
	w.vErr = nil
	w.phase = PhaseDispatching
	return w.confirm, nil
}

// Cancel abandons the pending action.
func (w *Workflow) Cancel() {
	w.phase = PhaseListed
	w.confirm = nil
	w.vErr = nil
}

// Resolve completes a successful dispatch: confirmation state is destroyed
// and the workflow returns to the listing.
func (w *Workflow) Resolve() {
	w.phase = PhaseListed
	w.confirm = nil
	w.vErr = nil
}

// Fail returns a failed dispatch to its confirmation dialog (approve, which
// has none, returns to the listing). Input is preserved for retry.
func (w *Workflow) Fail() {
	if w.confirm != nil && w.confirm.Kind.Destructive() {
		w.phase = PhaseConfirming
		return
	}
	w.phase = PhaseListed
	w.confirm = nil
}
