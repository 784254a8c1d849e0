package moderation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("c%d", i)
	}
	return out
}

func TestConfirmationValidate(t *testing.T) {
	tests := []struct {
		name string
		conf Confirmation
		want error
	}{
		{
			name: "reject reason of 9 chars rejected",
			conf: Confirmation{Kind: ActionReject, Targets: []string{"t1"}, Reason: strings.Repeat("a", 9)},
			want: ErrReasonLength,
		},
		{
			name: "reject reason of 10 chars accepted",
			conf: Confirmation{Kind: ActionReject, Targets: []string{"t1"}, Reason: strings.Repeat("a", 10)},
		},
		{
			name: "reject reason of 500 chars accepted",
			conf: Confirmation{Kind: ActionReject, Targets: []string{"t1"}, Reason: strings.Repeat("a", 500)},
		},
		{
			name: "reject reason of 501 chars rejected",
			conf: Confirmation{Kind: ActionReject, Targets: []string{"t1"}, Reason: strings.Repeat("a", 501)},
			want: ErrReasonLength,
		},
		{
			name: "reason length counts runes not bytes",
			conf: Confirmation{Kind: ActionReject, Targets: []string{"t1"}, Reason: strings.Repeat("é", 10)},
		},
		{
			name: "suspend of 0 days rejected",
			conf: Confirmation{Kind: ActionSuspend, Targets: []string{"u1"}, Reason: strings.Repeat("a", 20), SuspendDays: 0},
			want: ErrSuspendDays,
		},
		{
			name: "suspend of 1 day accepted",
			conf: Confirmation{Kind: ActionSuspend, Targets: []string{"u1"}, Reason: strings.Repeat("a", 20), SuspendDays: 1},
		},
		{
			name: "suspend of 365 days accepted",
			conf: Confirmation{Kind: ActionSuspend, Targets: []string{"u1"}, Reason: strings.Repeat("a", 20), SuspendDays: 365},
		},
		{
			name: "suspend of 366 days rejected",
			conf: Confirmation{Kind: ActionSuspend, Targets: []string{"u1"}, Reason: strings.Repeat("a", 20), SuspendDays: 366},
			want: ErrSuspendDays,
		},
		{
			name: "ban without acknowledgment rejected",
			conf: Confirmation{Kind: ActionBan, Targets: []string{"u1"}, Reason: strings.Repeat("a", 20)},
			want: ErrAckRequired,
		},
		{
			name: "ban with acknowledgment accepted",
			conf: Confirmation{Kind: ActionBan, Targets: []string{"u1"}, Reason: strings.Repeat("a", 20), Acknowledged: true},
		},
		{
			name: "bulk of 100 accepted",
			conf: Confirmation{Kind: ActionBulkReject, Targets: ids(100), Reason: strings.Repeat("a", 20)},
		},
		{
			name: "bulk of 101 rejected",
			conf: Confirmation{Kind: ActionBulkReject, Targets: ids(101), Reason: strings.Repeat("a", 20)},
			want: ErrTooManySelected,
		},
		{
			name: "bulk approve needs no reason",
			conf: Confirmation{Kind: ActionBulkApprove, Targets: ids(3)},
		},
		{
			name: "no targets rejected",
			conf: Confirmation{Kind: ActionReject, Reason: strings.Repeat("a", 20)},
			want: ErrNoTargets,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conf.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestWorkflowApproveSkipsConfirmation(t *testing.T) {
	w := NewWorkflow()

	needsDialog, err := w.Begin(ActionApprove, []string{"t1"})
	require.NoError(t, err)
	assert.False(t, needsDialog)
	assert.Equal(t, PhaseDispatching, w.Phase())
}

func TestWorkflowIgnoresTriggersWhileDispatching(t *testing.T) {
	w := NewWorkflow()

	_, err := w.Begin(ActionApprove, []string{"t1"})
	require.NoError(t, err)
	require.Equal(t, PhaseDispatching, w.Phase())

	// The same trigger again, and a different one, while the dispatch is
	// still in flight: both refused, the pending confirmation untouched.
	_, err = w.Begin(ActionApprove, []string{"t1"})
	assert.ErrorIs(t, err, ErrBusy)
	_, err = w.Begin(ActionReject, []string{"t2"})
	assert.ErrorIs(t, err, ErrBusy)

	require.NotNil(t, w.Confirmation())
	assert.Equal(t, ActionApprove, w.Confirmation().Kind)
	assert.Equal(t, []string{"t1"}, w.Confirmation().Targets)
	assert.Equal(t, PhaseDispatching, w.Phase())
}

func TestWorkflowBulkOverLimitBlocksBeforeDialog(t *testing.T) {
	w := NewWorkflow()

	needsDialog, err := w.Begin(ActionBulkReject, ids(101))
	assert.ErrorIs(t, err, ErrTooManySelected)
	assert.False(t, needsDialog)
	assert.Equal(t, PhaseListed, w.Phase(), "an over-limit selection must not open a dialog")
	assert.Nil(t, w.Confirmation())
}

func TestWorkflowRejectWithShortReasonStaysOpen(t *testing.T) {
	w := NewWorkflow()

	needsDialog, err := w.Begin(ActionBulkReject, ids(3))
	require.NoError(t, err)
	require.True(t, needsDialog)

	w.SetReason("spam!")
	conf, err := w.Confirm()
	assert.ErrorIs(t, err, ErrReasonLength)
	assert.Nil(t, conf, "no dispatch may be attempted with an invalid reason")
	assert.Equal(t, PhaseConfirming, w.Phase(), "the dialog stays open with a validation message")
	assert.ErrorIs(t, w.ValidationErr(), ErrReasonLength)

	// Fixing the reason clears the inline error and dispatches.
	w.SetReason("repeated promotional spam across threads")
	conf, err = w.Confirm()
	require.NoError(t, err)
	require.NotNil(t, conf)
	assert.NoError(t, w.ValidationErr())
	assert.Equal(t, PhaseDispatching, w.Phase())
}

func TestWorkflowFailReturnsToConfirming(t *testing.T) {
	w := NewWorkflow()

	_, err := w.Begin(ActionBan, []string{"u9"})
	require.NoError(t, err)
	w.SetReason("persistent scam listings over several weeks")
	w.SetAcknowledged(true)
	_, err = w.Confirm()
	require.NoError(t, err)

	w.Fail()
	assert.Equal(t, PhaseConfirming, w.Phase(), "a failed dispatch reopens the dialog")
	require.NotNil(t, w.Confirmation())
	assert.Equal(t, "persistent scam listings over several weeks", w.Confirmation().Reason,
		"input is preserved for retry")
}

func TestWorkflowResolveClearsState(t *testing.T) {
	w := NewWorkflow()

	_, err := w.Begin(ActionReject, []string{"t1"})
	require.NoError(t, err)
	w.SetReason("duplicate content, original already approved")
	_, err = w.Confirm()
	require.NoError(t, err)

	w.Resolve()
	assert.Equal(t, PhaseListed, w.Phase())
	assert.Nil(t, w.Confirmation())
}

func TestWorkflowCancel(t *testing.T) {
	w := NewWorkflow()

	_, err := w.Begin(ActionSuspend, []string{"u1"})
	require.NoError(t, err)
	w.Cancel()
	assert.Equal(t, PhaseListed, w.Phase())
	assert.Nil(t, w.Confirmation())
}

func TestSelection(t *testing.T) {
	s := NewSelection()

	s.Toggle("a")
	s.Toggle("b")
	s.Toggle("c")
	s.Toggle("b") // deselect
	assert.Equal(t, 2, s.Count())
	assert.Equal(t, []string{"a", "c"}, s.IDs())
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("b"))

	// Page change: only ids still visible survive.
	s.Prune([]string{"c", "d"})
	assert.Equal(t, []string{"c"}, s.IDs())

	s.Clear()
	assert.Zero(t, s.Count())
}
