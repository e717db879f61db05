package domain

import (
	"time"

	"freight_backoffice/platform/apperr"
)

// Action names a requested workflow step.
type Action string

const (
	ActionSend   Action = "send"
	ActionAccept Action = "accept"
	ActionReject Action = "reject"
	ActionEdit   Action = "edit"
)

type transition struct {
	from Status
	to   Status
}

var transitions = map[Action]transition{
	ActionSend:   {from: StatusDraft, to: StatusSent},
	ActionAccept: {from: StatusSent, to: StatusAccepted},
	ActionReject: {from: StatusSent, to: StatusRejected},
	ActionEdit:   {from: StatusDraft, to: StatusDraft},
}

// CanApply reports whether action is allowed from the quote's stored status.
func (q Quote) CanApply(action Action) bool {
	t, ok := transitions[action]
	return ok && t.from == q.Status
}

// AllowedActions lists the actions valid from the stored status.
func (q Quote) AllowedActions() []Action {
	out := make([]Action, 0, 2)
	for _, a := range []Action{ActionEdit, ActionSend, ActionAccept, ActionReject} {
		if q.CanApply(a) {
			out = append(out, a)
		}
	}
	return out
}

// Apply performs a status-changing action and returns the updated quote.
// On error the receiver is returned untouched.
func (q Quote) Apply(action Action, now time.Time) (Quote, error) {
	if !q.CanApply(action) {
		return q, apperr.InvalidTransition(string(action), string(q.Status))
	}
	if action == ActionEdit {
		return q, apperr.BadRequest("use Edit to change quote content")
	}

	stamp := q.stamp(now)
	next := q
	next.Status = transitions[action].to
	next.UpdatedAt = stamp
	switch action {
	case ActionSend:
		next.SentAt = &stamp
	case ActionAccept:
		next.AcceptedAt = &stamp
	case ActionReject:
		next.RejectedAt = &stamp
	}
	return next, nil
}

// Send moves a draft to sent.
func (q Quote) Send(now time.Time) (Quote, error) { return q.Apply(ActionSend, now) }

// Accept moves a sent quote to accepted.
func (q Quote) Accept(now time.Time) (Quote, error) { return q.Apply(ActionAccept, now) }

// Reject moves a sent quote to rejected.
func (q Quote) Reject(now time.Time) (Quote, error) { return q.Apply(ActionReject, now) }

// Edit replaces the content and cost sheet of a draft.
func (q Quote) Edit(content Content, sheet CostSheet, now time.Time) (Quote, error) {
	if !q.CanApply(ActionEdit) {
		return q, apperr.InvalidTransition(string(ActionEdit), string(q.Status))
	}
	next := q.WithCostSheet(sheet)
	next.Content = content
	next.UpdatedAt = q.stamp(now)
	return next, nil
}

// UpdateCosts swaps the cost sheet of a draft. It is an edit.
func (q Quote) UpdateCosts(sheet CostSheet, now time.Time) (Quote, error) {
	return q.Edit(q.Content, sheet, now)
}

// stamp keeps timestamps monotonic against a skewed clock.
func (q Quote) stamp(now time.Time) time.Time {
	now = now.UTC()
	if now.Before(q.UpdatedAt) {
		return q.UpdatedAt
	}
	return now
}
