package workflow

import "github.com/Ramsey-B/aster/pkg/models"

// transitions is the proposal lifecycle table. A status maps to the set of
// statuses it may move to; anything absent is rejected.
var transitions = map[models.ProposalStatus]map[models.ProposalStatus]bool{
	models.StatusDraft: {
		models.StatusSubmitted: true,
	},
	models.StatusSubmitted: {
		models.StatusInReview: true,
	},
	models.StatusInReview: {
		models.StatusAccepted: true,
		models.StatusRejected: true,
		models.StatusRevision: true,
	},
	models.StatusRevision: {
		models.StatusSubmitted: true,
	},
	models.StatusAccepted: {
		models.StatusRunning: true,
	},
	models.StatusRunning: {
		models.StatusCompleted: true,
	},
	// DITOLAK and SELESAI are terminal
	models.StatusRejected:  {},
	models.StatusCompleted: {},
}

// CanTransition reports whether a proposal may move from one status to
// another.
func CanTransition(from, to models.ProposalStatus) bool {
	allowed, ok := transitions[from]
	return ok && allowed[to]
}

// Transition validates a status change, returning ErrInvalidTransition when
// the lifecycle table forbids it.
func Transition(from, to models.ProposalStatus) error {
	if !CanTransition(from, to) {
		return ErrInvalidTransition
	}
	return nil
}

// IsEditable reports whether the investigator may still edit the proposal
func IsEditable(status models.ProposalStatus) bool {
	return status == models.StatusDraft || status == models.StatusRevision
}

// IsDeletable reports whether the proposal may be deleted. Reviewer
// assignments are checked separately by the service.
func IsDeletable(status models.ProposalStatus) bool {
	return status == models.StatusDraft
}

// IsTerminal reports whether no further transitions exist from status
func IsTerminal(status models.ProposalStatus) bool {
	allowed, ok := transitions[status]
	return ok && len(allowed) == 0
}
