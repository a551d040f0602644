package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/aster/pkg/models"
)

func TestCanTransition(t *testing.T) {
	allStatuses := []models.ProposalStatus{
		models.StatusDraft,
		models.StatusSubmitted,
		models.StatusInReview,
		models.StatusRevision,
		models.StatusAccepted,
		models.StatusRejected,
		models.StatusRunning,
		models.StatusCompleted,
	}

	allowed := map[[2]models.ProposalStatus]bool{
		{models.StatusDraft, models.StatusSubmitted}:     true,
		{models.StatusSubmitted, models.StatusInReview}:  true,
		{models.StatusInReview, models.StatusAccepted}:   true,
		{models.StatusInReview, models.StatusRejected}:   true,
		{models.StatusInReview, models.StatusRevision}:   true,
		{models.StatusRevision, models.StatusSubmitted}:  true,
		{models.StatusAccepted, models.StatusRunning}:    true,
		{models.StatusRunning, models.StatusCompleted}:   true,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := allowed[[2]models.ProposalStatus{from, to}]
			assert.Equalf(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTransition_Invalid(t *testing.T) {
	err := Transition(models.StatusDraft, models.StatusAccepted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	ge, ok := AsGateError(err)
	assert.True(t, ok)
	assert.Equal(t, "INVALID_TRANSITION", ge.Code)
}

func TestTransition_UnknownStatus(t *testing.T) {
	assert.False(t, CanTransition(models.ProposalStatus("BOGUS"), models.StatusSubmitted))
	assert.False(t, CanTransition(models.StatusDraft, models.ProposalStatus("BOGUS")))
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, IsTerminal(models.StatusRejected))
	assert.True(t, IsTerminal(models.StatusCompleted))
	assert.False(t, IsTerminal(models.StatusRunning))
	assert.False(t, IsTerminal(models.ProposalStatus("BOGUS")))
}

func TestIsEditable(t *testing.T) {
	assert.True(t, IsEditable(models.StatusDraft))
	assert.True(t, IsEditable(models.StatusRevision))
	assert.False(t, IsEditable(models.StatusSubmitted))
	assert.False(t, IsEditable(models.StatusRunning))
}

func TestIsDeletable(t *testing.T) {
	assert.True(t, IsDeletable(models.StatusDraft))
	assert.False(t, IsDeletable(models.StatusRevision))
	assert.False(t, IsDeletable(models.StatusCompleted))
}
