package lifecycle

import (
	"testing"

	"favr_backend/internal/models"
	"favr_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allTaskStatuses = []models.TaskStatus{
	models.TaskStatusOpen,
	models.TaskStatusMatched,
	models.TaskStatusInProgress,
	models.TaskStatusCompleted,
	models.TaskStatusCancelled,
}

var allMatchStatuses = []models.MatchStatus{
	models.MatchStatusPending,
	models.MatchStatusAccepted,
	models.MatchStatusArrived,
	models.MatchStatusCompleted,
	models.MatchStatusCancelled,
}

func TestTaskTransitionTable(t *testing.T) {
	allowed := map[[2]models.TaskStatus]bool{
		{models.TaskStatusOpen, models.TaskStatusMatched}:          true,
		{models.TaskStatusOpen, models.TaskStatusCancelled}:        true,
		{models.TaskStatusMatched, models.TaskStatusInProgress}:    true,
		{models.TaskStatusMatched, models.TaskStatusCancelled}:     true,
		{models.TaskStatusInProgress, models.TaskStatusCompleted}:  true,
		{models.TaskStatusInProgress, models.TaskStatusCancelled}:  true,
	}

	// every pair not in the table must be rejected, including self-loops and
	// anything out of a terminal state
	for _, from := range allTaskStatuses {
		for _, to := range allTaskStatuses {
			err := ValidateTaskTransition(from, to)
			if allowed[[2]models.TaskStatus{from, to}] {
				assert.NoError(t, err, "%s -> %s", from, to)
			} else {
				assert.Error(t, err, "%s -> %s", from, to)
			}
		}
	}
}

func TestMatchTransitionTable(t *testing.T) {
	allowed := map[[2]models.MatchStatus]bool{
		{models.MatchStatusPending, models.MatchStatusAccepted}:   true,
		{models.MatchStatusPending, models.MatchStatusCancelled}:  true,
		{models.MatchStatusAccepted, models.MatchStatusArrived}:   true,
		{models.MatchStatusAccepted, models.MatchStatusCancelled}: true,
		{models.MatchStatusArrived, models.MatchStatusCompleted}:  true,
		{models.MatchStatusArrived, models.MatchStatusCancelled}:  true,
	}

	for _, from := range allMatchStatuses {
		for _, to := range allMatchStatuses {
			err := ValidateMatchTransition(from, to)
			if allowed[[2]models.MatchStatus{from, to}] {
				assert.NoError(t, err, "%s -> %s", from, to)
			} else {
				assert.Error(t, err, "%s -> %s", from, to)
			}
		}
	}
}

func TestTransitionErrorNamesBothStates(t *testing.T) {
	err := ValidateTaskTransition(models.TaskStatusCompleted, models.TaskStatusOpen)
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeStateConflict, appErr.Code)
	assert.Contains(t, appErr.Message, "completed")
	assert.Contains(t, appErr.Message, "open")
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, TaskTerminal(models.TaskStatusCompleted))
	assert.True(t, TaskTerminal(models.TaskStatusCancelled))
	assert.False(t, TaskTerminal(models.TaskStatusOpen))
	assert.False(t, TaskTerminal(models.TaskStatusMatched))
	assert.False(t, TaskTerminal(models.TaskStatusInProgress))

	assert.True(t, MatchTerminal(models.MatchStatusCompleted))
	assert.True(t, MatchTerminal(models.MatchStatusCancelled))
	assert.False(t, MatchTerminal(models.MatchStatusPending))
}

func TestHelperOnlySteps(t *testing.T) {
	assert.True(t, HelperOnlyMatchTransition(models.MatchStatusAccepted))
	assert.True(t, HelperOnlyMatchTransition(models.MatchStatusArrived))
	assert.True(t, HelperOnlyMatchTransition(models.MatchStatusCompleted))
	assert.False(t, HelperOnlyMatchTransition(models.MatchStatusCancelled))
}

func TestHelperInvariant(t *testing.T) {
	helper := "b5c7d1f0-0000-0000-0000-000000000001"

	task := models.Task{Status: models.TaskStatusOpen}
	assert.True(t, task.HelperInvariantHolds())

	task.Status = models.TaskStatusMatched
	assert.False(t, task.HelperInvariantHolds(), "matched without helper")

	task.HelperID = &helper
	assert.True(t, task.HelperInvariantHolds())

	task.Status = models.TaskStatusInProgress
	assert.True(t, task.HelperInvariantHolds())
	task.Status = models.TaskStatusCompleted
	assert.True(t, task.HelperInvariantHolds())

	task.Status = models.TaskStatusCancelled
	task.HelperID = nil
	assert.True(t, task.HelperInvariantHolds())
}
