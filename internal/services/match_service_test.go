package services

import (
	"context"
	"net/http"
	"testing"

	"favr_backend/internal/models"
	"favr_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type matchFixture struct {
	svc      *MatchService
	tasks    *fakeTaskRepo
	matches  *fakeMatchRepo
	profiles *fakeProfileRepo
	events   *fakeVerificationRepo
}

func newMatchFixture() *matchFixture {
	tasks := newFakeTaskRepo()
	matches := newFakeMatchRepo(tasks)
	profiles := newFakeProfileRepo()
	events := newFakeVerificationRepo()
	return &matchFixture{
		svc:      NewMatchService(matches, profiles, events, &capturePublisher{}),
		tasks:    tasks,
		matches:  matches,
		profiles: profiles,
		events:   events,
	}
}

func (f *matchFixture) seed(taskStatus models.TaskStatus, matchStatus models.MatchStatus, reward int) *models.Match {
	helperID := "helper"
	task := f.tasks.put(&models.Task{
		OwnerID:      "owner",
		Title:        "Walk the dog",
		Category:     "pets",
		Status:       taskStatus,
		HelperID:     &helperID,
		CreditReward: reward,
	})
	match := f.matches.put(&models.Match{
		TaskID:   task.ID,
		HelperID: helperID,
		Status:   matchStatus,
		Task:     task,
	})

	f.profiles.profiles["owner"] = &models.Profile{UserID: "owner", Credits: 10}
	f.profiles.profiles["helper"] = &models.Profile{UserID: "helper", Credits: 0}
	f.events.grant("helper", tier2Types...)
	return match
}

func TestAdvanceProgressStepsAreHelperOnly(t *testing.T) {
	f := newMatchFixture()
	match := f.seed(models.TaskStatusMatched, models.MatchStatusPending, 1)

	_, err := f.svc.Advance(context.Background(), "owner", match.ID, models.MatchStatusAccepted)
	require.ErrorIs(t, err, apperrors.ErrNotMatchHelper)

	resp, err := f.svc.Advance(context.Background(), "helper", match.ID, models.MatchStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusAccepted, resp.Status)
}

func TestAdvanceArrivedMovesTaskInProgress(t *testing.T) {
	f := newMatchFixture()
	match := f.seed(models.TaskStatusMatched, models.MatchStatusAccepted, 1)

	resp, err := f.svc.Advance(context.Background(), "helper", match.ID, models.MatchStatusArrived)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusArrived, resp.Status)

	task, err := f.tasks.FindByID(match.TaskID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, task.Status)
}

func TestAdvanceRejectsStepSkipping(t *testing.T) {
	f := newMatchFixture()
	match := f.seed(models.TaskStatusMatched, models.MatchStatusPending, 1)

	_, err := f.svc.Advance(context.Background(), "helper", match.ID, models.MatchStatusArrived)
	require.Error(t, err)
	assert.True(t, apperrors.IsStateConflict(err))
}

func TestCompleteSettlesCredits(t *testing.T) {
	f := newMatchFixture()
	match := f.seed(models.TaskStatusInProgress, models.MatchStatusArrived, 3)

	resp, err := f.svc.Advance(context.Background(), "helper", match.ID, models.MatchStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCompleted, resp.Status)

	task, err := f.tasks.FindByID(match.TaskID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, task.Status)

	helper, err := f.profiles.FindByUserID("helper")
	require.NoError(t, err)
	assert.Equal(t, 3, helper.Credits)
	assert.Equal(t, 1, helper.TasksCompleted)

	owner, err := f.profiles.FindByUserID("owner")
	require.NoError(t, err)
	assert.Equal(t, 7, owner.Credits)
	assert.Equal(t, 0, owner.TasksCompleted)
}

func TestCompleteGatedOnTier(t *testing.T) {
	f := newMatchFixture()
	match := f.seed(models.TaskStatusInProgress, models.MatchStatusArrived, 1)
	f.events.events["helper"] = nil // tier revoked mid-task

	_, err := f.svc.Advance(context.Background(), "helper", match.ID, models.MatchStatusCompleted)
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeTierInsufficient, appErr.Code)

	task, err := f.tasks.FindByID(match.TaskID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, task.Status, "gate denial must not move the task")
}

func TestCancelAllowedForEitherParticipant(t *testing.T) {
	f := newMatchFixture()
	match := f.seed(models.TaskStatusMatched, models.MatchStatusAccepted, 1)

	resp, err := f.svc.Advance(context.Background(), "owner", match.ID, models.MatchStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCancelled, resp.Status)

	task, err := f.tasks.FindByID(match.TaskID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCancelled, task.Status)
	assert.Nil(t, task.HelperID, "cancelled tasks carry no helper")
	assert.True(t, task.HelperInvariantHolds())
}

func TestMatchVisibleToParticipantsOnly(t *testing.T) {
	f := newMatchFixture()
	match := f.seed(models.TaskStatusMatched, models.MatchStatusPending, 1)

	_, err := f.svc.Get(context.Background(), "stranger", match.ID)
	require.ErrorIs(t, err, apperrors.ErrNotMatchParticipant)

	resp, err := f.svc.Get(context.Background(), "owner", match.ID)
	require.NoError(t, err)
	require.NotNil(t, resp.Task)
	assert.Equal(t, "owner", resp.Task.OwnerID)
}

func TestGetMissingMatchReturnsNotFound(t *testing.T) {
	f := newMatchFixture()

	_, err := f.svc.Get(context.Background(), "helper", "no-such-match")
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.HTTPCode)
}
