package services

import (
	"context"
	"fmt"
	"sync"

	"favr_backend/internal/feed"
	"favr_backend/internal/logger"
	"favr_backend/internal/models"
	"favr_backend/internal/repositories"
	"favr_backend/internal/retry"
	"favr_backend/internal/services/dto"
	"favr_backend/internal/trust"
	"favr_backend/pkg/apperrors"
)

const claimGreeting = "Hi! I'm on my way to help with this."

// ClaimService drives the claim protocol. The ordering is fixed:
//
//  1. trust gate against a fresh verification snapshot
//  2. in-flight dedup so one helper cannot race themselves
//  3. the atomic claim transaction, wrapped in retry for transient
//     store failures only
//  4. post-commit extras (greeting message, feed events), all best-effort
//
// An unauthorized caller is rejected at step 1 and never contends for the
// task row. Exactly one concurrent claimer wins step 3; the rest get
// ErrTaskAlreadyMatched, which is a final outcome and is never retried.
type ClaimService struct {
	tasks     repositories.TaskRepository
	events    repositories.VerificationRepository
	messages  repositories.MessageRepository
	publisher feed.Publisher
	retryCfg  retry.Config

	inflight sync.Map // "taskID|helperID" -> struct{}
}

func NewClaimService(
	tasks repositories.TaskRepository,
	events repositories.VerificationRepository,
	messages repositories.MessageRepository,
	publisher feed.Publisher,
	retryCfg retry.Config,
) *ClaimService {
	return &ClaimService{
		tasks:     tasks,
		events:    events,
		messages:  messages,
		publisher: publisher,
		retryCfg:  retryCfg,
	}
}

func (s *ClaimService) Claim(ctx context.Context, taskID, helperID string) (*dto.MatchResponse, error) {
	events, err := s.events.ListByUser(helperID)
	if err != nil {
		return nil, err
	}
	if err := trust.Check(trust.ActionClaimTask, events); err != nil {
		return nil, err
	}

	// Dedup double-submits from the same helper before they reach the store.
	key := fmt.Sprintf("%s|%s", taskID, helperID)
	if _, loaded := s.inflight.LoadOrStore(key, struct{}{}); loaded {
		return nil, apperrors.ErrTaskUnavailable
	}
	defer s.inflight.Delete(key)

	// The claim transaction must not hang on a dead connection; bound it.
	ctx, cancel := boundCall(ctx)
	defer cancel()

	var match *models.Match
	err = retry.Do(ctx, s.retryCfg, func() error {
		m, err := s.tasks.Claim(taskID, helperID)
		if err != nil {
			return err
		}
		match = m
		return nil
	})
	if err != nil {
		return nil, mapNotFound(err)
	}

	// The match exists from here on; everything below must not fail the claim.
	if err := s.messages.Create(&models.Message{
		MatchID:  match.ID,
		SenderID: helperID,
		Content:  claimGreeting,
	}); err != nil {
		logger.CtxWarn(ctx, "greeting message failed after claim",
			"match_id", match.ID, "error", err)
	}

	s.publisher.Publish(feed.Event{
		Topic:   feed.TopicTasks,
		Kind:    feed.KindTaskUpdated,
		Payload: map[string]string{"task_id": taskID, "status": string(models.TaskStatusMatched)},
	})
	s.publisher.Publish(feed.Event{
		Topic:   feed.TopicMatch(match.ID),
		Kind:    feed.KindMatchCreated,
		Payload: map[string]string{"match_id": match.ID, "task_id": taskID},
	})

	return &dto.MatchResponse{
		ID:        match.ID,
		TaskID:    match.TaskID,
		HelperID:  match.HelperID,
		Status:    match.Status,
		CreatedAt: match.CreatedAt,
	}, nil
}
