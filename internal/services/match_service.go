package services

import (
	"context"

	"favr_backend/internal/feed"
	"favr_backend/internal/lifecycle"
	"favr_backend/internal/logger"
	"favr_backend/internal/models"
	"favr_backend/internal/repositories"
	"favr_backend/internal/services/dto"
	"favr_backend/internal/trust"
	"favr_backend/pkg/apperrors"
)

type MatchService struct {
	matches   repositories.MatchRepository
	profiles  repositories.ProfileRepository
	events    repositories.VerificationRepository
	publisher feed.Publisher
}

func NewMatchService(
	matches repositories.MatchRepository,
	profiles repositories.ProfileRepository,
	events repositories.VerificationRepository,
	publisher feed.Publisher,
) *MatchService {
	return &MatchService{
		matches:   matches,
		profiles:  profiles,
		events:    events,
		publisher: publisher,
	}
}

func (s *MatchService) Get(ctx context.Context, userID, matchID string) (*dto.MatchResponse, error) {
	match, err := s.loadForParticipant(userID, matchID)
	if err != nil {
		return nil, err
	}
	resp := toMatchResponse(match)
	return &resp, nil
}

func (s *MatchService) ListMine(ctx context.Context, helperID string) ([]dto.MatchResponse, error) {
	matches, err := s.matches.ListByHelper(helperID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MatchResponse, 0, len(matches))
	for i := range matches {
		out = append(out, toMatchResponse(&matches[i]))
	}
	return out, nil
}

// Advance moves a match one step. Progress steps (accepted, arrived,
// completed) belong to the helper; either participant may cancel. Completing
// re-checks the trust gate, so a helper whose tier was revoked mid-task
// cannot finish.
func (s *MatchService) Advance(ctx context.Context, userID, matchID string, to models.MatchStatus) (*dto.MatchResponse, error) {
	match, err := s.loadForParticipant(userID, matchID)
	if err != nil {
		return nil, err
	}

	if lifecycle.HelperOnlyMatchTransition(to) && userID != match.HelperID {
		return nil, apperrors.ErrNotMatchHelper
	}

	var updated *models.Match
	switch to {
	case models.MatchStatusCompleted:
		events, err := s.events.ListByUser(userID)
		if err != nil {
			return nil, err
		}
		if err := trust.Check(trust.ActionCompleteMatch, events); err != nil {
			return nil, err
		}
		updated, err = s.complete(ctx, match)
		if err != nil {
			return nil, err
		}
	case models.MatchStatusCancelled:
		updated, err = s.matches.Cancel(matchID)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(feed.Event{
			Topic:   feed.TopicTasks,
			Kind:    feed.KindTaskUpdated,
			Payload: map[string]string{"task_id": match.TaskID, "status": string(models.TaskStatusCancelled)},
		})
	default:
		updated, err = s.matches.Advance(matchID, to)
		if err != nil {
			return nil, err
		}
		if to == models.MatchStatusArrived {
			s.publisher.Publish(feed.Event{
				Topic:   feed.TopicTasks,
				Kind:    feed.KindTaskUpdated,
				Payload: map[string]string{"task_id": match.TaskID, "status": string(models.TaskStatusInProgress)},
			})
		}
	}

	s.publisher.Publish(feed.Event{
		Topic:   feed.TopicMatch(matchID),
		Kind:    feed.KindMatchUpdated,
		Payload: map[string]string{"match_id": matchID, "status": string(updated.Status)},
	})

	resp := toMatchResponse(updated)
	return &resp, nil
}

// complete commits the coupled completion, then settles credits. The transfer
// runs after the commit: a counter conflict must not roll back a completed
// task, so settlement failures are logged and retried by ops, never surfaced
// as a failed completion.
func (s *MatchService) complete(ctx context.Context, match *models.Match) (*models.Match, error) {
	updated, err := s.matches.Complete(match.ID)
	if err != nil {
		return nil, err
	}

	task := updated.Task
	if task != nil {
		reward := task.CreditReward
		if err := s.profiles.AdjustCounters(updated.HelperID, reward, 1); err != nil {
			logger.CtxError(ctx, "helper credit settlement failed",
				"match_id", updated.ID, "helper_id", updated.HelperID, "error", err)
		}
		if err := s.profiles.AdjustCounters(task.OwnerID, -reward, 0); err != nil {
			logger.CtxError(ctx, "owner credit settlement failed",
				"match_id", updated.ID, "owner_id", task.OwnerID, "error", err)
		}

		s.publisher.Publish(feed.Event{
			Topic:   feed.TopicTasks,
			Kind:    feed.KindTaskUpdated,
			Payload: map[string]string{"task_id": task.ID, "status": string(models.TaskStatusCompleted)},
		})
	}

	return updated, nil
}

// loadForParticipant fetches the match and verifies the caller is its helper
// or the task owner.
func (s *MatchService) loadForParticipant(userID, matchID string) (*models.Match, error) {
	match, err := s.matches.FindByID(matchID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	if userID == match.HelperID {
		return match, nil
	}
	if match.Task != nil && userID == match.Task.OwnerID {
		return match, nil
	}
	return nil, apperrors.ErrNotMatchParticipant
}

func toMatchResponse(match *models.Match) dto.MatchResponse {
	resp := dto.MatchResponse{
		ID:        match.ID,
		TaskID:    match.TaskID,
		HelperID:  match.HelperID,
		Status:    match.Status,
		CreatedAt: match.CreatedAt,
	}
	if match.Task != nil {
		task := toTaskResponse(match.Task, nil)
		resp.Task = &task
	}
	return resp
}
