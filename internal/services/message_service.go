package services

import (
	"context"
	"strings"
	"unicode"

	"favr_backend/internal/feed"
	"favr_backend/internal/models"
	"favr_backend/internal/repositories"
	"favr_backend/internal/services/dto"
	"favr_backend/internal/trust"
	"favr_backend/pkg/apperrors"
)

type MessageService struct {
	messages  repositories.MessageRepository
	matches   repositories.MatchRepository
	events    repositories.VerificationRepository
	publisher feed.Publisher
}

func NewMessageService(
	messages repositories.MessageRepository,
	matches repositories.MatchRepository,
	events repositories.VerificationRepository,
	publisher feed.Publisher,
) *MessageService {
	return &MessageService{
		messages:  messages,
		matches:   matches,
		events:    events,
		publisher: publisher,
	}
}

// Send posts a chat line into a match. Gated on tier, restricted to the two
// participants, and closed once the match is cancelled.
func (s *MessageService) Send(ctx context.Context, userID, matchID string, req dto.SendMessageRequest) (*dto.MessageResponse, error) {
	events, err := s.events.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if err := trust.Check(trust.ActionSendMessage, events); err != nil {
		return nil, err
	}

	match, err := s.matches.FindByID(matchID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if err := s.requireParticipant(userID, match); err != nil {
		return nil, err
	}
	if match.Status == models.MatchStatusCancelled {
		return nil, apperrors.ErrInvalidTransition("message", string(match.Status), "send")
	}

	content := SanitizeMessage(req.Content)
	if content == "" {
		return nil, apperrors.ValidationError(map[string]string{"content": "This field is required"})
	}

	message := &models.Message{
		MatchID:  matchID,
		SenderID: userID,
		Content:  content,
	}
	if err := s.messages.Create(message); err != nil {
		return nil, err
	}

	s.publisher.Publish(feed.Event{
		Topic:   feed.TopicMatch(matchID),
		Kind:    feed.KindMessageCreated,
		Payload: map[string]string{"message_id": message.ID, "match_id": matchID},
	})

	resp := toMessageResponse(message)
	return &resp, nil
}

func (s *MessageService) List(ctx context.Context, userID, matchID string, limit, offset int) ([]dto.MessageResponse, error) {
	match, err := s.matches.FindByID(matchID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if err := s.requireParticipant(userID, match); err != nil {
		return nil, err
	}

	messages, err := s.messages.ListByMatch(matchID, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, toMessageResponse(&messages[i]))
	}
	return out, nil
}

func (s *MessageService) requireParticipant(userID string, match *models.Match) error {
	if userID == match.HelperID {
		return nil
	}
	if match.Task != nil && userID == match.Task.OwnerID {
		return nil
	}
	return apperrors.ErrNotMatchParticipant
}

// SanitizeMessage strips control characters (newlines and tabs survive) and
// neutralizes angle brackets so stored content is inert in any client.
func SanitizeMessage(content string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, content)

	cleaned = strings.ReplaceAll(cleaned, "<", "&lt;")
	cleaned = strings.ReplaceAll(cleaned, ">", "&gt;")
	return strings.TrimSpace(cleaned)
}

func toMessageResponse(message *models.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:        message.ID,
		MatchID:   message.MatchID,
		SenderID:  message.SenderID,
		Content:   message.Content,
		CreatedAt: message.CreatedAt,
	}
}
