package lifecycle

import (
	"favr_backend/internal/models"
	"favr_backend/pkg/apperrors"
)

var matchTransitions = map[models.MatchStatus][]models.MatchStatus{
	models.MatchStatusPending:   {models.MatchStatusAccepted, models.MatchStatusCancelled},
	models.MatchStatusAccepted:  {models.MatchStatusArrived, models.MatchStatusCancelled},
	models.MatchStatusArrived:   {models.MatchStatusCompleted, models.MatchStatusCancelled},
	models.MatchStatusCompleted: {},
	models.MatchStatusCancelled: {},
}

func CanTransitionMatch(current, next models.MatchStatus) bool {
	for _, allowed := range matchTransitions[current] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ValidateMatchTransition(current, next models.MatchStatus) error {
	if !CanTransitionMatch(current, next) {
		return apperrors.ErrInvalidTransition("match", string(current), string(next))
	}
	return nil
}

func MatchTerminal(status models.MatchStatus) bool {
	return len(matchTransitions[status]) == 0
}

// HelperOnlyMatchTransition reports whether the step may only be taken by the
// helper (accepted->arrived->completed). Cancellation is open to both sides.
func HelperOnlyMatchTransition(next models.MatchStatus) bool {
	switch next {
	case models.MatchStatusAccepted, models.MatchStatusArrived, models.MatchStatusCompleted:
		return true
	}
	return false
}
