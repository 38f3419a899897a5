package lifecycle

import (
	"favr_backend/internal/models"
	"favr_backend/pkg/apperrors"
)

// taskTransitions is the single task state machine table. completed and
// cancelled have no outgoing edges; cancellation is reachable from every
// non-terminal state because owners may always withdraw their request.
var taskTransitions = map[models.TaskStatus][]models.TaskStatus{
	models.TaskStatusOpen:       {models.TaskStatusMatched, models.TaskStatusCancelled},
	models.TaskStatusMatched:    {models.TaskStatusInProgress, models.TaskStatusCancelled},
	models.TaskStatusInProgress: {models.TaskStatusCompleted, models.TaskStatusCancelled},
	models.TaskStatusCompleted:  {},
	models.TaskStatusCancelled:  {},
}

// CanTransitionTask is the pure table lookup.
func CanTransitionTask(current, next models.TaskStatus) bool {
	for _, allowed := range taskTransitions[current] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidateTaskTransition rejects disallowed transitions with a typed error
// naming both states. Every task mutation path calls this; none silently
// ignores a bad transition.
func ValidateTaskTransition(current, next models.TaskStatus) error {
	if !CanTransitionTask(current, next) {
		return apperrors.ErrInvalidTransition("task", string(current), string(next))
	}
	return nil
}

// TaskTerminal reports whether status has no outgoing transitions.
func TaskTerminal(status models.TaskStatus) bool {
	return len(taskTransitions[status]) == 0
}
