package trust

import (
	"favr_backend/internal/models"
	"favr_backend/pkg/apperrors"
)

// Action is a mutating (or browsing) operation gated by trust tier.
type Action string

const (
	ActionBrowseTasks   Action = "browse tasks"
	ActionPostTask      Action = "post a task"
	ActionSendMessage   Action = "send messages"
	ActionClaimTask     Action = "claim a task"
	ActionCompleteMatch Action = "complete a task"
)

// minTier is the single authoritative action -> minimum tier table. Every
// mutation site consults it through Authorize; nothing re-derives this.
var minTier = map[Action]models.TrustTier{
	ActionBrowseTasks:   models.Tier0,
	ActionPostTask:      models.Tier1,
	ActionSendMessage:   models.Tier1,
	ActionClaimTask:     models.Tier2,
	ActionCompleteMatch: models.Tier2,
}

// MinTier returns the minimum tier for an action. Unknown actions require
// tier_2 so that a missing table entry fails closed.
func MinTier(action Action) models.TrustTier {
	if t, ok := minTier[action]; ok {
		return t
	}
	return models.Tier2
}

// Authorize allows or denies an action for the given tier. The denial is an
// AppError so handlers can surface it directly.
func Authorize(action Action, tier models.TrustTier) error {
	if AtLeast(tier, MinTier(action)) {
		return nil
	}
	return apperrors.ErrTierInsufficient(string(action), nil)
}

// Check runs the full gate against a verification snapshot: derives the tier,
// authorizes the action, and on denial attaches the missing verification
// types for the required tier. This must run before any mutation is
// attempted, so an unauthorized caller never contends for a task lock.
func Check(action Action, events []models.VerificationEvent) error {
	tier := TierOf(events)
	if AtLeast(tier, MinTier(action)) {
		return nil
	}

	required := MinTier(action)
	missing := MissingForTier(required, events)
	names := make([]string, 0, len(missing))
	for _, m := range missing {
		names = append(names, string(m))
	}
	return apperrors.ErrTierInsufficient(string(action), names)
}
