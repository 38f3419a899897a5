package trust

import (
	"favr_backend/internal/models"
)

// Tier requirements are sets of OR-groups: a group is satisfied when any of
// its members is present. tier_1 needs the first three groups, tier_2 needs
// all six.
var tierGroups = map[models.TrustTier][][]models.VerificationType{
	models.Tier1: {
		{models.VerificationEmail},
		{models.VerificationPhoneSMS, models.VerificationPhoneWhatsApp},
		{models.VerificationSocialGoogle, models.VerificationSocialApple},
	},
	models.Tier2: {
		{models.VerificationEmail},
		{models.VerificationPhoneSMS, models.VerificationPhoneWhatsApp},
		{models.VerificationSocialGoogle, models.VerificationSocialApple},
		{models.VerificationPhotosComplete},
		{models.VerificationEndorsement},
		{models.VerificationMFAEnabled},
	},
}

var tierRank = map[models.TrustTier]int{
	models.Tier0: 0,
	models.Tier1: 1,
	models.Tier2: 2,
}

// TierOf derives the trust tier from a set of verification events. Order and
// duplicates are irrelevant; an empty snapshot yields tier_0.
func TierOf(events []models.VerificationEvent) models.TrustTier {
	present := make(map[models.VerificationType]bool, len(events))
	for _, e := range events {
		present[e.Type] = true
	}

	if satisfies(present, tierGroups[models.Tier2]) {
		return models.Tier2
	}
	if satisfies(present, tierGroups[models.Tier1]) {
		return models.Tier1
	}
	return models.Tier0
}

// MissingForTier reports the minimal additional verification types needed to
// reach target. Each unsatisfied OR-group collapses to its first member, so
// phone_sms is reported only when neither phone channel is verified.
func MissingForTier(target models.TrustTier, events []models.VerificationEvent) []models.VerificationType {
	groups, ok := tierGroups[target]
	if !ok {
		return nil // tier_0 needs nothing
	}

	present := make(map[models.VerificationType]bool, len(events))
	for _, e := range events {
		present[e.Type] = true
	}

	var missing []models.VerificationType
	for _, group := range groups {
		if !groupSatisfied(present, group) {
			missing = append(missing, group[0])
		}
	}
	return missing
}

// AtLeast reports whether tier meets the required minimum.
func AtLeast(tier, required models.TrustTier) bool {
	return tierRank[tier] >= tierRank[required]
}

func satisfies(present map[models.VerificationType]bool, groups [][]models.VerificationType) bool {
	for _, group := range groups {
		if !groupSatisfied(present, group) {
			return false
		}
	}
	return true
}

func groupSatisfied(present map[models.VerificationType]bool, group []models.VerificationType) bool {
	for _, t := range group {
		if present[t] {
			return true
		}
	}
	return false
}
