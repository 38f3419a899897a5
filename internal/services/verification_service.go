package services

import (
	"context"
	"encoding/json"

	"favr_backend/internal/logger"
	"favr_backend/internal/models"
	"favr_backend/internal/repositories"
	"favr_backend/internal/services/dto"
	"favr_backend/internal/trust"
	"favr_backend/internal/verification"
	"favr_backend/pkg/apperrors"

	"gorm.io/datatypes"
)

// photosCompleteThreshold is how many profile photos count as a complete
// photo set for verification purposes.
const photosCompleteThreshold = 2

// VerificationService runs the verification flows and keeps the cached trust
// tier in step with the event log. Every successful flow ends in
// recordEvent, which persists the event and the recomputed tier atomically.
type VerificationService struct {
	users    repositories.UserRepository
	profiles repositories.ProfileRepository
	events   repositories.VerificationRepository
	matches  repositories.MatchRepository
	otp      verification.OTPProvider
	identity verification.IdentityProvider
}

func NewVerificationService(
	users repositories.UserRepository,
	profiles repositories.ProfileRepository,
	events repositories.VerificationRepository,
	matches repositories.MatchRepository,
	otp verification.OTPProvider,
	identity verification.IdentityProvider,
) *VerificationService {
	return &VerificationService{
		users:    users,
		profiles: profiles,
		events:   events,
		matches:  matches,
		otp:      otp,
		identity: identity,
	}
}

// recordEvent persists the event idempotently and recomputes the cached tier
// in the same transaction. Re-verifying an already verified type is a no-op.
func (s *VerificationService) recordEvent(userID string, vType models.VerificationType, metadata map[string]interface{}) error {
	event := &models.VerificationEvent{
		UserID: userID,
		Type:   vType,
	}
	if metadata != nil {
		data, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		event.Metadata = datatypes.JSON(data)
	}
	return s.events.RecordEventAndTier(event, trust.TierOf)
}

// ConfirmEmail completes the email flow started at signup.
func (s *VerificationService) ConfirmEmail(ctx context.Context, token string) error {
	user, err := s.users.FindByVerificationToken(token)
	if err != nil {
		return apperrors.ErrInvalidToken
	}

	user.Status = models.UserStatusActive
	user.VerificationToken = ""
	if err := s.users.Update(user); err != nil {
		return err
	}

	return s.recordEvent(user.ID, models.VerificationEmail, nil)
}

func (s *VerificationService) SendPhoneCode(ctx context.Context, req dto.PhoneSendRequest) error {
	ctx, cancel := boundCall(ctx)
	defer cancel()
	return s.otp.SendCode(ctx, req.Phone, verification.PhoneChannel(req.Channel))
}

// VerifyPhoneCode checks the one-time code and records the event for the
// channel it arrived on. Either channel satisfies the phone requirement.
func (s *VerificationService) VerifyPhoneCode(ctx context.Context, userID string, req dto.PhoneVerifyRequest) error {
	ctx, cancel := boundCall(ctx)
	defer cancel()

	ok, err := s.otp.VerifyCode(ctx, req.Phone, req.Code)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrVerificationFailed
	}

	vType := models.VerificationPhoneSMS
	if verification.PhoneChannel(req.Channel) == verification.ChannelWhatsApp {
		vType = models.VerificationPhoneWhatsApp
	}
	return s.recordEvent(userID, vType, map[string]interface{}{"phone": req.Phone})
}

// ConnectSocial validates the identity provider token and records the matching
// social event.
func (s *VerificationService) ConnectSocial(ctx context.Context, userID string, req dto.SocialConnectRequest) error {
	ctx, cancel := boundCall(ctx)
	defer cancel()

	subject, err := s.identity.VerifyToken(ctx, req.Provider, req.IDToken)
	if err != nil {
		logger.CtxWarn(ctx, "social token rejected", "provider", req.Provider, "error", err)
		return apperrors.ErrVerificationFailed
	}

	vType := models.VerificationSocialGoogle
	if req.Provider == "apple" {
		vType = models.VerificationSocialApple
	}
	return s.recordEvent(userID, vType, map[string]interface{}{"subject": subject})
}

// EnrollMFA generates a TOTP secret. The secret is stored provisionally on the
// user; mfa_enabled is only recorded after the first successful VerifyMFA.
func (s *VerificationService) EnrollMFA(ctx context.Context, userID string) (*dto.MFAEnrollResponse, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	key, err := verification.EnrollTOTP(user.Email)
	if err != nil {
		return nil, err
	}

	user.MFASecret = key.Secret()
	if err := s.users.Update(user); err != nil {
		return nil, err
	}

	return &dto.MFAEnrollResponse{Secret: key.Secret(), URL: key.URL()}, nil
}

func (s *VerificationService) VerifyMFA(ctx context.Context, userID string, code string) error {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return mapNotFound(err)
	}
	if user.MFASecret == "" || !verification.VerifyTOTP(code, user.MFASecret) {
		return apperrors.ErrVerificationFailed
	}

	return s.recordEvent(userID, models.VerificationMFAEnabled, nil)
}

// SyncPhotos records photos_complete once the profile carries a full photo
// set. Called by the profile service after photo updates.
func (s *VerificationService) SyncPhotos(ctx context.Context, userID string, photosCount int) error {
	if photosCount < photosCompleteThreshold {
		return nil
	}
	return s.recordEvent(userID, models.VerificationPhotosComplete, map[string]interface{}{"photos": photosCount})
}

// Endorse lets a fully verified member vouch for someone they actually worked
// with. One endorsement per pair; repeats are no-ops.
func (s *VerificationService) Endorse(ctx context.Context, endorserID, endorseeID string, req dto.EndorseRequest) error {
	if endorserID == endorseeID {
		return apperrors.ErrSelfEndorsement
	}

	endorser, err := s.profiles.FindByUserID(endorserID)
	if err != nil {
		return mapNotFound(err)
	}
	if !trust.AtLeast(endorser.TrustTier, models.Tier2) {
		return apperrors.ErrEndorsementNotEarned
	}

	shared, matchID, err := s.matches.HasCompletedBetween(endorserID, endorseeID)
	if err != nil {
		return err
	}
	if !shared {
		return apperrors.ErrEndorsementNotEarned
	}

	created, err := s.events.CreateEndorsement(&models.Endorsement{
		EndorserID: endorserID,
		EndorseeID: endorseeID,
		MatchID:    matchID,
		Score:      req.Score,
		Comment:    req.Comment,
	})
	if err != nil {
		return err
	}
	if !created {
		return nil
	}

	if err := s.profiles.AdjustReliability(endorseeID, req.Score); err != nil {
		logger.CtxWarn(ctx, "reliability update failed after endorsement",
			"endorsee_id", endorseeID, "error", err)
	}

	return s.recordEvent(endorseeID, models.VerificationEndorsement,
		map[string]interface{}{"endorser_id": endorserID})
}

// Status reports the current tier, the verified types, and the shortest path
// to the next tier.
func (s *VerificationService) Status(ctx context.Context, userID string) (*dto.VerificationStatusResponse, error) {
	events, err := s.events.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	tier := trust.TierOf(events)

	verified := make([]string, 0, len(events))
	for _, e := range events {
		verified = append(verified, string(e.Type))
	}

	var next models.TrustTier
	switch tier {
	case models.Tier0:
		next = models.Tier1
	case models.Tier1:
		next = models.Tier2
	}

	missing := []string{}
	if next != "" {
		for _, m := range trust.MissingForTier(next, events) {
			missing = append(missing, string(m))
		}
	}

	return &dto.VerificationStatusResponse{
		Tier:               tier,
		Verified:           verified,
		MissingForNextTier: missing,
	}, nil
}
