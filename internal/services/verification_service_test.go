package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"favr_backend/internal/models"
	"favr_backend/internal/services/dto"
	"favr_backend/internal/verification"
	"favr_backend/pkg/apperrors"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type verificationFixture struct {
	svc      *VerificationService
	users    *fakeUserRepo
	tasks    *fakeTaskRepo
	matches  *fakeMatchRepo
	profiles *fakeProfileRepo
	events   *fakeVerificationRepo
	otp      *fakeOTPProvider
	identity *fakeIdentityProvider
}

type fakeOTPProvider struct {
	sent     []string
	validFor map[string]string // phone -> accepted code
}

func (f *fakeOTPProvider) SendCode(ctx context.Context, phone string, channel verification.PhoneChannel) error {
	f.sent = append(f.sent, phone)
	return nil
}

func (f *fakeOTPProvider) VerifyCode(ctx context.Context, phone, code string) (bool, error) {
	return f.validFor[phone] == code, nil
}

type fakeIdentityProvider struct {
	subjects map[string]string // idToken -> subject
}

func (f *fakeIdentityProvider) VerifyToken(ctx context.Context, provider, idToken string) (string, error) {
	subject, ok := f.subjects[idToken]
	if !ok {
		return "", errors.New("token rejected by provider")
	}
	return subject, nil
}

func newVerificationFixture() *verificationFixture {
	users := newFakeUserRepo()
	tasks := newFakeTaskRepo()
	matches := newFakeMatchRepo(tasks)
	profiles := newFakeProfileRepo()
	events := newFakeVerificationRepo()
	otp := &fakeOTPProvider{validFor: make(map[string]string)}
	identity := &fakeIdentityProvider{subjects: make(map[string]string)}
	return &verificationFixture{
		svc:      NewVerificationService(users, profiles, events, matches, otp, identity),
		users:    users,
		tasks:    tasks,
		matches:  matches,
		profiles: profiles,
		events:   events,
		otp:      otp,
		identity: identity,
	}
}

func (f *verificationFixture) completedMatchBetween(ownerID, helperID string) {
	task := f.tasks.put(&models.Task{
		OwnerID:  ownerID,
		Title:    "Assemble a wardrobe",
		Category: "diy",
		Status:   models.TaskStatusCompleted,
		HelperID: &helperID,
	})
	f.matches.put(&models.Match{
		TaskID:   task.ID,
		HelperID: helperID,
		Status:   models.MatchStatusCompleted,
		Task:     task,
	})
}

func TestEndorseSelfRejected(t *testing.T) {
	f := newVerificationFixture()

	err := f.svc.Endorse(context.Background(), "alice", "alice", dto.EndorseRequest{Score: 5})
	require.ErrorIs(t, err, apperrors.ErrSelfEndorsement)
}

func TestEndorseRequiresFullVerification(t *testing.T) {
	f := newVerificationFixture()
	f.profiles.profiles["alice"] = &models.Profile{UserID: "alice", TrustTier: models.Tier1}
	f.completedMatchBetween("alice", "bob")

	err := f.svc.Endorse(context.Background(), "alice", "bob", dto.EndorseRequest{Score: 5})
	require.ErrorIs(t, err, apperrors.ErrEndorsementNotEarned)
}

func TestEndorseRequiresSharedCompletedMatch(t *testing.T) {
	f := newVerificationFixture()
	f.profiles.profiles["alice"] = &models.Profile{UserID: "alice", TrustTier: models.Tier2}

	err := f.svc.Endorse(context.Background(), "alice", "bob", dto.EndorseRequest{Score: 5})
	require.ErrorIs(t, err, apperrors.ErrEndorsementNotEarned)
}

func TestEndorseRecordsEventAndReliability(t *testing.T) {
	f := newVerificationFixture()
	f.profiles.profiles["alice"] = &models.Profile{UserID: "alice", TrustTier: models.Tier2}
	f.profiles.profiles["bob"] = &models.Profile{UserID: "bob"}
	f.completedMatchBetween("alice", "bob")

	err := f.svc.Endorse(context.Background(), "alice", "bob", dto.EndorseRequest{Score: 4, Comment: "great help"})
	require.NoError(t, err)

	events, err := f.events.ListByUser("bob")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.VerificationEndorsement, events[0].Type)

	bob, err := f.profiles.FindByUserID("bob")
	require.NoError(t, err)
	assert.Equal(t, 4.0, bob.ReliabilityScore)
}

func TestEndorseOncePerPair(t *testing.T) {
	f := newVerificationFixture()
	f.profiles.profiles["alice"] = &models.Profile{UserID: "alice", TrustTier: models.Tier2}
	f.profiles.profiles["bob"] = &models.Profile{UserID: "bob"}
	f.completedMatchBetween("alice", "bob")

	require.NoError(t, f.svc.Endorse(context.Background(), "alice", "bob", dto.EndorseRequest{Score: 4}))
	require.NoError(t, f.svc.Endorse(context.Background(), "alice", "bob", dto.EndorseRequest{Score: 1}),
		"a repeat endorsement is a no-op, not an error")

	bob, err := f.profiles.FindByUserID("bob")
	require.NoError(t, err)
	assert.Equal(t, 4.0, bob.ReliabilityScore, "the repeat must not re-score")
}

func TestStatusReportsPathToNextTier(t *testing.T) {
	f := newVerificationFixture()
	f.events.grant("carol", models.VerificationEmail, models.VerificationPhoneWhatsApp)

	status, err := f.svc.Status(context.Background(), "carol")
	require.NoError(t, err)

	assert.Equal(t, models.Tier0, status.Tier)
	assert.ElementsMatch(t, []string{"email", "phone_whatsapp"}, status.Verified)
	assert.Equal(t, []string{"social_google"}, status.MissingForNextTier,
		"either social provider satisfies the group; the first is reported")
}

func TestStatusAtTopTierHasNothingMissing(t *testing.T) {
	f := newVerificationFixture()
	f.events.grant("carol", tier2Types...)

	status, err := f.svc.Status(context.Background(), "carol")
	require.NoError(t, err)

	assert.Equal(t, models.Tier2, status.Tier)
	assert.Empty(t, status.MissingForNextTier)
}

func TestConfirmEmailActivatesAndRecords(t *testing.T) {
	f := newVerificationFixture()
	user := &models.User{
		Email:             "dave@example.com",
		Status:            models.UserStatusPending,
		VerificationToken: "tok-123",
	}
	require.NoError(t, f.users.Create(user))

	require.NoError(t, f.svc.ConfirmEmail(context.Background(), "tok-123"))

	stored, err := f.users.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, stored.Status)
	assert.Empty(t, stored.VerificationToken)

	events, err := f.events.ListByUser(user.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.VerificationEmail, events[0].Type)
}

func TestConfirmEmailUnknownTokenRejected(t *testing.T) {
	f := newVerificationFixture()

	err := f.svc.ConfirmEmail(context.Background(), "bogus")
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestVerifyPhoneCodeRecordsChannelEvent(t *testing.T) {
	f := newVerificationFixture()
	f.otp.validFor["+31612345678"] = "424242"

	err := f.svc.VerifyPhoneCode(context.Background(), "erin", dto.PhoneVerifyRequest{
		Phone: "+31612345678", Channel: "whatsapp", Code: "424242",
	})
	require.NoError(t, err)

	events, err := f.events.ListByUser("erin")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.VerificationPhoneWhatsApp, events[0].Type)
}

func TestVerifyPhoneCodeWrongCodeRejected(t *testing.T) {
	f := newVerificationFixture()
	f.otp.validFor["+31612345678"] = "424242"

	err := f.svc.VerifyPhoneCode(context.Background(), "erin", dto.PhoneVerifyRequest{
		Phone: "+31612345678", Channel: "sms", Code: "000000",
	})
	require.ErrorIs(t, err, apperrors.ErrVerificationFailed)

	events, err := f.events.ListByUser("erin")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestMFAEnrollThenVerify(t *testing.T) {
	f := newVerificationFixture()
	user := &models.User{Email: "frank@example.com", Status: models.UserStatusActive}
	require.NoError(t, f.users.Create(user))

	enrolled, err := f.svc.EnrollMFA(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, enrolled.Secret)

	// Enrolling alone records nothing; the event lands on first verify.
	events, err := f.events.ListByUser(user.ID)
	require.NoError(t, err)
	assert.Empty(t, events)

	code, err := totp.GenerateCode(enrolled.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, f.svc.VerifyMFA(context.Background(), user.ID, code))

	events, err = f.events.ListByUser(user.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.VerificationMFAEnabled, events[0].Type)
}

func TestMFAVerifyWithoutEnrollRejected(t *testing.T) {
	f := newVerificationFixture()
	user := &models.User{Email: "grace@example.com", Status: models.UserStatusActive}
	require.NoError(t, f.users.Create(user))

	err := f.svc.VerifyMFA(context.Background(), user.ID, "123456")
	require.ErrorIs(t, err, apperrors.ErrVerificationFailed)
}
