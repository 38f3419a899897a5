package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"favr_backend/internal/email"
	"favr_backend/internal/feed"
	"favr_backend/internal/lifecycle"
	"favr_backend/internal/models"
	"favr_backend/internal/repositories"
	"favr_backend/pkg/apperrors"

	"github.com/google/uuid"
)

// In-memory repository fakes. The task fake replicates the claim protocol of
// the real store (lock, owner check, status check, match insert, task flip as
// one atomic step) with a mutex standing in for the row lock, so the
// concurrency behaviour of the services can be tested without a database.

type fakeTaskRepo struct {
	mu      sync.Mutex
	tasks   map[string]*models.Task
	matches map[string]*models.Match

	claimCalls        int
	transientFailures int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{
		tasks:   make(map[string]*models.Task),
		matches: make(map[string]*models.Match),
	}
}

func (f *fakeTaskRepo) put(task *models.Task) *models.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	f.tasks[task.ID] = task
	return task
}

func (f *fakeTaskRepo) Create(task *models.Task) error {
	f.put(task)
	return nil
}

func (f *fakeTaskRepo) FindByID(id string) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return nil, repositories.ErrTaskNotFound
	}
	return task, nil
}

func (f *fakeTaskRepo) ListOpen(filter repositories.TaskFilter) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Task
	for _, task := range f.tasks {
		if task.Status != models.TaskStatusOpen {
			continue
		}
		if filter.Category != "" && task.Category != filter.Category {
			continue
		}
		if filter.Urgency != "" && task.Urgency != filter.Urgency {
			continue
		}
		out = append(out, *task)
	}
	return out, nil
}

func (f *fakeTaskRepo) ListByOwner(ownerID string) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Task
	for _, task := range f.tasks {
		if task.OwnerID == ownerID {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) UpdateStatus(taskID string, from, to models.TaskStatus, clearHelper bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[taskID]
	if !ok {
		return repositories.ErrTaskNotFound
	}
	if task.Status != from {
		return apperrors.ErrInvalidTransition("task", string(task.Status), string(to))
	}
	task.Status = to
	if clearHelper {
		task.HelperID = nil
	}
	return nil
}

func (f *fakeTaskRepo) Claim(taskID, helperID string) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.claimCalls++
	if f.transientFailures > 0 {
		f.transientFailures--
		return nil, apperrors.ErrTransientStore(errors.New("connection reset by peer"))
	}

	task, ok := f.tasks[taskID]
	if !ok {
		return nil, repositories.ErrTaskNotFound
	}
	if task.OwnerID == helperID {
		return nil, apperrors.ErrOwnTaskClaim
	}
	switch task.Status {
	case models.TaskStatusOpen:
	case models.TaskStatusMatched, models.TaskStatusInProgress, models.TaskStatusCompleted:
		return nil, apperrors.ErrTaskAlreadyMatched
	default:
		return nil, apperrors.ErrTaskUnavailable
	}

	match := &models.Match{
		BaseModel: models.BaseModel{ID: uuid.NewString(), CreatedAt: time.Now()},
		TaskID:    taskID,
		HelperID:  helperID,
		Status:    models.MatchStatusPending,
	}
	f.matches[match.ID] = match
	task.Status = models.TaskStatusMatched
	task.HelperID = &match.HelperID
	return match, nil
}

func (f *fakeTaskRepo) CancelStaleOpen(olderThanHours int) (int64, error) {
	return 0, nil
}

func (f *fakeTaskRepo) matchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.matches)
}

type fakeMatchRepo struct {
	mu      sync.Mutex
	matches map[string]*models.Match
	tasks   *fakeTaskRepo
}

func newFakeMatchRepo(tasks *fakeTaskRepo) *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[string]*models.Match), tasks: tasks}
}

func (f *fakeMatchRepo) put(match *models.Match) *models.Match {
	f.mu.Lock()
	defer f.mu.Unlock()
	if match.ID == "" {
		match.ID = uuid.NewString()
	}
	f.matches[match.ID] = match
	return match
}

func (f *fakeMatchRepo) FindByID(id string) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	match, ok := f.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	if match.Task == nil {
		match.Task = f.tasks.tasks[match.TaskID]
	}
	return match, nil
}

func (f *fakeMatchRepo) FindActiveByTask(taskID string) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, match := range f.matches {
		if match.TaskID == taskID && match.Status != models.MatchStatusCancelled {
			return match, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (f *fakeMatchRepo) ListByHelper(helperID string) ([]models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Match
	for _, match := range f.matches {
		if match.HelperID == helperID {
			out = append(out, *match)
		}
	}
	return out, nil
}

func (f *fakeMatchRepo) Advance(matchID string, to models.MatchStatus) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	match, ok := f.matches[matchID]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	if err := lifecycle.ValidateMatchTransition(match.Status, to); err != nil {
		return nil, err
	}
	if to == models.MatchStatusArrived {
		task := f.tasks.tasks[match.TaskID]
		if err := lifecycle.ValidateTaskTransition(task.Status, models.TaskStatusInProgress); err != nil {
			return nil, err
		}
		task.Status = models.TaskStatusInProgress
	}
	match.Status = to
	return match, nil
}

func (f *fakeMatchRepo) Complete(matchID string) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	match, ok := f.matches[matchID]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	if err := lifecycle.ValidateMatchTransition(match.Status, models.MatchStatusCompleted); err != nil {
		return nil, err
	}
	task := f.tasks.tasks[match.TaskID]
	if err := lifecycle.ValidateTaskTransition(task.Status, models.TaskStatusCompleted); err != nil {
		return nil, err
	}
	match.Status = models.MatchStatusCompleted
	task.Status = models.TaskStatusCompleted
	match.Task = task
	return match, nil
}

func (f *fakeMatchRepo) Cancel(matchID string) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	match, ok := f.matches[matchID]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	if err := lifecycle.ValidateMatchTransition(match.Status, models.MatchStatusCancelled); err != nil {
		return nil, err
	}
	task := f.tasks.tasks[match.TaskID]
	if err := lifecycle.ValidateTaskTransition(task.Status, models.TaskStatusCancelled); err != nil {
		return nil, err
	}
	match.Status = models.MatchStatusCancelled
	task.Status = models.TaskStatusCancelled
	task.HelperID = nil
	return match, nil
}

func (f *fakeMatchRepo) HasCompletedBetween(userA, userB string) (bool, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, match := range f.matches {
		if match.Status != models.MatchStatusCompleted {
			continue
		}
		task := f.tasks.tasks[match.TaskID]
		if task == nil {
			continue
		}
		if (match.HelperID == userA && task.OwnerID == userB) ||
			(match.HelperID == userB && task.OwnerID == userA) {
			return true, match.ID, nil
		}
	}
	return false, "", nil
}

type fakeVerificationRepo struct {
	mu     sync.Mutex
	events map[string][]models.VerificationEvent
	pairs  map[string]bool
}

func newFakeVerificationRepo() *fakeVerificationRepo {
	return &fakeVerificationRepo{
		events: make(map[string][]models.VerificationEvent),
		pairs:  make(map[string]bool),
	}
}

func (f *fakeVerificationRepo) RecordEvent(event *models.VerificationEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events[event.UserID] {
		if e.Type == event.Type {
			return nil
		}
	}
	f.events[event.UserID] = append(f.events[event.UserID], *event)
	return nil
}

func (f *fakeVerificationRepo) RecordEventAndTier(
	event *models.VerificationEvent,
	tier func([]models.VerificationEvent) models.TrustTier,
) error {
	return f.RecordEvent(event)
}

func (f *fakeVerificationRepo) ListByUser(userID string) ([]models.VerificationEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.VerificationEvent(nil), f.events[userID]...), nil
}

func (f *fakeVerificationRepo) CreateEndorsement(endorsement *models.Endorsement) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := endorsement.EndorserID + "|" + endorsement.EndorseeID
	if f.pairs[key] {
		return false, nil
	}
	f.pairs[key] = true
	return true, nil
}

func (f *fakeVerificationRepo) grant(userID string, types ...models.VerificationType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range types {
		f.events[userID] = append(f.events[userID], models.VerificationEvent{
			ID:     uuid.NewString(),
			UserID: userID,
			Type:   t,
		})
	}
}

// tier2Types satisfies every requirement group for tier_2.
var tier2Types = []models.VerificationType{
	models.VerificationEmail,
	models.VerificationPhoneSMS,
	models.VerificationSocialGoogle,
	models.VerificationPhotosComplete,
	models.VerificationEndorsement,
	models.VerificationMFAEnabled,
}

// tier1Types satisfies tier_1 but not tier_2.
var tier1Types = []models.VerificationType{
	models.VerificationEmail,
	models.VerificationPhoneWhatsApp,
	models.VerificationSocialApple,
}

type fakeMessageRepo struct {
	mu         sync.Mutex
	messages   []models.Message
	failCreate error
}

func (f *fakeMessageRepo) Create(message *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return f.failCreate
	}
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	message.CreatedAt = time.Now()
	f.messages = append(f.messages, *message)
	return nil
}

func (f *fakeMessageRepo) ListByMatch(matchID string, limit, offset int) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Message
	for _, m := range f.messages {
		if m.MatchID == matchID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*models.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*models.Profile)}
}

func (f *fakeProfileRepo) FindByUserID(userID string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.profiles[userID]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	return profile, nil
}

func (f *fakeProfileRepo) EnsureForUser(profile *models.Profile) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.profiles[profile.UserID]; ok {
		return existing, nil
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	f.profiles[profile.UserID] = profile
	return profile, nil
}

func (f *fakeProfileRepo) Update(profile *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[profile.UserID] = profile
	return nil
}

func (f *fakeProfileRepo) UpdateTier(userID string, tier models.TrustTier) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if profile, ok := f.profiles[userID]; ok {
		profile.TrustTier = tier
	}
	return nil
}

func (f *fakeProfileRepo) AdjustCounters(userID string, creditDelta, completedDelta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.profiles[userID]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	if profile.Credits+creditDelta < 0 {
		return fmt.Errorf("credit balance cannot go negative for user %s", userID)
	}
	profile.Credits += creditDelta
	profile.TasksCompleted += completedDelta
	return nil
}

func (f *fakeProfileRepo) AdjustReliability(userID string, score float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.profiles[userID]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	profile.ReliabilityScore = score
	return nil
}

func (f *fakeProfileRepo) Anonymize(userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if profile, ok := f.profiles[userID]; ok {
		profile.DisplayName = "Former member"
		profile.Neighbourhood = ""
	}
	return nil
}

type fakeUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	refresh map[string]*models.RefreshToken
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*models.User),
		refresh: make(map[string]*models.RefreshToken),
	}
}

func (f *fakeUserRepo) FindByID(id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) FindByEmail(email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.byID {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) FindByVerificationToken(token string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.byID {
		if token != "" && user.VerificationToken == token {
			return user, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) Create(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Update(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserRepo) CreateRefreshToken(token *models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refresh[token.Token] = token
	return nil
}

func (f *fakeUserRepo) FindRefreshToken(token string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rt, ok := f.refresh[token]
	if !ok {
		return nil, errors.New("refresh token not found")
	}
	return rt, nil
}

func (f *fakeUserRepo) DeleteRefreshToken(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.refresh, token)
	return nil
}

func (f *fakeUserRepo) DeleteUserRefreshTokens(userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for token, rt := range f.refresh {
		if rt.UserID == userID {
			delete(f.refresh, token)
		}
	}
	return nil
}

func (f *fakeUserRepo) CleanExpiredRefreshTokens() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for token, rt := range f.refresh {
		if time.Now().After(rt.ExpiresAt) {
			delete(f.refresh, token)
		}
	}
	return nil
}

type fakeMailer struct {
	mu       sync.Mutex
	sent     []string // verification recipients
	failSend error
}

func (f *fakeMailer) Send(e *email.Email) error {
	return f.failSend
}

func (f *fakeMailer) SendVerification(to, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend != nil {
		return f.failSend
	}
	f.sent = append(f.sent, to)
	return nil
}

func (f *fakeMailer) Close() error { return nil }

// capturePublisher records feed events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []feed.Event
}

func (p *capturePublisher) Publish(event feed.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *capturePublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Kind)
	}
	return out
}
