package services

import (
	"context"
	"errors"
	"math"
	"sort"

	"favr_backend/internal/feed"
	"favr_backend/internal/lifecycle"
	"favr_backend/internal/models"
	"favr_backend/internal/repositories"
	"favr_backend/internal/services/dto"
	"favr_backend/internal/trust"
	"favr_backend/pkg/apperrors"
)

const defaultTaskPageSize = 20

type TaskService struct {
	tasks     repositories.TaskRepository
	matches   repositories.MatchRepository
	profiles  repositories.ProfileRepository
	events    repositories.VerificationRepository
	publisher feed.Publisher
}

func NewTaskService(
	tasks repositories.TaskRepository,
	matches repositories.MatchRepository,
	profiles repositories.ProfileRepository,
	events repositories.VerificationRepository,
	publisher feed.Publisher,
) *TaskService {
	return &TaskService{
		tasks:     tasks,
		matches:   matches,
		profiles:  profiles,
		events:    events,
		publisher: publisher,
	}
}

// Create posts a new task. Posting is gated: the gate runs against a fresh
// verification snapshot before anything is written.
func (s *TaskService) Create(ctx context.Context, ownerID string, req dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	events, err := s.events.ListByUser(ownerID)
	if err != nil {
		return nil, err
	}
	if err := trust.Check(trust.ActionPostTask, events); err != nil {
		return nil, err
	}

	task := &models.Task{
		OwnerID:      ownerID,
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Urgency:      models.TaskUrgency(req.Urgency),
		Status:       models.TaskStatusOpen,
		WindowStart:  req.WindowStart,
		WindowEnd:    req.WindowEnd,
		EffortLevel:  req.EffortLevel,
		PeopleNeeded: req.PeopleNeeded,
		CreditReward: req.CreditReward,
		Lat:          req.Lat,
		Lng:          req.Lng,
	}
	if task.Urgency == "" {
		task.Urgency = models.TaskUrgencyNormal
	}
	if task.PeopleNeeded == 0 {
		task.PeopleNeeded = 1
	}
	if task.CreditReward == 0 {
		task.CreditReward = 1
	}

	if err := s.tasks.Create(task); err != nil {
		return nil, err
	}

	s.publisher.Publish(feed.Event{
		Topic:   feed.TopicTasks,
		Kind:    feed.KindTaskCreated,
		Payload: map[string]string{"task_id": task.ID},
	})

	resp := toTaskResponse(task, nil)
	return &resp, nil
}

func (s *TaskService) Get(ctx context.Context, taskID string) (*dto.TaskResponse, error) {
	task, err := s.tasks.FindByID(taskID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	resp := toTaskResponse(task, nil)
	return &resp, nil
}

// ListOpen browses the open board. Browsing has a tier_0 floor, so no
// verification snapshot is needed.
func (s *TaskService) ListOpen(ctx context.Context, req dto.ListTasksRequest) ([]dto.TaskResponse, error) {
	limit := req.Limit
	if limit == 0 {
		limit = defaultTaskPageSize
	}
	offset := 0
	if req.Page > 1 {
		offset = (req.Page - 1) * limit
	}

	tasks, err := s.tasks.ListOpen(repositories.TaskFilter{
		Category: req.Category,
		Urgency:  models.TaskUrgency(req.Urgency),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, err
	}

	out := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, toTaskResponse(&tasks[i], nil))
	}
	return out, nil
}

// ListNearby filters the open board down to what the caller can plausibly
// help with: within their search radius and, when they declared skills,
// overlapping a skill category. Results are ordered nearest first.
func (s *TaskService) ListNearby(ctx context.Context, userID string, req dto.ListTasksRequest) ([]dto.TaskResponse, error) {
	profile, err := s.profiles.FindByUserID(userID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	tasks, err := s.tasks.ListOpen(repositories.TaskFilter{
		Category: req.Category,
		Urgency:  models.TaskUrgency(req.Urgency),
	})
	if err != nil {
		return nil, err
	}

	skills := make(map[string]bool)
	for _, skill := range profile.GetSkills() {
		skills[skill] = true
	}

	out := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		task := &tasks[i]
		if task.OwnerID == userID {
			continue
		}
		if len(skills) > 0 && !skills[task.Category] {
			continue
		}

		dist := haversineKm(profile.Lat, profile.Lng, task.Lat, task.Lng)
		if profile.SearchRadiusKm > 0 && dist > profile.SearchRadiusKm {
			continue
		}
		out = append(out, toTaskResponse(task, &dist))
	}

	sort.Slice(out, func(i, j int) bool {
		return *out[i].DistanceKm < *out[j].DistanceKm
	})
	return out, nil
}

func (s *TaskService) ListMine(ctx context.Context, ownerID string) ([]dto.TaskResponse, error) {
	tasks, err := s.tasks.ListByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, toTaskResponse(&tasks[i], nil))
	}
	return out, nil
}

// Cancel is owner-only. An unclaimed task is cancelled directly; a claimed one
// goes through the match so both state machines move together.
func (s *TaskService) Cancel(ctx context.Context, userID, taskID string) error {
	task, err := s.tasks.FindByID(taskID)
	if err != nil {
		return mapNotFound(err)
	}
	if task.OwnerID != userID {
		return apperrors.ErrNotTaskOwner
	}
	if err := lifecycle.ValidateTaskTransition(task.Status, models.TaskStatusCancelled); err != nil {
		return err
	}

	if task.Status == models.TaskStatusOpen {
		if err := s.tasks.UpdateStatus(taskID, models.TaskStatusOpen, models.TaskStatusCancelled, true); err != nil {
			return err
		}
	} else {
		match, err := s.matches.FindActiveByTask(taskID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return s.tasks.UpdateStatus(taskID, task.Status, models.TaskStatusCancelled, true)
			}
			return err
		}
		if _, err := s.matches.Cancel(match.ID); err != nil {
			return err
		}
	}

	s.publisher.Publish(feed.Event{
		Topic:   feed.TopicTasks,
		Kind:    feed.KindTaskUpdated,
		Payload: map[string]string{"task_id": taskID, "status": string(models.TaskStatusCancelled)},
	})
	return nil
}

const earthRadiusKm = 6371.0

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toTaskResponse(task *models.Task, distanceKm *float64) dto.TaskResponse {
	return dto.TaskResponse{
		ID:           task.ID,
		OwnerID:      task.OwnerID,
		Title:        task.Title,
		Description:  task.Description,
		Category:     task.Category,
		Urgency:      task.Urgency,
		Status:       task.Status,
		HelperID:     task.HelperID,
		WindowStart:  task.WindowStart,
		WindowEnd:    task.WindowEnd,
		EffortLevel:  task.EffortLevel,
		PeopleNeeded: task.PeopleNeeded,
		CreditReward: task.CreditReward,
		Lat:          task.Lat,
		Lng:          task.Lng,
		DistanceKm:   distanceKm,
		CreatedAt:    task.CreatedAt,
	}
}
