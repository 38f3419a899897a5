package services

import (
	"context"

	"favr_backend/internal/models"
	"favr_backend/internal/repositories"
	"favr_backend/internal/services/dto"
)

type ProfileService struct {
	profiles     repositories.ProfileRepository
	users        repositories.UserRepository
	verification *VerificationService
}

func NewProfileService(
	profiles repositories.ProfileRepository,
	users repositories.UserRepository,
	verification *VerificationService,
) *ProfileService {
	return &ProfileService{profiles: profiles, users: users, verification: verification}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	profile, err := s.profiles.FindByUserID(userID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	resp := toProfileResponse(profile)
	return &resp, nil
}

// Update applies the partial update and syncs the photo verification state:
// completing the photo set is itself a verification step.
func (s *ProfileService) Update(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	profile, err := s.profiles.FindByUserID(userID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	if req.DisplayName != nil {
		profile.DisplayName = *req.DisplayName
	}
	if req.Neighbourhood != nil {
		profile.Neighbourhood = *req.Neighbourhood
	}
	if req.Lat != nil {
		profile.Lat = *req.Lat
	}
	if req.Lng != nil {
		profile.Lng = *req.Lng
	}
	if req.SearchRadiusKm != nil {
		profile.SearchRadiusKm = *req.SearchRadiusKm
	}
	if req.Skills != nil {
		profile.SetSkills(req.Skills)
	}
	if req.Availability != nil {
		profile.Availability = models.Availability(*req.Availability)
	}
	if req.PhotosCount != nil {
		profile.PhotosCount = *req.PhotosCount
	}

	if err := s.profiles.Update(profile); err != nil {
		return nil, err
	}

	if req.PhotosCount != nil {
		if err := s.verification.SyncPhotos(ctx, userID, profile.PhotosCount); err != nil {
			return nil, err
		}
		// Re-read: SyncPhotos may have bumped the cached tier.
		profile, err = s.profiles.FindByUserID(userID)
		if err != nil {
			return nil, err
		}
	}

	resp := toProfileResponse(profile)
	return &resp, nil
}

// Deactivate suspends the account and strips the profile of PII. The row
// stays so completed tasks and matches keep their references.
func (s *ProfileService) Deactivate(ctx context.Context, userID string) error {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return mapNotFound(err)
	}

	user.Status = models.UserStatusSuspended
	if err := s.users.Update(user); err != nil {
		return err
	}
	if err := s.users.DeleteUserRefreshTokens(userID); err != nil {
		return err
	}
	return s.profiles.Anonymize(userID)
}

func toProfileResponse(profile *models.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		UserID:           profile.UserID,
		DisplayName:      profile.DisplayName,
		Neighbourhood:    profile.Neighbourhood,
		Lat:              profile.Lat,
		Lng:              profile.Lng,
		SearchRadiusKm:   profile.SearchRadiusKm,
		Skills:           profile.GetSkills(),
		Availability:     profile.Availability,
		Credits:          profile.Credits,
		TasksCompleted:   profile.TasksCompleted,
		ReliabilityScore: profile.ReliabilityScore,
		TrustTier:        profile.TrustTier,
	}
}
