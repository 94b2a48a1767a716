package service

import (
	"context"
	"fmt"

	"devconnector/internal/model"
	"devconnector/internal/repository"
)

// ProfileService manages developer profiles. Every mutation returns the
// profile as stored afterwards, populated with its user.
type ProfileService struct {
	repo repository.ProfileRepository
}

func NewProfileService(repo repository.ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

func (s *ProfileService) List(ctx context.Context) ([]model.Profile, error) {
	profiles, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	if profiles == nil {
		profiles = []model.Profile{}
	}
	return profiles, nil
}

// GetByUserID returns ErrProfileNotFound when the user has no profile.
func (s *ProfileService) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// Create returns ErrProfileExists when the user already has a profile.
func (s *ProfileService) Create(ctx context.Context, userID string, req *model.ProfileRequest) (*model.Profile, error) {
	profile, err := req.ToProfile(userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, err
	}
	return s.repo.GetByUserID(ctx, userID)
}

// Update replaces the top-level fields. Experience and education are kept.
func (s *ProfileService) Update(ctx context.Context, userID string, req *model.ProfileRequest) (*model.Profile, error) {
	profile, err := req.ToProfile(userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return s.repo.GetByUserID(ctx, userID)
}

func (s *ProfileService) AddExperience(ctx context.Context, userID string, req *model.ExperienceRequest) (*model.Profile, error) {
	exp, err := req.ToExperience()
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddExperience(ctx, userID, exp); err != nil {
		return nil, err
	}
	return s.repo.GetByUserID(ctx, userID)
}

// UpdateExperience returns ErrExperienceNotFound when experienceID is not
// part of the caller's profile.
func (s *ProfileService) UpdateExperience(ctx context.Context, userID, experienceID string, req *model.ExperienceRequest) (*model.Profile, error) {
	exp, err := req.ToExperience()
	if err != nil {
		return nil, err
	}
	exp.ID = experienceID
	if err := s.repo.UpdateExperience(ctx, userID, exp); err != nil {
		return nil, err
	}
	return s.repo.GetByUserID(ctx, userID)
}

func (s *ProfileService) DeleteExperience(ctx context.Context, userID, experienceID string) (*model.Profile, error) {
	if err := s.repo.DeleteExperience(ctx, userID, experienceID); err != nil {
		return nil, err
	}
	return s.repo.GetByUserID(ctx, userID)
}

func (s *ProfileService) AddEducation(ctx context.Context, userID string, req *model.EducationRequest) (*model.Profile, error) {
	edu, err := req.ToEducation()
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddEducation(ctx, userID, edu); err != nil {
		return nil, err
	}
	return s.repo.GetByUserID(ctx, userID)
}

func (s *ProfileService) UpdateEducation(ctx context.Context, userID, educationID string, req *model.EducationRequest) (*model.Profile, error) {
	edu, err := req.ToEducation()
	if err != nil {
		return nil, err
	}
	edu.ID = educationID
	if err := s.repo.UpdateEducation(ctx, userID, edu); err != nil {
		return nil, err
	}
	return s.repo.GetByUserID(ctx, userID)
}

func (s *ProfileService) DeleteEducation(ctx context.Context, userID, educationID string) (*model.Profile, error) {
	if err := s.repo.DeleteEducation(ctx, userID, educationID); err != nil {
		return nil, err
	}
	return s.repo.GetByUserID(ctx, userID)
}
