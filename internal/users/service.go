package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/IDINaXI/Nutrio/internal/planner"
	"github.com/IDINaXI/Nutrio/internal/storage"
)

// Service reads and updates the nutrition profile.
type Service struct {
	storage storage.UsersStorage
}

func NewService(storage storage.UsersStorage) *Service {
	return &Service{storage: storage}
}

func (s *Service) Get(ctx context.Context, userID int64) (UserDTO, error) {
	u, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return UserDTO{}, err
	}
	return toDTO(u), nil
}

// Update applies a partial profile update.
func (s *Service) Update(ctx context.Context, userID int64, req UpdateProfileRequest) (UserDTO, error) {
	u, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return UserDTO{}, err
	}

	apply(u, req)

	if err := s.storage.UpdateUser(ctx, u); err != nil {
		return UserDTO{}, fmt.Errorf("failed to update user: %w", err)
	}
	return toDTO(u), nil
}

// Profile returns the generation profile for the user.
func (s *Service) Profile(ctx context.Context, userID int64) (planner.UserProfile, error) {
	u, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return planner.UserProfile{}, err
	}
	return ToPlannerProfile(u), nil
}

func apply(u *storage.User, req UpdateProfileRequest) {
	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Age != nil {
		u.Age = req.Age
	}
	if req.HeightCm != nil {
		u.HeightCm = req.HeightCm
	}
	if req.WeightKg != nil {
		u.WeightKg = req.WeightKg
	}
	if req.Gender != nil {
		u.Gender = req.Gender
	}
	if req.Goal != nil {
		u.Goal = req.Goal
	}
	if req.ActivityLevel != nil {
		u.ActivityLevel = *req.ActivityLevel
	}
	if req.Allergies != nil {
		u.Allergies = NormalizeAllergies(req.Allergies)
	}
}
