package nutrition

import (
	"context"

	"github.com/IDINaXI/Nutrio/internal/planner"
)

// ProfileSource returns the generation profile by user id (users.Service).
type ProfileSource interface {
	Profile(ctx context.Context, userID int64) (planner.UserProfile, error)
}

// Service computes daily targets from a user profile.
type Service struct {
	profiles ProfileSource
}

func NewService(profiles ProfileSource) *Service {
	return &Service{profiles: profiles}
}

// Targets returns BMR/TDEE and macros, or ErrIncompleteProfile when the profile is incomplete.
func (s *Service) Targets(ctx context.Context, userID int64) (planner.Targets, error) {
	p, err := s.profiles.Profile(ctx, userID)
	if err != nil {
		return planner.Targets{}, err
	}
	return planner.CalculateTargets(p)
}
