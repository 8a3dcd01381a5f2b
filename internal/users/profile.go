package users

import (
	"strings"

	"github.com/IDINaXI/Nutrio/internal/planner"
	"github.com/IDINaXI/Nutrio/internal/storage"
)

// ToPlannerProfile projects a stored user onto a generation profile.
// Missing fields stay zero and are caught by UserProfile.Validate.
func ToPlannerProfile(u *storage.User) planner.UserProfile {
	p := planner.UserProfile{
		ActivityLevel: planner.ActivityLevel(u.ActivityLevel),
		Allergies:     append([]string(nil), u.Allergies...),
	}
	if u.Age != nil {
		p.Age = *u.Age
	}
	if u.HeightCm != nil {
		p.HeightCm = *u.HeightCm
	}
	if u.WeightKg != nil {
		p.WeightKg = *u.WeightKg
	}
	if u.Gender != nil {
		p.Gender = planner.Gender(*u.Gender)
	}
	if u.Goal != nil {
		p.Goal = planner.Goal(*u.Goal)
	}
	return p
}

// NormalizeAllergies trims whitespace and drops empty and case-insensitive duplicate entries.
func NormalizeAllergies(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, a := range in {
		a = strings.TrimSpace(a)
		key := strings.ToLower(a)
		if a == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}

func toDTO(u *storage.User) UserDTO {
	allergies := u.Allergies
	if allergies == nil {
		allergies = []string{}
	}
	return UserDTO{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Age:           u.Age,
		HeightCm:      u.HeightCm,
		WeightKg:      u.WeightKg,
		Gender:        u.Gender,
		Goal:          u.Goal,
		ActivityLevel: u.ActivityLevel,
		Allergies:     allergies,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
