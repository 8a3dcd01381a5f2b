package users

import "time"

// UserDTO is the user profile in API responses.
type UserDTO struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Age           *int      `json:"age"`
	HeightCm      *float64  `json:"height_cm"`
	WeightKg      *float64  `json:"weight_kg"`
	Gender        *string   `json:"gender"`
	Goal          *string   `json:"goal"`
	ActivityLevel string    `json:"activity_level"`
	Allergies     []string  `json:"allergies"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UpdateProfileRequest is a partial update; absent fields stay unchanged.
// Allergies: null or absent keeps the list, [] clears it.
type UpdateProfileRequest struct {
	Name          *string  `json:"name,omitempty" validate:"omitempty,max=100"`
	Age           *int     `json:"age,omitempty" validate:"omitempty,gte=1,lte=120"`
	HeightCm      *float64 `json:"height_cm,omitempty" validate:"omitempty,gte=50,lte=272"`
	WeightKg      *float64 `json:"weight_kg,omitempty" validate:"omitempty,gte=20,lte=500"`
	Gender        *string  `json:"gender,omitempty" validate:"omitempty,oneof=MALE FEMALE"`
	Goal          *string  `json:"goal,omitempty" validate:"omitempty,oneof=LOSE_WEIGHT MAINTAIN_WEIGHT GAIN_WEIGHT"`
	ActivityLevel *string  `json:"activity_level,omitempty" validate:"omitempty,oneof=SEDENTARY LIGHTLY_ACTIVE MODERATELY_ACTIVE VERY_ACTIVE EXTREMELY_ACTIVE"`
	Allergies     []string `json:"allergies,omitempty" validate:"max=50,dive,max=100"`
}
