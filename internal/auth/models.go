package auth

import "time"

// RegisterRequest registers by email and password; the profile may be filled in at once.
type RegisterRequest struct {
	Email         string   `json:"email" validate:"required,email,max=254"`
	Password      string   `json:"password" validate:"required,min=6,max=72"`
	Name          string   `json:"name" validate:"max=100"`
	Age           *int     `json:"age,omitempty" validate:"omitempty,gte=1,lte=120"`
	HeightCm      *float64 `json:"height_cm,omitempty" validate:"omitempty,gte=50,lte=272"`
	WeightKg      *float64 `json:"weight_kg,omitempty" validate:"omitempty,gte=20,lte=500"`
	Gender        *string  `json:"gender,omitempty" validate:"omitempty,oneof=MALE FEMALE"`
	Goal          *string  `json:"goal,omitempty" validate:"omitempty,oneof=LOSE_WEIGHT MAINTAIN_WEIGHT GAIN_WEIGHT"`
	ActivityLevel *string  `json:"activity_level,omitempty" validate:"omitempty,oneof=SEDENTARY LIGHTLY_ACTIVE MODERATELY_ACTIVE VERY_ACTIVE EXTREMELY_ACTIVE"`
	Allergies     []string `json:"allergies,omitempty" validate:"max=50,dive,max=100"`
}

// LoginRequest logs in by email and password.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned on successful registration or login.
type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"`
	User        UserSummary `json:"user"`
}

type UserSummary struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrorResponse is the error body format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
