package weights

import "time"

type WeightDTO struct {
	ID        int64     `json:"id"`
	WeightKg  float64   `json:"weight_kg"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateWeightRequest treats an empty date as today.
type CreateWeightRequest struct {
	WeightKg float64 `json:"weight_kg" validate:"required,gte=20,lte=500"`
	Date     string  `json:"date" validate:"date"`
}

type ListWeightsResponse struct {
	Items []WeightDTO `json:"items"`
}
