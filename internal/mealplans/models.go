package mealplans

import (
	"encoding/json"
	"time"

	"github.com/IDINaXI/Nutrio/internal/planner"
)

// MealPlanDTO is a stored week plan.
type MealPlanDTO struct {
	ID        int64             `json:"id"`
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date"`
	Source    planner.Source    `json:"source"`
	IsCurrent bool              `json:"is_current"`
	Week      []planner.DayPlan `json:"week"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// DayPlanDTO is an entry in the day plan history.
type DayPlanDTO struct {
	ID        int64           `json:"id"`
	Day       string          `json:"day"`
	Date      string          `json:"date"`
	Source    planner.Source  `json:"source"`
	Plan      planner.DayPlan `json:"plan"`
	CreatedAt time.Time       `json:"created_at"`
}

type ListMealPlansResponse struct {
	Items  []MealPlanDTO `json:"items"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

type ListDayPlansResponse struct {
	Items  []DayPlanDTO `json:"items"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// GenerateDayRequest treats an empty day as today's weekday.
type GenerateDayRequest struct {
	Day string `json:"day"`
}

// RegenerateDayRequest has an optional week; without it the current plan is used.
type RegenerateDayRequest struct {
	Day  string          `json:"day"`
	Week json.RawMessage `json:"week,omitempty"`
}

type RegenerateDayResponse struct {
	Day    planner.DayPlan `json:"day"`
	Source planner.Source  `json:"source"`
	// Plan is set when the day was replaced in the stored current plan.
	Plan *MealPlanDTO `json:"plan,omitempty"`
}
