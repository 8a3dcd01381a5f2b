package measurements

import "time"

type MeasurementDTO struct {
	ID        int64     `json:"id"`
	Date      string    `json:"date"`
	WaistCm   *float64  `json:"waist_cm"`
	ChestCm   *float64  `json:"chest_cm"`
	HipsCm    *float64  `json:"hips_cm"`
	ArmCm     *float64  `json:"arm_cm"`
	LegCm     *float64  `json:"leg_cm"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateMeasurementRequest struct {
	Date    string   `json:"date" validate:"date"`
	WaistCm *float64 `json:"waist_cm,omitempty" validate:"omitempty,gte=0,lte=400"`
	ChestCm *float64 `json:"chest_cm,omitempty" validate:"omitempty,gte=0,lte=400"`
	HipsCm  *float64 `json:"hips_cm,omitempty" validate:"omitempty,gte=0,lte=400"`
	ArmCm   *float64 `json:"arm_cm,omitempty" validate:"omitempty,gte=0,lte=200"`
	LegCm   *float64 `json:"leg_cm,omitempty" validate:"omitempty,gte=0,lte=200"`
}

// hasValue: хотя бы один замер больше нуля
func (r CreateMeasurementRequest) hasValue() bool {
	for _, v := range []*float64{r.WaistCm, r.ChestCm, r.HipsCm, r.ArmCm, r.LegCm} {
		if v != nil && *v > 0 {
			return true
		}
	}
	return false
}

type ListMeasurementsResponse struct {
	Items []MeasurementDTO `json:"items"`
}
