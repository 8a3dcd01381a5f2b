package measurements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IDINaXI/Nutrio/internal/storage"
	"github.com/IDINaXI/Nutrio/internal/validation"
)

var (
	ErrEmptyMeasurement = errors.New("at least one measurement must be greater than zero")
	ErrInvalidRange     = errors.New("from must not be after to")
)

type Service struct {
	storage storage.MeasurementsStorage
	now     func() time.Time
}

func NewService(storage storage.MeasurementsStorage) *Service {
	return &Service{storage: storage, now: time.Now}
}

func (s *Service) Create(ctx context.Context, userID int64, req CreateMeasurementRequest) (MeasurementDTO, error) {
	if !req.hasValue() {
		return MeasurementDTO{}, ErrEmptyMeasurement
	}

	date := req.Date
	if date == "" {
		date = s.now().Format(validation.DateLayout)
	}

	m := &storage.Measurement{
		UserID:  userID,
		Date:    date,
		WaistCm: req.WaistCm,
		ChestCm: req.ChestCm,
		HipsCm:  req.HipsCm,
		ArmCm:   req.ArmCm,
		LegCm:   req.LegCm,
	}
	if err := s.storage.CreateMeasurement(ctx, m); err != nil {
		return MeasurementDTO{}, fmt.Errorf("failed to create measurement: %w", err)
	}
	return toDTO(*m), nil
}

func (s *Service) List(ctx context.Context, userID int64, from, to string) ([]MeasurementDTO, error) {
	if from != "" && to != "" && from > to {
		return nil, ErrInvalidRange
	}
	items, err := s.storage.ListMeasurements(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]MeasurementDTO, 0, len(items))
	for _, m := range items {
		out = append(out, toDTO(m))
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	return s.storage.DeleteMeasurement(ctx, userID, id)
}

func toDTO(m storage.Measurement) MeasurementDTO {
	return MeasurementDTO{
		ID:        m.ID,
		Date:      m.Date,
		WaistCm:   m.WaistCm,
		ChestCm:   m.ChestCm,
		HipsCm:    m.HipsCm,
		ArmCm:     m.ArmCm,
		LegCm:     m.LegCm,
		CreatedAt: m.CreatedAt,
	}
}
