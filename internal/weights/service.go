package weights

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IDINaXI/Nutrio/internal/logger"
	"github.com/IDINaXI/Nutrio/internal/storage"
	"github.com/IDINaXI/Nutrio/internal/validation"
)

var ErrInvalidRange = errors.New("from must not be after to")

type Repository interface {
	storage.WeightsStorage
	storage.UsersStorage
}

// Service keeps the weight log. The latest entry by date becomes the profile's current weight.
type Service struct {
	storage Repository
	log     *logger.Logger
	now     func() time.Time
}

func NewService(storage Repository, log *logger.Logger) *Service {
	return &Service{storage: storage, log: logger.OrNop(log).Named("weights"), now: time.Now}
}

func (s *Service) Create(ctx context.Context, userID int64, req CreateWeightRequest) (WeightDTO, error) {
	date := req.Date
	if date == "" {
		date = s.now().Format(validation.DateLayout)
	}

	entry := &storage.WeightEntry{UserID: userID, WeightKg: req.WeightKg, Date: date}
	if err := s.storage.CreateWeight(ctx, entry); err != nil {
		return WeightDTO{}, fmt.Errorf("failed to create weight entry: %w", err)
	}

	if err := s.syncProfile(ctx, userID); err != nil {
		return WeightDTO{}, err
	}
	return toDTO(*entry), nil
}

func (s *Service) List(ctx context.Context, userID int64, from, to string) ([]WeightDTO, error) {
	if from != "" && to != "" && from > to {
		return nil, ErrInvalidRange
	}
	entries, err := s.storage.ListWeights(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]WeightDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, toDTO(e))
	}
	return out, nil
}

func (s *Service) Latest(ctx context.Context, userID int64) (WeightDTO, error) {
	e, err := s.storage.LatestWeight(ctx, userID)
	if err != nil {
		return WeightDTO{}, err
	}
	return toDTO(*e), nil
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if err := s.storage.DeleteWeight(ctx, userID, id); err != nil {
		return err
	}
	return s.syncProfile(ctx, userID)
}

// syncProfile переносит вес последней записи в профиль пользователя.
func (s *Service) syncProfile(ctx context.Context, userID int64) error {
	latest, err := s.storage.LatestWeight(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get latest weight: %w", err)
	}

	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user.WeightKg != nil && *user.WeightKg == latest.WeightKg {
		return nil
	}

	w := latest.WeightKg
	user.WeightKg = &w
	if err := s.storage.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to update user weight: %w", err)
	}
	s.log.Debugw("profile weight updated", "user_id", userID, "weight_kg", w)
	return nil
}

func toDTO(e storage.WeightEntry) WeightDTO {
	return WeightDTO{ID: e.ID, WeightKg: e.WeightKg, Date: e.Date, CreatedAt: e.CreatedAt}
}
