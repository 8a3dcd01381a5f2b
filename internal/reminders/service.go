package reminders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IDINaXI/Nutrio/internal/storage"
	"github.com/IDINaXI/Nutrio/internal/validation"
)

var ErrLimitReached = errors.New("maximum number of reminders reached")

type Service struct {
	storage storage.RemindersStorage
	now     func() time.Time
}

func NewService(storage storage.RemindersStorage) *Service {
	return &Service{storage: storage, now: time.Now}
}

func (s *Service) Create(ctx context.Context, userID int64, req ReminderRequest) (ReminderDTO, error) {
	r, err := fromRequest(userID, req)
	if err != nil {
		return ReminderDTO{}, err
	}
	if err := s.storage.CreateReminder(ctx, r, MaxPerUser); err != nil {
		if errors.Is(err, storage.ErrLimitReached) {
			return ReminderDTO{}, ErrLimitReached
		}
		return ReminderDTO{}, fmt.Errorf("failed to create reminder: %w", err)
	}
	return toDTO(*r), nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]ReminderDTO, error) {
	items, err := s.storage.ListReminders(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toDTOs(items, nil), nil
}

// Today returns active reminders for the current weekday, ordered by time.
func (s *Service) Today(ctx context.Context, userID int64) ([]ReminderDTO, error) {
	items, err := s.storage.ListReminders(ctx, userID)
	if err != nil {
		return nil, err
	}
	bit := 1 << (isoWeekday(s.now()) - 1)
	return toDTOs(items, func(r storage.Reminder) bool {
		return r.Active && r.DaysMask&bit != 0
	}), nil
}

func (s *Service) Update(ctx context.Context, userID, id int64, req ReminderRequest) (ReminderDTO, error) {
	existing, err := s.storage.GetReminder(ctx, userID, id)
	if err != nil {
		return ReminderDTO{}, err
	}
	r, err := fromRequest(userID, req)
	if err != nil {
		return ReminderDTO{}, err
	}
	r.ID = existing.ID
	r.CreatedAt = existing.CreatedAt
	if req.Active == nil {
		r.Active = existing.Active
	}
	if err := s.storage.UpdateReminder(ctx, r); err != nil {
		return ReminderDTO{}, fmt.Errorf("failed to update reminder: %w", err)
	}
	return toDTO(*r), nil
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	return s.storage.DeleteReminder(ctx, userID, id)
}

func fromRequest(userID int64, req ReminderRequest) (*storage.Reminder, error) {
	minutes, err := validation.ParseHHMM(req.Time)
	if err != nil {
		return nil, err
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return &storage.Reminder{
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		Dosage:      strings.TrimSpace(req.Dosage),
		Comment:     strings.TrimSpace(req.Comment),
		TimeMinutes: minutes,
		DaysMask:    DaysToMask(req.DaysOfWeek),
		Active:      active,
	}, nil
}

func toDTO(r storage.Reminder) ReminderDTO {
	return ReminderDTO{
		ID:         r.ID,
		Name:       r.Name,
		Dosage:     r.Dosage,
		Comment:    r.Comment,
		Time:       validation.FormatHHMM(r.TimeMinutes),
		DaysOfWeek: MaskToDays(r.DaysMask),
		Active:     r.Active,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func toDTOs(items []storage.Reminder, keep func(storage.Reminder) bool) []ReminderDTO {
	out := make([]ReminderDTO, 0, len(items))
	for _, r := range items {
		if keep == nil || keep(r) {
			out = append(out, toDTO(r))
		}
	}
	return out
}
