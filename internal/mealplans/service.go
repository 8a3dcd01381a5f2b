package mealplans

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IDINaXI/Nutrio/internal/logger"
	"github.com/IDINaXI/Nutrio/internal/planner"
	"github.com/IDINaXI/Nutrio/internal/storage"
	"github.com/IDINaXI/Nutrio/internal/users"
)

const dateLayout = "2006-01-02"

var (
	ErrUnknownDay  = errors.New("unknown day label")
	ErrInvalidPlan = errors.New("invalid plan")
)

// PlanGenerator is the generation facade (*planner.Generator).
type PlanGenerator interface {
	GenerateWeeklyPlan(ctx context.Context, p planner.UserProfile) (planner.WeekPlan, planner.Source, error)
	GenerateDailyPlan(ctx context.Context, p planner.UserProfile, label string) (planner.DayPlan, planner.Source, error)
	RegenerateDay(ctx context.Context, p planner.UserProfile, label string, week planner.WeekPlan) (planner.DayPlan, planner.Source, error)
}

// Profiles gives access to user profiles (*users.Service).
type Profiles interface {
	Profile(ctx context.Context, userID int64) (planner.UserProfile, error)
	Update(ctx context.Context, userID int64, req users.UpdateProfileRequest) (users.UserDTO, error)
}

type Repository interface {
	storage.MealPlansStorage
	storage.DayPlansStorage
}

// Service generates and stores meal plans.
type Service struct {
	storage   Repository
	profiles  Profiles
	generator PlanGenerator
	log       *logger.Logger
	now       func() time.Time
}

func NewService(storage Repository, profiles Profiles, generator PlanGenerator, log *logger.Logger) *Service {
	return &Service{
		storage:   storage,
		profiles:  profiles,
		generator: generator,
		log:       logger.OrNop(log).Named("mealplans"),
		now:       time.Now,
	}
}

// Generate creates a week plan from the profile and makes it current.
func (s *Service) Generate(ctx context.Context, userID int64) (MealPlanDTO, error) {
	profile, err := s.profiles.Profile(ctx, userID)
	if err != nil {
		return MealPlanDTO{}, err
	}

	week, source, err := s.generator.GenerateWeeklyPlan(ctx, profile)
	if err != nil {
		return MealPlanDTO{}, err
	}

	plan, err := s.saveCurrent(ctx, userID, week, source)
	if err != nil {
		return MealPlanDTO{}, err
	}
	s.log.Infow("weekly plan generated", "user_id", userID, "plan_id", plan.ID, "source", source)
	return plan, nil
}

// GenerateCustom updates the profile from the request and generates a plan.
func (s *Service) GenerateCustom(ctx context.Context, userID int64, req users.UpdateProfileRequest) (MealPlanDTO, error) {
	if _, err := s.profiles.Update(ctx, userID, req); err != nil {
		return MealPlanDTO{}, err
	}
	return s.Generate(ctx, userID)
}

func (s *Service) List(ctx context.Context, userID int64, limit, offset int) ([]MealPlanDTO, error) {
	plans, err := s.storage.ListMealPlans(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]MealPlanDTO, 0, len(plans))
	for i := range plans {
		dto, err := toDTO(&plans[i])
		if err != nil {
			return nil, err
		}
		out = append(out, dto)
	}
	return out, nil
}

// Current returns the current plan or storage.ErrNotFound.
func (s *Service) Current(ctx context.Context, userID int64) (MealPlanDTO, error) {
	plan, err := s.storage.GetCurrentMealPlan(ctx, userID)
	if err != nil {
		return MealPlanDTO{}, err
	}
	return toDTO(plan)
}

// ReplaceCurrent stores a client-edited plan as the new current plan.
func (s *Service) ReplaceCurrent(ctx context.Context, userID int64, body []byte) (MealPlanDTO, error) {
	week, err := planner.DecodeWeek(string(body))
	if err != nil {
		return MealPlanDTO{}, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	return s.saveCurrent(ctx, userID, week, planner.SourceCustom)
}

// GenerateDay generates a day plan and records it in history.
func (s *Service) GenerateDay(ctx context.Context, userID int64, label string) (DayPlanDTO, error) {
	label, err := s.resolveDay(label)
	if err != nil {
		return DayPlanDTO{}, err
	}

	profile, err := s.profiles.Profile(ctx, userID)
	if err != nil {
		return DayPlanDTO{}, err
	}

	day, source, err := s.generator.GenerateDailyPlan(ctx, profile, label)
	if err != nil {
		return DayPlanDTO{}, err
	}

	payload, err := planner.EncodeDay(day)
	if err != nil {
		return DayPlanDTO{}, err
	}
	record := &storage.DayPlanRecord{
		UserID:  userID,
		Day:     day.Day,
		Date:    s.now().Format(dateLayout),
		Source:  string(source),
		Payload: payload,
	}
	if err := s.storage.CreateDayPlan(ctx, record); err != nil {
		return DayPlanDTO{}, fmt.Errorf("failed to save day plan: %w", err)
	}

	s.log.Infow("daily plan generated", "user_id", userID, "day", day.Day, "source", source)
	return DayPlanDTO{
		ID:        record.ID,
		Day:       record.Day,
		Date:      record.Date,
		Source:    source,
		Plan:      day,
		CreatedAt: record.CreatedAt,
	}, nil
}

func (s *Service) DayHistory(ctx context.Context, userID int64, limit, offset int) ([]DayPlanDTO, error) {
	records, err := s.storage.ListDayPlans(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]DayPlanDTO, 0, len(records))
	for _, r := range records {
		var day planner.DayPlan
		if err := json.Unmarshal(r.Payload, &day); err != nil {
			return nil, fmt.Errorf("failed to decode day plan %d: %w", r.ID, err)
		}
		out = append(out, DayPlanDTO{
			ID:        r.ID,
			Day:       r.Day,
			Date:      r.Date,
			Source:    planner.Source(r.Source),
			Plan:      day,
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}

// RegenerateDay regenerates a day so its meals do not repeat the other days.
// Without a week in the request it works on the current plan and saves the replacement there.
func (s *Service) RegenerateDay(ctx context.Context, userID int64, req RegenerateDayRequest) (RegenerateDayResponse, error) {
	label := strings.TrimSpace(req.Day)
	if planner.DayIndex(label) < 0 {
		return RegenerateDayResponse{}, ErrUnknownDay
	}

	profile, err := s.profiles.Profile(ctx, userID)
	if err != nil {
		return RegenerateDayResponse{}, err
	}

	var (
		week    planner.WeekPlan
		current *storage.MealPlan
	)
	if len(req.Week) > 0 && string(req.Week) != "null" {
		week, err = planner.DecodeWeek(`{"week":` + string(req.Week) + `}`)
		if err != nil {
			return RegenerateDayResponse{}, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
		}
	} else {
		current, err = s.storage.GetCurrentMealPlan(ctx, userID)
		switch {
		case err == nil:
			if err := json.Unmarshal(current.Payload, &week); err != nil {
				return RegenerateDayResponse{}, fmt.Errorf("failed to decode current plan: %w", err)
			}
		case errors.Is(err, storage.ErrNotFound):
			current = nil
		default:
			return RegenerateDayResponse{}, err
		}
	}

	day, source, err := s.generator.RegenerateDay(ctx, profile, label, week)
	if err != nil {
		return RegenerateDayResponse{}, err
	}
	resp := RegenerateDayResponse{Day: day, Source: source}

	if current != nil {
		if i, ok := week.Day(label); ok {
			week.Week[i] = day
			payload, err := planner.EncodeWeek(week)
			if err != nil {
				return RegenerateDayResponse{}, err
			}
			if err := s.storage.UpdateMealPlanPayload(ctx, userID, current.ID, payload); err != nil {
				return RegenerateDayResponse{}, fmt.Errorf("failed to update current plan: %w", err)
			}
			current.Payload = payload
			dto, err := toDTO(current)
			if err != nil {
				return RegenerateDayResponse{}, err
			}
			resp.Plan = &dto
		}
	}

	s.log.Infow("day regenerated", "user_id", userID, "day", label, "source", source, "plan_updated", resp.Plan != nil)
	return resp, nil
}

func (s *Service) saveCurrent(ctx context.Context, userID int64, week planner.WeekPlan, source planner.Source) (MealPlanDTO, error) {
	payload, err := planner.EncodeWeek(week)
	if err != nil {
		return MealPlanDTO{}, err
	}

	start := s.now()
	plan := &storage.MealPlan{
		UserID:    userID,
		StartDate: start.Format(dateLayout),
		EndDate:   start.AddDate(0, 0, len(planner.WeekDays)-1).Format(dateLayout),
		Source:    string(source),
		Payload:   payload,
	}
	if err := s.storage.SaveCurrentMealPlan(ctx, plan); err != nil {
		return MealPlanDTO{}, fmt.Errorf("failed to save meal plan: %w", err)
	}
	return toDTO(plan)
}

// resolveDay подставляет сегодняшний день недели и проверяет метку.
func (s *Service) resolveDay(label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Today(s.now()), nil
	}
	i := planner.DayIndex(label)
	if i < 0 {
		return "", ErrUnknownDay
	}
	return planner.WeekDays[i], nil
}

// Today returns the Russian weekday label for t (Monday = 0).
func Today(t time.Time) string {
	return planner.WeekDays[(int(t.Weekday())+6)%7]
}

func toDTO(p *storage.MealPlan) (MealPlanDTO, error) {
	var week planner.WeekPlan
	if err := json.Unmarshal(p.Payload, &week); err != nil {
		return MealPlanDTO{}, fmt.Errorf("failed to decode meal plan %d: %w", p.ID, err)
	}
	if week.Week == nil {
		week.Week = []planner.DayPlan{}
	}
	return MealPlanDTO{
		ID:        p.ID,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Source:    planner.Source(p.Source),
		IsCurrent: p.IsCurrent,
		Week:      week.Week,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}, nil
}
