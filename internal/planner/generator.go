package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IDINaXI/Nutrio/internal/logger"
)

// Gateway is the external AI: it takes a prompt and returns the raw reply.
type Gateway interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
	SourceCustom   Source = "custom"
)

const DefaultTimeout = 30 * time.Second

// Generator is the single generation entry point: AI first, then the
// deterministic plan on any AI-path error. Only ErrIncompleteProfile and
// context errors reach the caller.
type Generator struct {
	gateway  Gateway
	prompts  PromptBuilder
	fallback Fallback
	guard    UniquenessGuard
	timeout  time.Duration
	log      *logger.Logger
}

type Option func(*Generator)

func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.guard.MaxAttempts = n
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(g *Generator) {
		g.log = logger.OrNop(l)
	}
}

// NewGenerator creates a generator. gateway may be nil, in which case the fallback is always used.
func NewGenerator(gateway Gateway, opts ...Option) *Generator {
	g := &Generator{
		gateway: gateway,
		guard:   UniquenessGuard{MaxAttempts: DefaultMaxAttempts},
		timeout: DefaultTimeout,
		log:     logger.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateWeeklyPlan returns a 7-day plan.
func (g *Generator) GenerateWeeklyPlan(ctx context.Context, p UserProfile) (WeekPlan, Source, error) {
	if err := p.Validate(); err != nil {
		return WeekPlan{}, "", err
	}

	week, err := g.aiWeek(ctx, p)
	if err == nil {
		planGenerationsTotal.WithLabelValues("week", string(SourceAI)).Inc()
		return week, SourceAI, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return WeekPlan{}, "", ctxErr
	}
	g.recordFailure("week", err)

	week, err = g.fallback.GenerateWeek(p)
	if err != nil {
		return WeekPlan{}, "", err
	}
	planGenerationsTotal.WithLabelValues("week", string(SourceFallback)).Inc()
	return week, SourceFallback, nil
}

// GenerateDailyPlan returns a single-day plan labelled label.
func (g *Generator) GenerateDailyPlan(ctx context.Context, p UserProfile, label string) (DayPlan, Source, error) {
	if err := p.Validate(); err != nil {
		return DayPlan{}, "", err
	}
	day, source, err := g.day(ctx, p, label, nil, "day")
	if err != nil {
		return DayPlan{}, "", err
	}
	planGenerationsTotal.WithLabelValues("day", string(source)).Inc()
	return day, source, nil
}

// RegenerateDay generates a new day label whose meals do not repeat the
// other days of week. When attempts run out, the day is built from the
// catalog with forced rotation.
func (g *Generator) RegenerateDay(ctx context.Context, p UserProfile, label string, week WeekPlan) (DayPlan, Source, error) {
	if err := p.Validate(); err != nil {
		return DayPlan{}, "", err
	}

	day, source, err := g.guard.Run(ctx, label, week, func(ctx context.Context, avoid []string) (DayPlan, Source, error) {
		return g.day(ctx, p, label, avoid, "regenerate")
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrUniquenessExhausted):
		if ctxErr := ctx.Err(); ctxErr != nil {
			return DayPlan{}, "", ctxErr
		}
		g.recordFailure("regenerate", err)
		day, err = g.fallback.GenerateRotatedDay(p, label, week)
		if err != nil {
			return DayPlan{}, "", err
		}
		source = SourceFallback
	default:
		return DayPlan{}, "", err
	}

	planGenerationsTotal.WithLabelValues("regenerate", string(source)).Inc()
	return day, source, nil
}

// day: один проход ИИ-пути для дня с откатом на каталог.
func (g *Generator) day(ctx context.Context, p UserProfile, label string, avoid []string, kind string) (DayPlan, Source, error) {
	day, err := g.aiDay(ctx, p, label, avoid)
	if err == nil {
		return day, SourceAI, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return DayPlan{}, "", ctxErr
	}
	g.recordFailure(kind, err)

	day, err = g.fallback.GenerateDay(p, label)
	if err != nil {
		return DayPlan{}, "", err
	}
	return day, SourceFallback, nil
}

func (g *Generator) aiWeek(ctx context.Context, p UserProfile) (WeekPlan, error) {
	prompt, err := g.prompts.Weekly(p)
	if err != nil {
		return WeekPlan{}, err
	}
	text, err := g.ask(ctx, prompt)
	if err != nil {
		return WeekPlan{}, err
	}
	week, err := DecodeWeek(text)
	if err != nil {
		return WeekPlan{}, err
	}
	allergies := p.allergyList()
	for i := range week.Week {
		if !week.Week[i].Complete() {
			return WeekPlan{}, schemaErrorf(fmt.Sprintf("week[%d]", i), "day must contain breakfast, lunch, dinner and snack")
		}
		if err := checkAllergens(fmt.Sprintf("week[%d]", i), week.Week[i], allergies); err != nil {
			return WeekPlan{}, err
		}
	}
	return week, nil
}

func (g *Generator) aiDay(ctx context.Context, p UserProfile, label string, avoid []string) (DayPlan, error) {
	var (
		prompt string
		err    error
	)
	if len(avoid) > 0 {
		prompt, err = g.prompts.Regenerate(p, label, avoid)
	} else {
		prompt, err = g.prompts.Daily(p, label)
	}
	if err != nil {
		return DayPlan{}, err
	}
	text, err := g.ask(ctx, prompt)
	if err != nil {
		return DayPlan{}, err
	}
	day, err := DecodeDay(text)
	if err != nil {
		return DayPlan{}, err
	}
	if !day.Complete() {
		return DayPlan{}, schemaErrorf("", "day must contain breakfast, lunch, dinner and snack")
	}
	if err := checkAllergens("", day, p.allergyList()); err != nil {
		return DayPlan{}, err
	}
	// метка дня задаётся запросом, а не ответом модели
	day.Day = label
	return day, nil
}

// ask вызывает шлюз с таймаутом и достаёт JSON из ответа.
func (g *Generator) ask(ctx context.Context, prompt string) (string, error) {
	if g.gateway == nil {
		return "", fmt.Errorf("%w: gateway is not configured", ErrAIUnavailable)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := g.gateway.Generate(callCtx, prompt)
	if err != nil {
		if errors.Is(err, ErrAIUnavailable) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}
	return ExtractJSON(raw)
}

func (g *Generator) recordFailure(kind string, err error) {
	reason := failureReason(err)
	aiFailuresTotal.WithLabelValues(reason).Inc()
	g.log.Warnw("ai plan generation failed, using fallback",
		"kind", kind,
		"reason", reason,
		"error", err,
	)
}
