package planner

import "context"

const DefaultMaxAttempts = 5

// candidateFunc выдаёт очередного кандидата на день; avoid: уже занятые названия.
type candidateFunc func(ctx context.Context, avoid []string) (DayPlan, Source, error)

// UniquenessGuard retries day generation while its meals overlap the other
// days of the week. The number of attempts is bounded.
type UniquenessGuard struct {
	MaxAttempts int
}

// Run returns the first candidate without overlaps. After MaxAttempts tries,
// or right after a candidate from the deterministic generator, it returns
// ErrUniquenessExhausted together with the last candidate.
func (u UniquenessGuard) Run(ctx context.Context, label string, week WeekPlan, next candidateFunc) (DayPlan, Source, error) {
	attempts := u.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}

	used := usedNames(week, label)
	avoid := existingNames(week, label)

	var (
		last       DayPlan
		lastSource Source
	)
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return DayPlan{}, "", err
		}
		candidate, source, err := next(ctx, avoid)
		if err != nil {
			return DayPlan{}, "", err
		}
		last, lastSource = candidate, source
		if len(collisions(candidate, used)) == 0 {
			return candidate, source, nil
		}
		if source == SourceFallback {
			break
		}
	}
	return last, lastSource, ErrUniquenessExhausted
}

func collisions(day DayPlan, used map[string]int) []string {
	var out []string
	for _, m := range day.Meals() {
		if used[normalizeName(m.Name)] > 0 {
			out = append(out, m.Name)
		}
	}
	return out
}

// existingNames: названия блюд остальных дней в порядке недели, без повторов.
func existingNames(week WeekPlan, label string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range week.Week {
		if sameDay(d.Day, label) {
			continue
		}
		for _, m := range d.Meals() {
			key := normalizeName(m.Name)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, m.Name)
		}
	}
	return out
}
