package memory

import (
	"context"
	"sort"
	"time"

	"github.com/IDINaXI/Nutrio/internal/storage"
)

func (m *MemoryStorage) SaveCurrentMealPlan(ctx context.Context, plan *storage.MealPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	for id, p := range m.mealPlans {
		if p.UserID == plan.UserID && p.IsCurrent {
			p.IsCurrent = false
			p.UpdatedAt = now
			m.mealPlans[id] = p
		}
	}

	plan.ID = m.id()
	plan.IsCurrent = true
	plan.CreatedAt = now
	plan.UpdatedAt = now

	stored := *plan
	stored.Payload = cloneBytes(plan.Payload)
	m.mealPlans[plan.ID] = stored
	return nil
}

func (m *MemoryStorage) GetCurrentMealPlan(ctx context.Context, userID int64) (*storage.MealPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.mealPlans {
		if p.UserID == userID && p.IsCurrent {
			p.Payload = cloneBytes(p.Payload)
			return &p, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *MemoryStorage) UpdateMealPlanPayload(ctx context.Context, userID, planID int64, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.mealPlans[planID]
	if !ok || p.UserID != userID {
		return storage.ErrNotFound
	}
	p.Payload = cloneBytes(payload)
	p.UpdatedAt = time.Now().UTC()
	m.mealPlans[planID] = p
	return nil
}

func (m *MemoryStorage) ListMealPlans(ctx context.Context, userID int64, limit, offset int) ([]storage.MealPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plans := []storage.MealPlan{}
	for _, p := range m.mealPlans {
		if p.UserID == userID {
			p.Payload = cloneBytes(p.Payload)
			plans = append(plans, p)
		}
	}
	// ID монотонно растут, поэтому сортировка по ID = по времени создания
	sort.Slice(plans, func(i, j int) bool { return plans[i].ID > plans[j].ID })
	return page(plans, limit, offset), nil
}

func (m *MemoryStorage) CreateDayPlan(ctx context.Context, plan *storage.DayPlanRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	plan.ID = m.id()
	plan.CreatedAt = time.Now().UTC()

	stored := *plan
	stored.Payload = cloneBytes(plan.Payload)
	m.dayPlans[plan.ID] = stored
	return nil
}

func (m *MemoryStorage) ListDayPlans(ctx context.Context, userID int64, limit, offset int) ([]storage.DayPlanRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plans := []storage.DayPlanRecord{}
	for _, p := range m.dayPlans {
		if p.UserID == userID {
			p.Payload = cloneBytes(p.Payload)
			plans = append(plans, p)
		}
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].ID > plans[j].ID })
	return page(plans, limit, offset), nil
}
