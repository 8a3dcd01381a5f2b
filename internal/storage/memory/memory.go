package memory

import (
	"context"
	"sync"

	"github.com/IDINaXI/Nutrio/internal/storage"
	"github.com/google/uuid"
)

// MemoryStorage is an in-memory implementation of storage.Storage.
type MemoryStorage struct {
	mu     sync.RWMutex
	nextID int64

	users        map[int64]storage.User
	emails       map[string]int64
	mealPlans    map[int64]storage.MealPlan
	dayPlans     map[int64]storage.DayPlanRecord
	weights      map[int64]storage.WeightEntry
	measurements map[int64]storage.Measurement
	reminders    map[int64]storage.Reminder
	reports      map[uuid.UUID]storage.ReportMeta
}

var _ storage.Storage = (*MemoryStorage)(nil)

// New creates an empty store.
func New() *MemoryStorage {
	return &MemoryStorage{
		users:        make(map[int64]storage.User),
		emails:       make(map[string]int64),
		mealPlans:    make(map[int64]storage.MealPlan),
		dayPlans:     make(map[int64]storage.DayPlanRecord),
		weights:      make(map[int64]storage.WeightEntry),
		measurements: make(map[int64]storage.Measurement),
		reminders:    make(map[int64]storage.Reminder),
		reports:      make(map[uuid.UUID]storage.ReportMeta),
	}
}

// id выдаёт следующий идентификатор; вызывать под m.mu.Lock
func (m *MemoryStorage) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}

func inRange(date, from, to string) bool {
	if from != "" && date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
