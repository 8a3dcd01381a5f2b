package memory

import (
	"context"
	"sort"
	"time"

	"github.com/IDINaXI/Nutrio/internal/storage"
)

func (m *MemoryStorage) CreateWeight(ctx context.Context, entry *storage.WeightEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry.ID = m.id()
	entry.CreatedAt = time.Now().UTC()
	m.weights[entry.ID] = *entry
	return nil
}

func (m *MemoryStorage) ListWeights(ctx context.Context, userID int64, from, to string) ([]storage.WeightEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := []storage.WeightEntry{}
	for _, e := range m.weights {
		if e.UserID == userID && inRange(e.Date, from, to) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date < entries[j].Date
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

func (m *MemoryStorage) LatestWeight(ctx context.Context, userID int64) (*storage.WeightEntry, error) {
	entries, _ := m.ListWeights(ctx, userID, "", "")
	if len(entries) == 0 {
		return nil, storage.ErrNotFound
	}
	latest := entries[len(entries)-1]
	return &latest, nil
}

func (m *MemoryStorage) DeleteWeight(ctx context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.weights[id]
	if !ok || e.UserID != userID {
		return storage.ErrNotFound
	}
	delete(m.weights, id)
	return nil
}

func (m *MemoryStorage) CreateMeasurement(ctx context.Context, meas *storage.Measurement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	meas.ID = m.id()
	meas.CreatedAt = time.Now().UTC()
	m.measurements[meas.ID] = *meas
	return nil
}

func (m *MemoryStorage) ListMeasurements(ctx context.Context, userID int64, from, to string) ([]storage.Measurement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []storage.Measurement{}
	for _, meas := range m.measurements {
		if meas.UserID == userID && inRange(meas.Date, from, to) {
			out = append(out, meas)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStorage) DeleteMeasurement(ctx context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	meas, ok := m.measurements[id]
	if !ok || meas.UserID != userID {
		return storage.ErrNotFound
	}
	delete(m.measurements, id)
	return nil
}
