package memory

import (
	"context"
	"sort"
	"time"

	"github.com/IDINaXI/Nutrio/internal/storage"
)

func (m *MemoryStorage) CreateReminder(ctx context.Context, r *storage.Reminder, limit int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, existing := range m.reminders {
		if existing.UserID == r.UserID {
			count++
		}
	}
	if limit > 0 && count >= limit {
		return storage.ErrLimitReached
	}

	now := time.Now().UTC()
	r.ID = m.id()
	r.CreatedAt = now
	r.UpdatedAt = now
	m.reminders[r.ID] = *r
	return nil
}

func (m *MemoryStorage) GetReminder(ctx context.Context, userID, id int64) (*storage.Reminder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reminders[id]
	if !ok || r.UserID != userID {
		return nil, storage.ErrNotFound
	}
	return &r, nil
}

func (m *MemoryStorage) ListReminders(ctx context.Context, userID int64) ([]storage.Reminder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []storage.Reminder{}
	for _, r := range m.reminders {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TimeMinutes != out[j].TimeMinutes {
			return out[i].TimeMinutes < out[j].TimeMinutes
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStorage) UpdateReminder(ctx context.Context, r *storage.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.reminders[r.ID]
	if !ok || existing.UserID != r.UserID {
		return storage.ErrNotFound
	}
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = time.Now().UTC()
	m.reminders[r.ID] = *r
	return nil
}

func (m *MemoryStorage) DeleteReminder(ctx context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reminders[id]
	if !ok || r.UserID != userID {
		return storage.ErrNotFound
	}
	delete(m.reminders, id)
	return nil
}
