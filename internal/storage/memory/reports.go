package memory

import (
	"context"
	"sort"
	"time"

	"github.com/IDINaXI/Nutrio/internal/storage"
	"github.com/google/uuid"
)

func (m *MemoryStorage) CreateReport(ctx context.Context, report *storage.ReportMeta) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	now := time.Now().UTC()
	report.CreatedAt = now
	report.UpdatedAt = now

	stored := *report
	stored.Data = cloneBytes(report.Data)
	m.reports[report.ID] = stored
	return nil
}

func (m *MemoryStorage) GetReport(ctx context.Context, userID int64, id uuid.UUID) (*storage.ReportMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reports[id]
	if !ok || r.UserID != userID {
		return nil, storage.ErrNotFound
	}
	r.Data = cloneBytes(r.Data)
	return &r, nil
}

func (m *MemoryStorage) ListReports(ctx context.Context, userID int64, limit, offset int) ([]storage.ReportMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []storage.ReportMeta{}
	for _, r := range m.reports {
		if r.UserID == userID {
			r.Data = nil
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, limit, offset), nil
}

func (m *MemoryStorage) DeleteReport(ctx context.Context, userID int64, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reports[id]
	if !ok || r.UserID != userID {
		return storage.ErrNotFound
	}
	delete(m.reports, id)
	return nil
}
