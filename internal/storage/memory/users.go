package memory

import (
	"context"
	"strings"
	"time"

	"github.com/IDINaXI/Nutrio/internal/storage"
)

func (m *MemoryStorage) CreateUser(ctx context.Context, user *storage.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(user.Email))
	if _, exists := m.emails[email]; exists {
		return storage.ErrConflict
	}

	now := time.Now().UTC()
	user.ID = m.id()
	user.Email = email
	user.CreatedAt = now
	user.UpdatedAt = now

	m.users[user.ID] = copyUser(*user)
	m.emails[email] = user.ID
	return nil
}

func (m *MemoryStorage) GetUserByID(ctx context.Context, id int64) (*storage.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	u = copyUser(u)
	return &u, nil
}

func (m *MemoryStorage) GetUserByEmail(ctx context.Context, email string) (*storage.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.emails[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, storage.ErrNotFound
	}
	u := copyUser(m.users[id])
	return &u, nil
}

func (m *MemoryStorage) UpdateUser(ctx context.Context, user *storage.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.users[user.ID]
	if !ok {
		return storage.ErrNotFound
	}

	updated := copyUser(*user)
	updated.Email = existing.Email
	updated.PasswordHash = existing.PasswordHash
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	m.users[user.ID] = updated
	user.UpdatedAt = updated.UpdatedAt
	user.CreatedAt = existing.CreatedAt
	return nil
}

func copyUser(u storage.User) storage.User {
	if u.Allergies != nil {
		u.Allergies = append([]string(nil), u.Allergies...)
	}
	return u
}
