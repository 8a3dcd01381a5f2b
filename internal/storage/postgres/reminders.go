package postgres

import (
	"context"
	"fmt"

	"github.com/IDINaXI/Nutrio/internal/storage"
	"github.com/jackc/pgx/v5"
)

const reminderColumns = `id, user_id, name, dosage, comment, time_minutes, days_mask, active, created_at, updated_at`

func scanReminder(row pgx.Row) (storage.Reminder, error) {
	var r storage.Reminder
	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.Name,
		&r.Dosage,
		&r.Comment,
		&r.TimeMinutes,
		&r.DaysMask,
		&r.Active,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}

// CreateReminder counts reminders under a lock on the user row so that
// concurrent requests cannot exceed the limit.
func (p *PostgresStorage) CreateReminder(ctx context.Context, r *storage.Reminder, limit int) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var locked int64
	if err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, r.UserID).Scan(&locked); err != nil {
		return fmt.Errorf("failed to lock user: %w", mapError(err))
	}

	if limit > 0 {
		var count int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM pill_reminders WHERE user_id = $1`, r.UserID).Scan(&count); err != nil {
			return fmt.Errorf("failed to count reminders: %w", err)
		}
		if count >= limit {
			return storage.ErrLimitReached
		}
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO pill_reminders (user_id, name, dosage, comment, time_minutes, days_mask, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`,
		r.UserID,
		r.Name,
		r.Dosage,
		r.Comment,
		r.TimeMinutes,
		r.DaysMask,
		r.Active,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", mapError(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (p *PostgresStorage) GetReminder(ctx context.Context, userID, id int64) (*storage.Reminder, error) {
	r, err := scanReminder(p.pool.QueryRow(ctx,
		`SELECT `+reminderColumns+` FROM pill_reminders WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder: %w", mapError(err))
	}
	return &r, nil
}

func (p *PostgresStorage) ListReminders(ctx context.Context, userID int64) ([]storage.Reminder, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+reminderColumns+` FROM pill_reminders WHERE user_id = $1 ORDER BY time_minutes ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	out := []storage.Reminder{}
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *PostgresStorage) UpdateReminder(ctx context.Context, r *storage.Reminder) error {
	err := p.pool.QueryRow(ctx, `
		UPDATE pill_reminders
		SET name = $3, dosage = $4, comment = $5, time_minutes = $6, days_mask = $7, active = $8, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING created_at, updated_at
	`,
		r.ID,
		r.UserID,
		r.Name,
		r.Dosage,
		r.Comment,
		r.TimeMinutes,
		r.DaysMask,
		r.Active,
	).Scan(&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", mapError(err))
	}
	return nil
}

func (p *PostgresStorage) DeleteReminder(ctx context.Context, userID, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM pill_reminders WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	return requireAffected(tag)
}
