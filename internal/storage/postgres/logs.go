package postgres

import (
	"context"
	"fmt"

	"github.com/IDINaXI/Nutrio/internal/storage"
)

func (p *PostgresStorage) CreateWeight(ctx context.Context, entry *storage.WeightEntry) error {
	err := p.pool.QueryRow(ctx, `
		INSERT INTO weight_entries (user_id, weight_kg, entry_date)
		VALUES ($1, $2, $3::date)
		RETURNING id, created_at
	`, entry.UserID, entry.WeightKg, entry.Date).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create weight entry: %w", mapError(err))
	}
	return nil
}

// ListWeights turns an empty bound into NULL, leaving that side unbounded.
func (p *PostgresStorage) ListWeights(ctx context.Context, userID int64, from, to string) ([]storage.WeightEntry, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, user_id, weight_kg, to_char(entry_date, 'YYYY-MM-DD'), created_at
		FROM weight_entries
		WHERE user_id = $1
		  AND ($2::date IS NULL OR entry_date >= $2::date)
		  AND ($3::date IS NULL OR entry_date <= $3::date)
		ORDER BY entry_date ASC, id ASC
	`, userID, nullIfEmpty(from), nullIfEmpty(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list weight entries: %w", err)
	}
	defer rows.Close()

	entries := []storage.WeightEntry{}
	for rows.Next() {
		var e storage.WeightEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.WeightKg, &e.Date, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan weight entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (p *PostgresStorage) LatestWeight(ctx context.Context, userID int64) (*storage.WeightEntry, error) {
	var e storage.WeightEntry
	err := p.pool.QueryRow(ctx, `
		SELECT id, user_id, weight_kg, to_char(entry_date, 'YYYY-MM-DD'), created_at
		FROM weight_entries
		WHERE user_id = $1
		ORDER BY entry_date DESC, id DESC
		LIMIT 1
	`, userID).Scan(&e.ID, &e.UserID, &e.WeightKg, &e.Date, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest weight: %w", mapError(err))
	}
	return &e, nil
}

func (p *PostgresStorage) DeleteWeight(ctx context.Context, userID, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM weight_entries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete weight entry: %w", err)
	}
	return requireAffected(tag)
}

func (p *PostgresStorage) CreateMeasurement(ctx context.Context, m *storage.Measurement) error {
	err := p.pool.QueryRow(ctx, `
		INSERT INTO body_measurements (user_id, measurement_date, waist_cm, chest_cm, hips_cm, arm_cm, leg_cm)
		VALUES ($1, $2::date, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`,
		m.UserID,
		m.Date,
		m.WaistCm,
		m.ChestCm,
		m.HipsCm,
		m.ArmCm,
		m.LegCm,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create measurement: %w", mapError(err))
	}
	return nil
}

func (p *PostgresStorage) ListMeasurements(ctx context.Context, userID int64, from, to string) ([]storage.Measurement, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, user_id, to_char(measurement_date, 'YYYY-MM-DD'), waist_cm, chest_cm, hips_cm, arm_cm, leg_cm, created_at
		FROM body_measurements
		WHERE user_id = $1
		  AND ($2::date IS NULL OR measurement_date >= $2::date)
		  AND ($3::date IS NULL OR measurement_date <= $3::date)
		ORDER BY measurement_date ASC, id ASC
	`, userID, nullIfEmpty(from), nullIfEmpty(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list measurements: %w", err)
	}
	defer rows.Close()

	out := []storage.Measurement{}
	for rows.Next() {
		var m storage.Measurement
		if err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.Date,
			&m.WaistCm,
			&m.ChestCm,
			&m.HipsCm,
			&m.ArmCm,
			&m.LegCm,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (p *PostgresStorage) DeleteMeasurement(ctx context.Context, userID, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM body_measurements WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete measurement: %w", err)
	}
	return requireAffected(tag)
}
