package postgres

import (
	"context"
	"fmt"

	"github.com/IDINaXI/Nutrio/internal/storage"
	"github.com/google/uuid"
)

func (p *PostgresStorage) CreateReport(ctx context.Context, report *storage.ReportMeta) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}

	query := `
		INSERT INTO reports (id, user_id, format, from_date, to_date, object_key, size_bytes, status, error, data)
		VALUES ($1, $2, $3, $4::date, $5::date, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err := p.pool.QueryRow(ctx, query,
		report.ID,
		report.UserID,
		report.Format,
		report.FromDate,
		report.ToDate,
		report.ObjectKey,
		report.SizeBytes,
		report.Status,
		report.Error,
		report.Data,
	).Scan(&report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", mapError(err))
	}
	return nil
}

func (p *PostgresStorage) GetReport(ctx context.Context, userID int64, id uuid.UUID) (*storage.ReportMeta, error) {
	query := `
		SELECT id, user_id, format, to_char(from_date, 'YYYY-MM-DD'), to_char(to_date, 'YYYY-MM-DD'),
		       object_key, size_bytes, status, error, created_at, updated_at, data
		FROM reports
		WHERE id = $1 AND user_id = $2
	`

	var r storage.ReportMeta
	err := p.pool.QueryRow(ctx, query, id, userID).Scan(
		&r.ID,
		&r.UserID,
		&r.Format,
		&r.FromDate,
		&r.ToDate,
		&r.ObjectKey,
		&r.SizeBytes,
		&r.Status,
		&r.Error,
		&r.CreatedAt,
		&r.UpdatedAt,
		&r.Data,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", mapError(err))
	}
	return &r, nil
}

func (p *PostgresStorage) ListReports(ctx context.Context, userID int64, limit, offset int) ([]storage.ReportMeta, error) {
	query := `
		SELECT id, user_id, format, to_char(from_date, 'YYYY-MM-DD'), to_char(to_date, 'YYYY-MM-DD'),
		       object_key, size_bytes, status, error, created_at, updated_at
		FROM reports
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := p.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := []storage.ReportMeta{}
	for rows.Next() {
		var r storage.ReportMeta
		if err := rows.Scan(
			&r.ID,
			&r.UserID,
			&r.Format,
			&r.FromDate,
			&r.ToDate,
			&r.ObjectKey,
			&r.SizeBytes,
			&r.Status,
			&r.Error,
			&r.CreatedAt,
			&r.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (p *PostgresStorage) DeleteReport(ctx context.Context, userID int64, id uuid.UUID) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM reports WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return requireAffected(tag)
}
