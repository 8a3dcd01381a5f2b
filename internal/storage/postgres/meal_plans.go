package postgres

import (
	"context"
	"fmt"

	"github.com/IDINaXI/Nutrio/internal/storage"
	"github.com/jackc/pgx/v5"
)

const mealPlanColumns = `id, user_id, to_char(start_date, 'YYYY-MM-DD'), to_char(end_date, 'YYYY-MM-DD'),
	source, is_current, payload, created_at, updated_at`

func scanMealPlan(row pgx.Row) (storage.MealPlan, error) {
	var plan storage.MealPlan
	err := row.Scan(
		&plan.ID,
		&plan.UserID,
		&plan.StartDate,
		&plan.EndDate,
		&plan.Source,
		&plan.IsCurrent,
		&plan.Payload,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	return plan, err
}

func (p *PostgresStorage) SaveCurrentMealPlan(ctx context.Context, plan *storage.MealPlan) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE meal_plans SET is_current = false, updated_at = NOW()
		WHERE user_id = $1 AND is_current
	`, plan.UserID)
	if err != nil {
		return fmt.Errorf("failed to demote current meal plan: %w", err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO meal_plans (user_id, start_date, end_date, source, is_current, payload)
		VALUES ($1, $2::date, $3::date, $4, true, $5)
		RETURNING id, created_at, updated_at
	`,
		plan.UserID,
		plan.StartDate,
		plan.EndDate,
		plan.Source,
		plan.Payload,
	).Scan(&plan.ID, &plan.CreatedAt, &plan.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create meal plan: %w", mapError(err))
	}
	plan.IsCurrent = true

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (p *PostgresStorage) GetCurrentMealPlan(ctx context.Context, userID int64) (*storage.MealPlan, error) {
	plan, err := scanMealPlan(p.pool.QueryRow(ctx,
		`SELECT `+mealPlanColumns+` FROM meal_plans WHERE user_id = $1 AND is_current`, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get current meal plan: %w", mapError(err))
	}
	return &plan, nil
}

func (p *PostgresStorage) UpdateMealPlanPayload(ctx context.Context, userID, planID int64, payload []byte) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE meal_plans SET payload = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`, planID, userID, payload)
	if err != nil {
		return fmt.Errorf("failed to update meal plan: %w", err)
	}
	return requireAffected(tag)
}

func (p *PostgresStorage) ListMealPlans(ctx context.Context, userID int64, limit, offset int) ([]storage.MealPlan, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+mealPlanColumns+`
		FROM meal_plans
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal plans: %w", err)
	}
	defer rows.Close()

	plans := []storage.MealPlan{}
	for rows.Next() {
		plan, err := scanMealPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal plan: %w", err)
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

func (p *PostgresStorage) CreateDayPlan(ctx context.Context, plan *storage.DayPlanRecord) error {
	err := p.pool.QueryRow(ctx, `
		INSERT INTO day_meal_plans (user_id, day_label, plan_date, source, payload)
		VALUES ($1, $2, $3::date, $4, $5)
		RETURNING id, created_at
	`,
		plan.UserID,
		plan.Day,
		plan.Date,
		plan.Source,
		plan.Payload,
	).Scan(&plan.ID, &plan.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create day plan: %w", mapError(err))
	}
	return nil
}

func (p *PostgresStorage) ListDayPlans(ctx context.Context, userID int64, limit, offset int) ([]storage.DayPlanRecord, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, user_id, day_label, to_char(plan_date, 'YYYY-MM-DD'), source, payload, created_at
		FROM day_meal_plans
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list day plans: %w", err)
	}
	defer rows.Close()

	plans := []storage.DayPlanRecord{}
	for rows.Next() {
		var plan storage.DayPlanRecord
		if err := rows.Scan(
			&plan.ID,
			&plan.UserID,
			&plan.Day,
			&plan.Date,
			&plan.Source,
			&plan.Payload,
			&plan.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan day plan: %w", err)
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}
