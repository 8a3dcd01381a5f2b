package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/IDINaXI/Nutrio/internal/storage"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, password_hash, name, age, height_cm, weight_kg, gender, goal,
	activity_level, allergies, created_at, updated_at`

func scanUser(row pgx.Row) (*storage.User, error) {
	var u storage.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Age,
		&u.HeightCm,
		&u.WeightKg,
		&u.Gender,
		&u.Goal,
		&u.ActivityLevel,
		&u.Allergies,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (p *PostgresStorage) CreateUser(ctx context.Context, user *storage.User) error {
	query := `
		INSERT INTO users (email, password_hash, name, age, height_cm, weight_kg, gender, goal, activity_level, allergies)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	allergies := user.Allergies
	if allergies == nil {
		allergies = []string{}
	}

	err := p.pool.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Age,
		user.HeightCm,
		user.WeightKg,
		user.Gender,
		user.Goal,
		user.ActivityLevel,
		allergies,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", mapError(err))
	}
	return nil
}

func (p *PostgresStorage) GetUserByID(ctx context.Context, id int64) (*storage.User, error) {
	u, err := scanUser(p.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", mapError(err))
	}
	return u, nil
}

func (p *PostgresStorage) GetUserByEmail(ctx context.Context, email string) (*storage.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(p.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", mapError(err))
	}
	return u, nil
}

func (p *PostgresStorage) UpdateUser(ctx context.Context, user *storage.User) error {
	query := `
		UPDATE users
		SET name = $2, age = $3, height_cm = $4, weight_kg = $5, gender = $6, goal = $7,
		    activity_level = $8, allergies = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`

	allergies := user.Allergies
	if allergies == nil {
		allergies = []string{}
	}

	err := p.pool.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Age,
		user.HeightCm,
		user.WeightKg,
		user.Gender,
		user.Goal,
		user.ActivityLevel,
		allergies,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", mapError(err))
	}
	return nil
}
