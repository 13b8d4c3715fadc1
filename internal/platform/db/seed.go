package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/auth"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/platform/config"
)

const seedDivisionName = "Office of the Head"

// Seed creates the default division and the initial HR account. It is safe
// to run on every start.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	divisionID, err := ensureDivision(ctx, pool, seedDivisionName)
	if err != nil {
		return err
	}
	return ensureAdminUser(ctx, pool, divisionID, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
}

func ensureDivision(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM divisions WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}
	if err := pool.QueryRow(ctx, "INSERT INTO divisions (name) VALUES ($1) RETURNING id", name).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, divisionID, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE email = $1", email).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	var userID string
	if err := tx.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, role, status)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, email, hash, auth.RoleHR, auth.UserStatusActive).Scan(&userID); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if _, err := tx.Exec(ctx, `
    INSERT INTO employees (user_id, division_id, first_name, last_name, position)
    VALUES ($1,$2,$3,$4,$5)
  `, userID, divisionID, "HR", "Administrator", "Human Resource Management Officer"); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
