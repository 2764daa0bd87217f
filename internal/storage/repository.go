// Package storage keeps dashboard users and their login history in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"ledgerdash/internal/auth"
)

// UserRepository implements auth.Store on SQLite.
type UserRepository struct {
	db *sql.DB
}

var _ auth.Store = (*UserRepository)(nil)

// NewUserRepository opens (creating if needed) the database at dbPath and
// applies migrations.
func NewUserRepository(dbPath string) (*UserRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &UserRepository{db: db}, nil
}

func (r *UserRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *UserRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Seed inserts users whose email is not stored yet.
func (r *UserRepository) Seed(ctx context.Context, users []auth.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	const q = `INSERT OR IGNORE INTO users (id, email, name, role, password) VALUES (?, ?, ?, ?, ?)`
	for _, u := range users {
		if _, err := tx.ExecContext(ctx, q, u.ID, strings.TrimSpace(u.Email), u.Name, u.Role, u.Password); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}
	return tx.Commit()
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	const q = `SELECT id, email, name, role, password FROM users WHERE email = ?`
	var u auth.User
	err := r.db.QueryRowContext(ctx, q, strings.TrimSpace(email)).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]auth.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, email, name, role FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []auth.User
	for rows.Next() {
		var u auth.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
