package storage

import (
	"context"
	"fmt"
	"time"
)

// LoginRecord is one stored login attempt.
type LoginRecord struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Success     bool      `json:"success"`
	ClientIP    string    `json:"clientIp,omitempty"`
	AttemptedAt time.Time `json:"attemptedAt"`
}

// SaveLogin appends a login attempt to the audit table.
func (r *UserRepository) SaveLogin(ctx context.Context, rec LoginRecord) error {
	const q = `INSERT INTO login_audit (email, success, client_ip, attempted_at) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, rec.Email, rec.Success, rec.ClientIP, rec.AttemptedAt.UTC()); err != nil {
		return fmt.Errorf("insert login audit: %w", err)
	}
	return nil
}

// RecentLogins returns the latest attempts, newest first.
func (r *UserRepository) RecentLogins(ctx context.Context, limit int) ([]LoginRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT id, email, success, client_ip, attempted_at FROM login_audit ORDER BY attempted_at DESC, id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query login audit: %w", err)
	}
	defer rows.Close()

	var out []LoginRecord
	for rows.Next() {
		var rec LoginRecord
		if err := rows.Scan(&rec.ID, &rec.Email, &rec.Success, &rec.ClientIP, &rec.AttemptedAt); err != nil {
			return nil, fmt.Errorf("scan login audit: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
