package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rosterhq/rosterd/internal/model"
)

// CreateAdmin inserts a new administrator account. The ID and CreatedAt
// fields on admin are populated after a successful insert.
func (s *Store) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	admin.CreatedAt = time.Now().UTC()

	if s.driver == "postgres" {
		const q = `INSERT INTO admins (username, password_hash, created_at)
			VALUES ($1, $2, $3) RETURNING id`
		if err := s.db.QueryRowxContext(ctx, q,
			admin.Username, admin.PasswordHash, admin.CreatedAt).Scan(&admin.ID); err != nil {
			return fmt.Errorf("insert admin: %w", err)
		}
		return nil
	}

	const q = `INSERT INTO admins (username, password_hash, created_at)
		VALUES (:username, :password_hash, :created_at)`
	result, err := s.db.NamedExecContext(ctx, q, admin)
	if err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get admin id: %w", err)
	}
	admin.ID = id
	return nil
}

// GetAdminByUsername returns an administrator by exact username match.
func (s *Store) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	var admin model.Admin
	q := s.db.Rebind("SELECT * FROM admins WHERE username = ?")
	if err := s.db.GetContext(ctx, &admin, q, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin by username: %w", err)
	}
	return &admin, nil
}

// ListAdmins returns all administrator accounts.
func (s *Store) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	var admins []model.Admin
	if err := s.db.SelectContext(ctx, &admins, "SELECT * FROM admins ORDER BY username"); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// HasAnyAdmin reports whether at least one administrator account exists. Used
// for first-run detection to trigger the bootstrap admin.
func (s *Store) HasAnyAdmin(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM admins"); err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	return count > 0, nil
}
