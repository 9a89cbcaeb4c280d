package store

import (
	"context"
	"database/sql"
	"errors"
)

// CreateUser inserts an account. Returns ErrConflict when the email is taken.
func (db *DB) CreateUser(ctx context.Context, u *User) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO users (uid, email, display_name, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		u.UID, u.Email, u.DisplayName, u.PasswordHash, u.CreatedAt)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// UserByEmail looks an account up by email, case-insensitively. Returns nil, nil when absent.
func (db *DB) UserByEmail(ctx context.Context, email string) (*User, error) {
	return db.scanUser(db.QueryRowContext(ctx, `
		SELECT uid, email, display_name, password_hash, created_at
		FROM users WHERE email = ?`, email))
}

// UserByUID looks an account up by id. Returns nil, nil when absent.
func (db *DB) UserByUID(ctx context.Context, uid string) (*User, error) {
	return db.scanUser(db.QueryRowContext(ctx, `
		SELECT uid, email, display_name, password_hash, created_at
		FROM users WHERE uid = ?`, uid))
}

// SetDisplayName updates an account's display name. Returns false when the account does not exist.
func (db *DB) SetDisplayName(ctx context.Context, uid, name string) (bool, error) {
	res, err := db.ExecContext(ctx, `UPDATE users SET display_name = ? WHERE uid = ?`, name, uid)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (db *DB) scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.UID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
