// Package users is the SQL account store. Queries are written with '?'
// placeholders and rebound for the active driver, so one implementation
// serves PostgreSQL, MySQL and SQLite.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophgram/internal/common"
	"github.com/dmitrijs2005/gophgram/internal/dbx"
	"github.com/dmitrijs2005/gophgram/internal/server/models"
	"github.com/jmoiron/sqlx"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) FindSaltByEmail(ctx context.Context, email string) (string, error) {
	query := `SELECT salt FROM users WHERE email = ?`

	var salt string
	err := sqlx.GetContext(ctx, r.db, &salt, r.db.Rebind(query), email)
	if err != nil {
		return "", notFoundOr(err)
	}

	return salt, nil
}

func (r *SQLRepository) FindCredentialByEmail(ctx context.Context, email string) (*models.Credential, error) {
	query :=
		`SELECT id, access_key, email, password_hash, salt FROM users
		 WHERE email = ?`

	c := &models.Credential{}
	err := sqlx.GetContext(ctx, r.db, c, r.db.Rebind(query), email)
	if err != nil {
		return nil, notFoundOr(err)
	}

	return c, nil
}

func (r *SQLRepository) ExistsAccessKey(ctx context.Context, accessKey string) (bool, error) {
	return r.exists(ctx, `SELECT COUNT(*) FROM users WHERE access_key = ?`, accessKey)
}

func (r *SQLRepository) ExistsEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, email)
}

func (r *SQLRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(query), arg); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *SQLRepository) InsertAccount(ctx context.Context, a *models.Account) (int64, error) {
	query :=
		`INSERT INTO users (access_key, email, password_hash, salt, name)
		 VALUES (?, ?, ?, ?, ?)`

	id, err := dbx.InsertReturningID(ctx, r.db, query, a.AccessKey, a.Email, a.PasswordHash, a.Salt, a.Name)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %w", common.ErrUniqueViolation, err)
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return id, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getUser(ctx, `SELECT id, access_key, email, name, created_at FROM users WHERE id = ?`, id)
}

func (r *SQLRepository) GetByAccessKey(ctx context.Context, accessKey string) (*models.User, error) {
	return r.getUser(ctx, `SELECT id, access_key, email, name, created_at FROM users WHERE access_key = ?`, accessKey)
}

func (r *SQLRepository) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	u := &models.User{}
	if err := sqlx.GetContext(ctx, r.db, u, r.db.Rebind(query), arg); err != nil {
		return nil, notFoundOr(err)
	}
	return u, nil
}

func (r *SQLRepository) UpdateName(ctx context.Context, id int64, name string) error {
	return r.update(ctx, `UPDATE users SET name = ? WHERE id = ?`, name, id)
}

// UpdateCredentials replaces hash and salt together; a new salt always
// accompanies a new password.
func (r *SQLRepository) UpdateCredentials(ctx context.Context, id int64, passwordHash, salt string) error {
	return r.update(ctx, `UPDATE users SET password_hash = ?, salt = ? WHERE id = ?`, passwordHash, salt, id)
}

func (r *SQLRepository) update(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	// MySQL counts changed rows, not matched ones, unless clientFoundRows is set.
	if r.db.DriverName() == "mysql" {
		return nil
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func notFoundOr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}
