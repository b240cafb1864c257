// Package posts stores posts and their comments. Both carry their own
// access key; the author is exposed by the user's access key, never by id.
package posts

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

func (r *SQLRepository) ExistsAccessKey(ctx context.Context, accessKey string) (bool, error) {
	return r.exists(ctx, `SELECT COUNT(*) FROM posts WHERE access_key = ?`, accessKey)
}

func (r *SQLRepository) ExistsCommentAccessKey(ctx context.Context, accessKey string) (bool, error) {
	return r.exists(ctx, `SELECT COUNT(*) FROM comments WHERE access_key = ?`, accessKey)
}

func (r *SQLRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(query), arg); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *SQLRepository) Create(ctx context.Context, p *models.Post) (int64, error) {
	query := `INSERT INTO posts (access_key, user_id, text) VALUES (?, ?, ?)`

	id, err := dbx.InsertReturningID(ctx, r.db, query, p.AccessKey, p.UserID, p.Text)
	return id, insertError(err)
}

func (r *SQLRepository) CreateComment(ctx context.Context, c *models.Comment) (int64, error) {
	query := `INSERT INTO comments (access_key, post_id, user_id, text) VALUES (?, ?, ?, ?)`

	id, err := dbx.InsertReturningID(ctx, r.db, query, c.AccessKey, c.PostID, c.UserID, c.Text)
	return id, insertError(err)
}

func (r *SQLRepository) GetByAccessKey(ctx context.Context, accessKey string) (*models.Post, error) {
	query :=
		`SELECT p.id, p.access_key, p.user_id, u.access_key AS author, p.text, p.created_at
		 FROM posts p JOIN users u ON u.id = p.user_id
		 WHERE p.access_key = ?`

	p := &models.Post{}
	if err := sqlx.GetContext(ctx, r.db, p, r.db.Rebind(query), accessKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *SQLRepository) ListComments(ctx context.Context, postID int64) ([]models.Comment, error) {
	query :=
		`SELECT c.id, c.access_key, c.post_id, c.user_id, u.access_key AS author, c.text, c.created_at
		 FROM comments c JOIN users u ON u.id = c.user_id
		 WHERE c.post_id = ?
		 ORDER BY c.id`

	var comments []models.Comment
	if err := sqlx.SelectContext(ctx, r.db, &comments, r.db.Rebind(query), postID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return comments, nil
}

func insertError(err error) error {
	if err == nil {
		return nil
	}
	if dbx.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %w", common.ErrUniqueViolation, err)
	}
	return fmt.Errorf("db error: %w", err)
}
