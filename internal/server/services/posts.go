package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/gophgram/internal/accesskey"
	"github.com/dmitrijs2005/gophgram/internal/common"
	"github.com/dmitrijs2005/gophgram/internal/logging"
	"github.com/dmitrijs2005/gophgram/internal/server/models"
	"github.com/dmitrijs2005/gophgram/internal/server/repositories/repomanager"
	"github.com/jmoiron/sqlx"
)

// PostView is a post together with its comments.
type PostView struct {
	Post     *models.Post
	Comments []models.Comment
}

// PostService creates and reads posts and comments.
type PostService struct {
	db          *sqlx.DB
	repomanager repomanager.RepositoryManager
	keys        *accesskey.Generator
	log         logging.Logger
}

func NewPostService(db *sqlx.DB, m repomanager.RepositoryManager, keys *accesskey.Generator, log logging.Logger) *PostService {
	return &PostService{db: db, repomanager: m, keys: keys, log: log.With("module", "posts")}
}

// CreatePost stores text as a new post by userID and returns its access key.
func (s *PostService) CreatePost(ctx context.Context, userID int64, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", common.ErrInvalidArgument
	}

	repo := s.repomanager.Posts(s.db)
	key, err := createWithAccessKey(ctx, s.keys, common.PostAccessPrefix, repo.ExistsAccessKey,
		func(ctx context.Context, key string) error {
			_, err := repo.Create(ctx, &models.Post{AccessKey: key, UserID: userID, Text: text})
			return err
		}, nil)
	if err != nil {
		return "", storageError("create post", err)
	}

	return key, nil
}

// GetPost returns the post with accessKey and its comments in order.
func (s *PostService) GetPost(ctx context.Context, accessKey string) (*PostView, error) {
	repo := s.repomanager.Posts(s.db)

	p, err := repo.GetByAccessKey(ctx, accessKey)
	if err != nil {
		return nil, storageError("get post", err)
	}

	comments, err := repo.ListComments(ctx, p.ID)
	if err != nil {
		return nil, storageError("get post", err)
	}

	return &PostView{Post: p, Comments: comments}, nil
}

// AddComment attaches text to the post with postAccessKey and returns the
// comment's access key.
func (s *PostService) AddComment(ctx context.Context, userID int64, postAccessKey, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", common.ErrInvalidArgument
	}

	repo := s.repomanager.Posts(s.db)

	p, err := repo.GetByAccessKey(ctx, postAccessKey)
	if err != nil {
		return "", storageError("add comment", err)
	}

	key, err := createWithAccessKey(ctx, s.keys, common.CommentAccessPrefix, repo.ExistsCommentAccessKey,
		func(ctx context.Context, key string) error {
			_, err := repo.CreateComment(ctx, &models.Comment{AccessKey: key, PostID: p.ID, UserID: userID, Text: text})
			return err
		}, nil)
	if err != nil {
		return "", storageError("add comment", err)
	}

	return key, nil
}
