package posts

import (
	"context"

	"github.com/dmitrijs2005/gophgram/internal/server/models"
)

type Repository interface {
	ExistsAccessKey(ctx context.Context, accessKey string) (bool, error)
	Create(ctx context.Context, post *models.Post) (int64, error)
	GetByAccessKey(ctx context.Context, accessKey string) (*models.Post, error)

	ExistsCommentAccessKey(ctx context.Context, accessKey string) (bool, error)
	CreateComment(ctx context.Context, comment *models.Comment) (int64, error)
	ListComments(ctx context.Context, postID int64) ([]models.Comment, error)
}
