package users

import (
	"context"

	"github.com/dmitrijs2005/gophgram/internal/server/models"
)

// Repository is the account store. Lookups that find nothing return
// common.ErrorNotFound; InsertAccount reports constraint violations as
// common.ErrUniqueViolation.
type Repository interface {
	FindSaltByEmail(ctx context.Context, email string) (string, error)
	FindCredentialByEmail(ctx context.Context, email string) (*models.Credential, error)
	ExistsAccessKey(ctx context.Context, accessKey string) (bool, error)
	ExistsEmail(ctx context.Context, email string) (bool, error)
	InsertAccount(ctx context.Context, account *models.Account) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByAccessKey(ctx context.Context, accessKey string) (*models.User, error)
	UpdateName(ctx context.Context, id int64, name string) error
	UpdateCredentials(ctx context.Context, id int64, passwordHash, salt string) error
}
