// Package services contains server-side business logic: account signup and
// login, token resolution, and post/comment creation.
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophgram/internal/accesskey"
	"github.com/dmitrijs2005/gophgram/internal/common"
	"github.com/dmitrijs2005/gophgram/internal/cryptox"
	"github.com/dmitrijs2005/gophgram/internal/dbx"
	"github.com/dmitrijs2005/gophgram/internal/logging"
	"github.com/dmitrijs2005/gophgram/internal/server/models"
	"github.com/dmitrijs2005/gophgram/internal/server/repositories/repomanager"
	"github.com/jmoiron/sqlx"
)

// ProfileUpdate carries the optional fields of a profile change. Nil fields
// are left as they are.
type ProfileUpdate struct {
	Name     *string
	Password *string
}

// UserService provides account operations:
// - Signup: create an account with a fresh salt, hash and access key
// - Login: verify credentials and mint a token
// - Profile / PublicProfile: read an account
// - UpdateProfile: change name and/or password
type UserService struct {
	db          *sqlx.DB
	repomanager repomanager.RepositoryManager
	hasher      *cryptox.Hasher
	keys        *accesskey.Generator
	format      TokenFormat
	cache       *IdentityCache
	log         logging.Logger
}

// NewUserService constructs a UserService. cache may be nil.
func NewUserService(db *sqlx.DB, m repomanager.RepositoryManager, hasher *cryptox.Hasher, keys *accesskey.Generator,
	format TokenFormat, cache *IdentityCache, log logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		keys:        keys,
		format:      format,
		cache:       cache,
		log:         log.With("module", "users"),
	}
}

// Signup creates an account and returns its access key. An email that is
// already registered yields common.ErrDuplicateEmail, also when another
// signup wins the race between the check and the insert.
func (s *UserService) Signup(ctx context.Context, email, password, name string) (string, error) {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") || password == "" || !validUTF8(email, password, name) {
		return "", common.ErrInvalidArgument
	}

	repo := s.repomanager.Users(s.db)

	taken, err := repo.ExistsEmail(ctx, email)
	if err != nil {
		return "", storageError("signup", err)
	}
	if taken {
		return "", common.ErrDuplicateEmail
	}

	salt := cryptox.GenerateSalt()
	hash, err := s.hasher.HashContext(ctx, password, salt)
	if err != nil {
		return "", storageError("signup", err)
	}

	key, err := createWithAccessKey(ctx, s.keys, common.UserAccessPrefix, repo.ExistsAccessKey,
		func(ctx context.Context, key string) error {
			_, err := repo.InsertAccount(ctx, &models.Account{
				AccessKey:    key,
				Email:        email,
				PasswordHash: hash,
				Salt:         salt,
				Name:         name,
			})
			return err
		},
		func(ctx context.Context) error {
			taken, err := repo.ExistsEmail(ctx, email)
			if err != nil {
				return err
			}
			if taken {
				return common.ErrDuplicateEmail
			}
			return nil
		},
	)
	if err != nil {
		return "", storageError("signup", err)
	}

	s.log.Info(ctx, "signup", "access", key)
	return key, nil
}

// Login checks email and password and returns a token. The two failure
// causes stay distinct, common.ErrEmailNotFound and
// common.ErrPasswordMismatch; both match common.ErrCredentialMismatch.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if !validUTF8(email, password) {
		return "", common.ErrInvalidArgument
	}
	repo := s.repomanager.Users(s.db)

	salt, err := repo.FindSaltByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrEmailNotFound
		}
		return "", storageError("login", err)
	}

	hash, err := s.hasher.HashContext(ctx, password, salt)
	if err != nil {
		return "", storageError("login", err)
	}

	cred, err := repo.FindCredentialByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrEmailNotFound
		}
		return "", storageError("login", err)
	}

	if !cryptox.Equal(hash, cred.PasswordHash) {
		return "", common.ErrPasswordMismatch
	}

	token, err := s.format.Issue(cred.Email, password, cred.PasswordHash)
	if err != nil {
		return "", err
	}

	s.cache.Store(cred.Email, password, cred.PasswordHash, cred.ID)
	return token, nil
}

// Profile returns the account with internal id.
func (s *UserService) Profile(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, storageError("profile", err)
	}
	return u, nil
}

// PublicProfile looks an account up by its access key.
func (s *UserService) PublicProfile(ctx context.Context, accessKey string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByAccessKey(ctx, accessKey)
	if err != nil {
		return nil, storageError("public profile", err)
	}
	return u, nil
}

// UpdateProfile applies upd to account id in one transaction. A password
// change draws a new salt, drops cached identities and returns a fresh token;
// otherwise the returned token is empty.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) (string, error) {
	if upd.Password != nil && (*upd.Password == "" || !validUTF8(*upd.Password)) {
		return "", common.ErrInvalidArgument
	}
	if upd.Name != nil && !validUTF8(*upd.Name) {
		return "", common.ErrInvalidArgument
	}

	user, err := s.Profile(ctx, id)
	if err != nil {
		return "", err
	}

	var salt, hash string
	if upd.Password != nil {
		salt = cryptox.GenerateSalt()
		if hash, err = s.hasher.HashContext(ctx, *upd.Password, salt); err != nil {
			return "", storageError("update profile", err)
		}
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		if upd.Name != nil {
			if err := repo.UpdateName(ctx, id, *upd.Name); err != nil {
				return err
			}
		}
		if upd.Password != nil {
			if err := repo.UpdateCredentials(ctx, id, hash, salt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", storageError("update profile", err)
	}

	if upd.Password == nil {
		return "", nil
	}

	s.cache.Invalidate(user.Email)
	s.log.Info(ctx, "password changed", "access", user.AccessKey)

	return s.format.Issue(user.Email, *upd.Password, hash)
}

// validUTF8 reports whether every value survives a JSON token payload intact.
func validUTF8(values ...string) bool {
	for _, v := range values {
		if !utf8.ValidString(v) {
			return false
		}
	}
	return true
}
