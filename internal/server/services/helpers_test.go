package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophgram/internal/common"
	"github.com/dmitrijs2005/gophgram/internal/cryptox"
	"github.com/dmitrijs2005/gophgram/internal/dbx"
	"github.com/dmitrijs2005/gophgram/internal/server/models"
	postsrepo "github.com/dmitrijs2005/gophgram/internal/server/repositories/posts"
	usersrepo "github.com/dmitrijs2005/gophgram/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophgram/internal/tokens"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func newTestHasher(t *testing.T) *cryptox.Hasher {
	t.Helper()
	h, err := cryptox.NewHasher(1_000, 32, 2)
	require.NoError(t, err)
	return h
}

func newTestFormat(t *testing.T) TokenFormat {
	t.Helper()
	c, err := tokens.NewCodec(testKey)
	require.NoError(t, err)
	return NewEncryptedFormat(c)
}

func newSignedTestFormat(t *testing.T) TokenFormat {
	t.Helper()
	s, err := tokens.NewSigner([]byte("secret"), time.Hour)
	require.NoError(t, err)
	return NewSignedFormat(s)
}

// fakeUsers is an in-memory users.Repository with error injection.
type fakeUsers struct {
	mu       sync.Mutex
	byEmail  map[string]*models.Credential
	names    map[int64]string
	nextID   int64
	err      error
	panicMsg string

	// insertConflicts makes the next N InsertAccount calls fail with a
	// unique violation without storing anything.
	insertConflicts int
	inserts         int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]*models.Credential{}, names: map[int64]string{}}
}

func (f *fakeUsers) add(email, password, salt string, h *cryptox.Hasher) *models.Credential {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c := &models.Credential{ID: f.nextID, AccessKey: "usr" + email, Email: email, PasswordHash: h.Hash(password, salt), Salt: salt}
	f.byEmail[email] = c
	return c
}

func (f *fakeUsers) FindSaltByEmail(ctx context.Context, email string) (string, error) {
	c, err := f.FindCredentialByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return c.Salt, nil
}

func (f *fakeUsers) FindCredentialByEmail(ctx context.Context, email string) (*models.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeUsers) ExistsAccessKey(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	for _, c := range f.byEmail {
		if c.AccessKey == key {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) ExistsEmail(ctx context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.byEmail[email]
	return ok, nil
}

func (f *fakeUsers) InsertAccount(ctx context.Context, a *models.Account) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if f.err != nil {
		return 0, f.err
	}
	if f.insertConflicts > 0 {
		f.insertConflicts--
		return 0, common.ErrUniqueViolation
	}
	if _, ok := f.byEmail[a.Email]; ok {
		return 0, common.ErrUniqueViolation
	}
	f.nextID++
	f.byEmail[a.Email] = &models.Credential{ID: f.nextID, AccessKey: a.AccessKey, Email: a.Email, PasswordHash: a.PasswordHash, Salt: a.Salt}
	f.names[f.nextID] = a.Name
	return f.nextID, nil
}

func (f *fakeUsers) find(pred func(c *models.Credential) bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.byEmail {
		if pred(c) {
			return &models.User{ID: c.ID, AccessKey: c.AccessKey, Email: c.Email, Name: f.names[c.ID]}, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return f.find(func(c *models.Credential) bool { return c.ID == id })
}

func (f *fakeUsers) GetByAccessKey(ctx context.Context, key string) (*models.User, error) {
	return f.find(func(c *models.Credential) bool { return c.AccessKey == key })
}

func (f *fakeUsers) UpdateName(ctx context.Context, id int64, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names[id] = name
	return nil
}

func (f *fakeUsers) UpdateCredentials(ctx context.Context, id int64, hash, salt string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.byEmail {
		if c.ID == id {
			c.PasswordHash, c.Salt = hash, salt
			return nil
		}
	}
	return common.ErrorNotFound
}

// racingUsers hides existing emails from the first ExistsEmail call, as if
// a concurrent signup inserted the row right after the pre-check.
type racingUsers struct {
	*fakeUsers
	checks int
}

func (r *racingUsers) ExistsEmail(ctx context.Context, email string) (bool, error) {
	r.checks++
	if r.checks == 1 {
		return false, nil
	}
	return r.fakeUsers.ExistsEmail(ctx, email)
}

type failingUpdates struct {
	*fakeUsers
}

func (f *failingUpdates) UpdateName(ctx context.Context, id int64, name string) error {
	return errors.New("db down")
}

type fakeRepoManager struct {
	users usersrepo.Repository
	posts postsrepo.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.users }
func (m *fakeRepoManager) Posts(db dbx.DBTX) postsrepo.Repository       { return m.posts }
