package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophgram/internal/accesskey"
	"github.com/dmitrijs2005/gophgram/internal/common"
	"github.com/dmitrijs2005/gophgram/internal/logging"
	"github.com/dmitrijs2005/gophgram/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophgram/internal/tokens"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stack struct {
	db    *sqlx.DB
	users *UserService
	posts *PostService
	gate  *AuthGate
	codec *tokens.Codec
}

func newSQLiteStack(t *testing.T) *stack {
	t.Helper()
	ctx := context.Background()

	db, err := repomanager.Open(ctx, "sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	rm, err := repomanager.NewSQLRepositoryManager("sqlite")
	require.NoError(t, err)
	require.NoError(t, rm.RunMigrations(ctx, db.DB))

	codec, err := tokens.NewCodec(testKey)
	require.NoError(t, err)
	format := NewEncryptedFormat(codec)

	hasher := newTestHasher(t)
	keys := accesskey.NewGenerator(accesskey.DefaultMaxAttempts)
	log := logging.Discard()

	return &stack{
		db:    db,
		users: NewUserService(db, rm, hasher, keys, format, nil, log),
		posts: NewPostService(db, rm, keys, log),
		gate:  NewAuthGate(db, rm, hasher, format, nil, 7*24*time.Hour, log),
		codec: codec,
	}
}

func TestEndToEnd_SignupLoginResolve(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStack(t)

	access, err := s.users.Signup(ctx, "a@x.com", "secret", "A")
	require.NoError(t, err)
	require.Regexp(t, `^usr[0-9a-f]{20}$`, access)

	user, err := s.users.PublicProfile(ctx, access)
	require.NoError(t, err)
	assert.Equal(t, "A", user.Name)

	token, err := s.users.Login(ctx, "a@x.com", "secret")
	require.NoError(t, err)

	cred, err := s.codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", cred.Email)
	assert.Equal(t, "secret", cred.Password)

	assert.Equal(t, Identity{Authenticated: true, UserID: user.ID}, s.gate.Resolve(ctx, token))

	_, err = s.users.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, common.ErrCredentialMismatch)

	_, err = s.users.Signup(ctx, "a@x.com", "other", "B")
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)
}

func TestEndToEnd_PasswordChange(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStack(t)

	access, err := s.users.Signup(ctx, "a@x.com", "secret", "A")
	require.NoError(t, err)
	user, err := s.users.PublicProfile(ctx, access)
	require.NoError(t, err)

	oldToken, err := s.users.Login(ctx, "a@x.com", "secret")
	require.NoError(t, err)

	pw := "changed"
	newToken, err := s.users.UpdateProfile(ctx, user.ID, ProfileUpdate{Password: &pw})
	require.NoError(t, err)

	assert.Equal(t, Anonymous, s.gate.Resolve(ctx, oldToken))
	assert.Equal(t, Identity{Authenticated: true, UserID: user.ID}, s.gate.Resolve(ctx, newToken))
}

func TestEndToEnd_PostsAndComments(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStack(t)

	authorKey, err := s.users.Signup(ctx, "a@x.com", "secret", "A")
	require.NoError(t, err)
	author, _ := s.users.PublicProfile(ctx, authorKey)

	readerKey, err := s.users.Signup(ctx, "b@x.com", "secret", "B")
	require.NoError(t, err)
	reader, _ := s.users.PublicProfile(ctx, readerKey)

	postKey, err := s.posts.CreatePost(ctx, author.ID, "hello")
	require.NoError(t, err)
	assert.Regexp(t, `^pst[0-9a-f]{20}$`, postKey)

	c1, err := s.posts.AddComment(ctx, reader.ID, postKey, "first")
	require.NoError(t, err)
	c2, err := s.posts.AddComment(ctx, author.ID, postKey, "second")
	require.NoError(t, err)
	assert.Regexp(t, `^cmt[0-9a-f]{20}$`, c1)

	view, err := s.posts.GetPost(ctx, postKey)
	require.NoError(t, err)
	assert.Equal(t, "hello", view.Post.Text)
	assert.Equal(t, authorKey, view.Post.Author)
	require.Len(t, view.Comments, 2)
	assert.Equal(t, c1, view.Comments[0].AccessKey)
	assert.Equal(t, readerKey, view.Comments[0].Author)
	assert.Equal(t, c2, view.Comments[1].AccessKey)

	_, err = s.posts.GetPost(ctx, "pstmissing")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.posts.AddComment(ctx, reader.ID, "pstmissing", "x")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.posts.CreatePost(ctx, author.ID, "   ")
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestEndToEnd_DeadlineIsStorageUnavailable(t *testing.T) {
	s := newSQLiteStack(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.users.Signup(ctx, "a@x.com", "secret", "A")
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.users.Login(ctx, "a@x.com", "secret")
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)
	assert.NotErrorIs(t, err, common.ErrCredentialMismatch)
}
