package rest

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophgram/internal/common"
	"github.com/dmitrijs2005/gophgram/internal/server/models"
	"github.com/dmitrijs2005/gophgram/internal/server/services"
)

type fakeUsers struct {
	signupErr error
	loginErr  error
	updateErr error

	mu      sync.Mutex
	updates []services.ProfileUpdate
}

func (f *fakeUsers) Signup(ctx context.Context, email, password, name string) (string, error) {
	if f.signupErr != nil {
		return "", f.signupErr
	}
	return "usr00000000000000000001", nil
}

func (f *fakeUsers) Login(ctx context.Context, email, password string) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return "tok-" + email, nil
}

func (f *fakeUsers) Profile(ctx context.Context, id int64) (*models.User, error) {
	return &models.User{ID: id, AccessKey: "usr1", Email: "a@x.com", Name: "A"}, nil
}

func (f *fakeUsers) PublicProfile(ctx context.Context, accessKey string) (*models.User, error) {
	if accessKey != "usr1" {
		return nil, common.ErrorNotFound
	}
	return &models.User{ID: 1, AccessKey: "usr1", Email: "a@x.com", Name: "A"}, nil
}

func (f *fakeUsers) UpdateProfile(ctx context.Context, id int64, upd services.ProfileUpdate) (string, error) {
	f.mu.Lock()
	f.updates = append(f.updates, upd)
	f.mu.Unlock()
	if f.updateErr != nil {
		return "", f.updateErr
	}
	if upd.Password != nil {
		return "tok-new", nil
	}
	return "", nil
}

type fakePosts struct{}

func (fakePosts) CreatePost(ctx context.Context, userID int64, text string) (string, error) {
	if text == "" {
		return "", common.ErrInvalidArgument
	}
	return "pst1", nil
}

func (fakePosts) GetPost(ctx context.Context, accessKey string) (*services.PostView, error) {
	if accessKey != "pst1" {
		return nil, common.ErrorNotFound
	}
	at := time.UnixMilli(1_700_000_000_000)
	return &services.PostView{
		Post: &models.Post{AccessKey: "pst1", Author: "usr1", Text: "hello", CreatedAt: at},
		Comments: []models.Comment{
			{AccessKey: "cmt1", Author: "usr2", Text: "first", CreatedAt: at},
		},
	}, nil
}

func (fakePosts) AddComment(ctx context.Context, userID int64, postAccessKey, text string) (string, error) {
	if postAccessKey != "pst1" {
		return "", common.ErrorNotFound
	}
	return "cmt2", nil
}

// fakeGate knows a fixed set of tokens.
type fakeGate map[string]int64

func (g fakeGate) Resolve(ctx context.Context, token string) services.Identity {
	id, ok := g[token]
	if !ok {
		return services.Anonymous
	}
	return services.Identity{Authenticated: true, UserID: id}
}
